package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dnsimple/dnsimple-cli/internal/debug"
)

// Known API hosts.
const (
	DefaultBaseURL = "https://api.dnsimple.com"
	SandboxBaseURL = "https://api.sandbox.dnsimple.com"
)

// Client is the DNSimple API client.
//
// A Client holds no per-request state: the account identifier is passed to
// every call and nothing from one response is kept for the next, so a single
// Client can be shared between goroutines.
type Client struct {
	BaseURL   string
	UserAgent string
	HTTP      *http.Client
}

// RawResponse is a received HTTP response with its body fully read.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Compile-time interface implementation checks
var (
	_ Requester    = (*Client)(nil)
	_ PathResolver = (*Client)(nil)
	_ HTTPExecutor = (*Client)(nil)
)

// New creates a client for baseURL authenticating with token.
func New(baseURL, token string, retry RetryConfig, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTP:    NewHTTPClient(token, retry, timeout),
	}
}

// newTestClient creates a client that never retries, for httptest servers.
func newTestClient(baseURL, token string) *Client {
	return New(baseURL, token, RetryConfig{}, 5*time.Second)
}

func (c *Client) accountURL(accountID, resourcePath, resourceID string, opts *ListOptions) (string, error) {
	return BuildURL(c.BaseURL, accountID, resourcePath, resourceID, opts)
}

func (c *Client) apiURL(path string) string {
	if path != "" && path[0] != '/' {
		path = "/" + path
	}
	return c.BaseURL + "/" + APIVersion + path
}

func allowedMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// dispatch sends one request and returns the response whatever its status.
// A non-nil body is sent as JSON. Failures to complete the exchange are
// returned as *TransportError.
func (c *Client) dispatch(ctx context.Context, method, url string, body any) (*RawResponse, error) {
	if !allowedMethod(method) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if debug.IsEnabled(ctx) {
		slog.Debug("request complete", "method", method, "url", url, "status", resp.StatusCode, "duration", time.Since(start))
	}

	return &RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

// do dispatches the request and routes non-2xx responses to the error
// normalizer.
func (c *Client) do(ctx context.Context, method, url string, body any) (*RawResponse, error) {
	raw, err := c.dispatch(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if raw.StatusCode < 200 || raw.StatusCode > 299 {
		return nil, normalizeError(raw)
	}
	return raw, nil
}
