package api

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
)

// Default transport settings.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultRetryMax     = 2
	DefaultRetryWaitMin = 500 * time.Millisecond
	DefaultRetryWaitMax = 5 * time.Second
)

// RetryConfig bounds connection level retries. Responses are never retried,
// whatever their status.
type RetryConfig struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// DefaultRetryConfig returns a RetryConfig populated from environment variables
// with fallback to default values.
//
// Environment variables:
//   - DNSIMPLE_RETRY_MAX: max connection retries (default: 2)
//   - DNSIMPLE_RETRY_WAIT_MIN: minimum backoff (default: "500ms")
//   - DNSIMPLE_RETRY_WAIT_MAX: maximum backoff (default: "5s")
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		RetryMax:     getEnvInt("DNSIMPLE_RETRY_MAX", DefaultRetryMax),
		RetryWaitMin: getEnvDuration("DNSIMPLE_RETRY_WAIT_MIN", DefaultRetryWaitMin),
		RetryWaitMax: getEnvDuration("DNSIMPLE_RETRY_WAIT_MAX", DefaultRetryWaitMax),
	}
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultVal
}

// connectionRetryPolicy retries failed round trips only. Any response that
// reached us, 5xx and 429 included, is handed back to the caller as is.
func connectionRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// retryLogger sends retryablehttp's messages, failures included, to the
// default slog logger at debug level.
type retryLogger struct{}

func (retryLogger) Error(msg string, kv ...any) { slog.Debug(msg, kv...) }
func (retryLogger) Warn(msg string, kv ...any)  { slog.Debug(msg, kv...) }
func (retryLogger) Info(msg string, kv ...any)  { slog.Debug(msg, kv...) }
func (retryLogger) Debug(msg string, kv ...any) { slog.Debug(msg, kv...) }

// NewHTTPClient builds the HTTP client used by Client: a retrying transport
// for connection failures, wrapped in bearer authentication when token is set.
func NewHTTPClient(token string, cfg RetryConfig, timeout time.Duration) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = cfg.RetryWaitMin
	rc.RetryWaitMax = cfg.RetryWaitMax
	rc.CheckRetry = connectionRetryPolicy
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = retryLogger{}
	if t, ok := rc.HTTPClient.Transport.(*http.Transport); ok {
		t.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := rc.StandardClient()
	client.Timeout = timeout
	if token != "" {
		client.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   client.Transport,
		}
	}
	return client
}
