package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendsHeaders(t *testing.T) {
	server, requests := fixtureServer(t, http.StatusOK, getTemplateFixture)
	client := newTestClient(server.URL, "secret-token")
	client.UserAgent = "dnsimple-cli/test"

	_, err := client.Templates().GetTemplate(context.Background(), accountID, "alpha")
	require.NoError(t, err)

	req := (*requests)[0]
	assert.Equal(t, "Bearer secret-token", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.Equal(t, "dnsimple-cli/test", req.Header.Get("User-Agent"))
	assert.Empty(t, req.Header.Get("Content-Type"), "GET carries no body")
}

func TestClient_NoTokenNoAuthorization(t *testing.T) {
	server, requests := fixtureServer(t, http.StatusOK, getTemplateFixture)
	client := newTestClient(server.URL, "")

	_, err := client.Templates().GetTemplate(context.Background(), accountID, "alpha")
	require.NoError(t, err)
	assert.Empty(t, (*requests)[0].Header.Get("Authorization"))
}

func TestClient_ServerErrorsAreNotRetried(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusServiceUnavailable, http.StatusTooManyRequests} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(status)
			}))
			t.Cleanup(server.Close)

			client := New(server.URL, "t", RetryConfig{RetryMax: 3, RetryWaitMin: time.Millisecond, RetryWaitMax: time.Millisecond}, 5*time.Second)
			_, err := client.Templates().ListTemplates(context.Background(), accountID, nil)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, status, apiErr.HTTPStatus)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}

func TestClient_ConnectionFailure(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	client := New("http://"+addr, "t", RetryConfig{RetryMax: 1, RetryWaitMin: time.Millisecond, RetryWaitMax: time.Millisecond}, 5*time.Second)
	resp, err := client.Templates().ListTemplates(context.Background(), accountID, nil)
	assert.Nil(t, resp)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.MethodGet, transportErr.Method)
	assert.Contains(t, transportErr.URL, "/v2/1010/templates")

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestClient_ContextCanceled(t *testing.T) {
	server, _ := fixtureServer(t, http.StatusOK, getTemplateFixture)
	client := newTestClient(server.URL, "t")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Templates().GetTemplate(ctx, accountID, "alpha")
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_UnsupportedMethod(t *testing.T) {
	server, requests := fixtureServer(t, http.StatusOK, "{}")
	client := newTestClient(server.URL, "t")

	_, err := client.do(context.Background(), "TRACE", server.URL+"/v2/whoami", nil)
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
	assert.Empty(t, *requests)
}

func TestClient_ParseErrorIsNotAPIError(t *testing.T) {
	server, _ := fixtureServer(t, http.StatusOK, `{"name": "no envelope"}`)
	client := newTestClient(server.URL, "t")

	_, err := client.Templates().GetTemplate(context.Background(), accountID, "alpha")
	assert.True(t, IsParseError(err))
	assert.False(t, IsNotFound(err))
}

func TestClient_SharedBetweenGoroutines(t *testing.T) {
	server, _ := fixtureServer(t, http.StatusOK, getTemplateFixture)
	client := newTestClient(server.URL, "t")

	ctx := context.Background()
	chans := make([]<-chan Result[*Response[Template]], 8)
	for i := range chans {
		account := []string{"1010", "2020"}[i%2]
		chans[i] = Async(ctx, func(ctx context.Context) (*Response[Template], error) {
			return client.Templates().GetTemplate(ctx, account, "alpha")
		})
	}
	for _, ch := range chans {
		resp, err := Await(ctx, ch)
		require.NoError(t, err)
		assert.Equal(t, "Alpha", resp.Data.Name)
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	t.Setenv("DNSIMPLE_RETRY_MAX", "5")
	t.Setenv("DNSIMPLE_RETRY_WAIT_MIN", "1s")
	t.Setenv("DNSIMPLE_RETRY_WAIT_MAX", "bogus")

	cfg := DefaultRetryConfig()
	assert.Equal(t, 5, cfg.RetryMax)
	assert.Equal(t, time.Second, cfg.RetryWaitMin)
	assert.Equal(t, DefaultRetryWaitMax, cfg.RetryWaitMax)
}

func TestConnectionRetryPolicy(t *testing.T) {
	ctx := context.Background()

	retry, err := connectionRetryPolicy(ctx, &http.Response{StatusCode: 503}, nil)
	assert.False(t, retry)
	assert.NoError(t, err)

	retry, _ = connectionRetryPolicy(ctx, nil, errors.New("connection reset by peer"))
	assert.True(t, retry)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	retry, err = connectionRetryPolicy(canceled, nil, errors.New("connection reset by peer"))
	assert.False(t, retry)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_Defaults(t *testing.T) {
	client := New("", "t", RetryConfig{}, 0)
	assert.Equal(t, DefaultBaseURL, client.BaseURL)
	assert.Equal(t, DefaultTimeout, client.HTTP.Timeout)

	client = New("https://api.sandbox.dnsimple.com/", "t", RetryConfig{}, time.Second)
	assert.Equal(t, SandboxBaseURL, client.BaseURL)
	assert.Equal(t, "https://api.sandbox.dnsimple.com/v2/whoami", client.apiURL("whoami"))
}
