package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawJSON(status int, body string) *RawResponse {
	return &RawResponse{StatusCode: status, Header: http.Header{}, Body: []byte(body)}
}

func TestParseSingle(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantReason string
	}{
		{name: "valid", body: `{"data": {"id": 7, "name": "Alpha"}}`},
		{name: "empty body", body: "", wantReason: "empty response body"},
		{name: "not json", body: "<html>", wantReason: "response is not a JSON object"},
		{name: "missing data", body: `{"id": 7}`, wantReason: `missing "data"`},
		{name: "null data", body: `{"data": null}`, wantReason: `missing "data"`},
		{name: "wrong data type", body: `{"data": "nope"}`, wantReason: `unexpected "data" shape`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := parseSingle[Template](rawJSON(http.StatusOK, tt.body))
			if tt.wantReason == "" {
				require.NoError(t, err)
				assert.Equal(t, int64(7), resp.Data.ID)
				return
			}
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.wantReason, parseErr.Reason)
			assert.Equal(t, http.StatusOK, parseErr.StatusCode)
		})
	}
}

func TestParseCollection(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantLen    int
		wantPage   int
		wantReason string
	}{
		{
			name:     "valid",
			body:     `{"data": [{"id": 1}, {"id": 2}, {"id": 3}], "pagination": {"current_page": 2, "per_page": 3, "total_entries": 9, "total_pages": 3}}`,
			wantLen:  3,
			wantPage: 2,
		},
		{
			name:     "empty page",
			body:     `{"data": [], "pagination": {"current_page": 1, "per_page": 30, "total_entries": 0, "total_pages": 0}}`,
			wantLen:  0,
			wantPage: 1,
		},
		{name: "object data", body: `{"data": {"id": 1}, "pagination": {}}`, wantReason: `"data" is not an array`},
		{name: "missing pagination", body: `{"data": []}`, wantReason: `missing "pagination"`},
		{name: "missing data", body: `{"pagination": {"current_page": 1}}`, wantReason: `missing "data"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := parseCollection[Template](rawJSON(http.StatusOK, tt.body))
			if tt.wantReason == "" {
				require.NoError(t, err)
				assert.NotNil(t, resp.Data)
				assert.Len(t, resp.Data, tt.wantLen)
				assert.Equal(t, tt.wantPage, resp.Pagination.CurrentPage)
				return
			}
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.wantReason, parseErr.Reason)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	for _, body := range []string{"", "{}", "garbage"} {
		resp := parseEmpty(rawJSON(http.StatusNoContent, body))
		require.NotNil(t, resp.Data, "body %q", body)
		assert.Empty(t, resp.Data)
	}
}

func TestParse_RateLimitHeaders(t *testing.T) {
	raw := rawJSON(http.StatusOK, `{"data": {"id": 1}}`)
	raw.Header.Set("X-RateLimit-Limit", "2400")
	raw.Header.Set("X-RateLimit-Remaining", "2399")
	raw.Header.Set("X-RateLimit-Reset", "1458650938")

	resp, err := parseSingle[Template](raw)
	require.NoError(t, err)
	require.NotNil(t, resp.RateLimit)
	assert.Equal(t, 2400, *resp.RateLimit.Limit)
	assert.Equal(t, 2399, *resp.RateLimit.Remaining)
	assert.Equal(t, int64(1458650938), resp.RateLimit.ResetAt.Unix())
}
