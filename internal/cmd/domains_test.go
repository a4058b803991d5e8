package cmd

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const domainExample = `{
  "id": 181984,
  "account_id": 1010,
  "registrant_id": 2715,
  "name": "example-alpha.com",
  "unicode_name": "example-alpha.com",
  "state": "registered",
  "auto_renew": false,
  "private_whois": false,
  "expires_at": "2021-06-05T02:15:00Z",
  "created_at": "2014-12-06T15:56:55Z",
  "updated_at": "2015-12-09T00:20:56Z"
}`

func TestDomainsList(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/v2/1010/domains", jsonResponse(200, `{"data": [`+domainExample+`], "pagination": `+pageJSON(1, 30, 1, 1)+`}`))
	setupTestEnvWithHandler(t, handler)

	stdout, _, err := runCLI(t, "", "domains", "list", "--filter", "name_like=alpha")
	require.NoError(t, err)
	assert.Contains(t, stdout, "example-alpha.com")
	assert.Contains(t, stdout, "registered")

	reqs := handler.Requests("GET", "/v2/1010/domains")
	require.Len(t, reqs, 1)
	assert.Equal(t, "name_like=alpha", reqs[0].Query)
}

func TestDomainsGet_JSON(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/v2/1010/domains/example-alpha.com", jsonResponse(200, `{"data": `+domainExample+`}`))
	setupTestEnvWithHandler(t, handler)

	stdout, _, err := runCLI(t, "", "domains", "get", "example-alpha.com", "-o", "json")
	require.NoError(t, err)

	obj := decodeObject(t, stdout)
	assert.EqualValues(t, 181984, obj["id"])
	assert.EqualValues(t, 2715, obj["registrant_id"])
}

func TestDomainsCreate(t *testing.T) {
	var body map[string]any
	handler := newRouteHandler().
		On("POST", "/v2/1010/domains", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&body)
			jsonResponse(201, `{"data": `+domainExample+`}`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)

	stdout, _, err := runCLI(t, "", "domains", "create", "Example-Alpha.com")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created domain 181984: example-alpha.com")
	assert.Equal(t, map[string]any{"name": "example-alpha.com"}, body)
}

func TestDomainsDelete_DryRunJSON(t *testing.T) {
	handler := newRouteHandler()
	setupTestEnvWithHandler(t, handler)

	stdout, _, err := runCLI(t, "", "domains", "delete", "example-alpha.com", "--dry-run", "-o", "json")
	require.NoError(t, err)

	obj := decodeObject(t, stdout)
	assert.Equal(t, true, obj["dry_run"])
	preview, ok := obj["preview"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "DELETE", preview["method"])
	assert.NotEmpty(t, preview["warnings"])
	assert.Empty(t, handler.Requests("DELETE", "/v2/1010/domains/example-alpha.com"))
}

func TestDomainsDelete(t *testing.T) {
	handler := newRouteHandler().
		On("DELETE", "/v2/1010/domains/example-alpha.com", noContent)
	setupTestEnvWithHandler(t, handler)

	stdout, _, err := runCLI(t, "", "domains", "delete", "example-alpha.com", "--force")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleted domain example-alpha.com")
}

func TestDomainsDelete_NoInput(t *testing.T) {
	handler := newRouteHandler().
		On("DELETE", "/v2/1010/domains/example-alpha.com", noContent)
	setupTestEnvWithHandler(t, handler)

	_, _, err := runCLI(t, "", "domains", "delete", "example-alpha.com", "--no-input")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confirmation required")
	assert.Empty(t, handler.Requests("DELETE", "/v2/1010/domains/example-alpha.com"))
}
