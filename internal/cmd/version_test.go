package cmd

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnsimple/dnsimple-cli/internal/update"
)

// stubRelease points the update check at a server reporting tag and sets
// the build version for the duration of the test.
func stubRelease(t *testing.T, buildVersion, tag string) *int {
	t.Helper()
	calls := new(int)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name": "` + tag + `", "html_url": "https://github.com/dnsimple/dnsimple-cli/releases/tag/` + tag + `"}`))
	}))
	t.Cleanup(server.Close)

	origChecker, origVersion := newUpdateChecker, version
	newUpdateChecker = func() *update.Checker { return &update.Checker{URL: server.URL, HTTP: server.Client()} }
	version = buildVersion
	t.Cleanup(func() {
		newUpdateChecker = origChecker
		version = origVersion
	})
	return calls
}

func TestVersion_DevBuild(t *testing.T) {
	isolateEnv(t)
	calls := stubRelease(t, "dev", "v1.2.0")

	stdout, stderr, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "dnsimple-cli version dev\n", stdout)
	assert.Empty(t, stderr)
	assert.Zero(t, *calls)
}

func TestVersion_UpdateAvailable(t *testing.T) {
	isolateEnv(t)
	stubRelease(t, "1.0.0", "v1.2.0")

	stdout, stderr, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "dnsimple-cli version 1.0.0")
	assert.Contains(t, stderr, "A new release of dnsimple is available: 1.0.0 -> 1.2.0")
}

func TestVersion_JSON(t *testing.T) {
	isolateEnv(t)
	stubRelease(t, "1.0.0", "v1.2.0")

	stdout, _, err := runCLI(t, "", "version", "-o", "json")
	require.NoError(t, err)

	obj := decodeObject(t, stdout)
	assert.Equal(t, "1.0.0", obj["version"])
	result, ok := obj["update"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, result["update_available"])
	assert.Equal(t, "1.2.0", result["latest_version"])
}

func TestVersion_NoUpdateCheck(t *testing.T) {
	isolateEnv(t)
	calls := stubRelease(t, "1.0.0", "v1.2.0")

	stdout, stderr, err := runCLI(t, "", "version", "--no-update-check", "-o", "json")
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Zero(t, *calls)

	obj := decodeObject(t, stdout)
	assert.Nil(t, obj["update"])
}
