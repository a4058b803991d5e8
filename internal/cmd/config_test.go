package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnsimple/dnsimple-cli/internal/config"
)

func TestConfigPath(t *testing.T) {
	dir := isolateEnv(t)

	stdout, _, err := runCLI(t, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), strings.TrimSpace(stdout))

	custom := filepath.Join(dir, "other.yaml")
	stdout, _, err = runCLI(t, "", "config", "path", "--config", custom, "-o", "json")
	require.NoError(t, err)
	obj := decodeObject(t, stdout)
	assert.Equal(t, custom, obj["path"])
	assert.Equal(t, false, obj["exists"])
}

func TestConfigSetGetUnset(t *testing.T) {
	dir := isolateEnv(t)
	// Environment overrides would mask the file.
	require.NoError(t, os.Unsetenv("DNSIMPLE_OUTPUT"))

	stdout, _, err := runCLI(t, "", "config", "set", "timeout", "90s")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Set timeout: 90s")

	stdout, _, err = runCLI(t, "", "config", "get", "timeout")
	require.NoError(t, err)
	assert.Equal(t, "1m30s", strings.TrimSpace(stdout))

	_, _, err = runCLI(t, "", "config", "set", "output", "yaml")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "output: yaml")

	// The stored output mode now applies to every command.
	stdout, _, err = runCLI(t, "", "config", "list", "--file")
	require.NoError(t, err)
	assert.Contains(t, stdout, "output: yaml")
	assert.Contains(t, stdout, "timeout: 1m30s")

	_, _, err = runCLI(t, "", "config", "unset", "output")
	require.NoError(t, err)

	stdout, _, err = runCLI(t, "", "config", "get", "output")
	require.NoError(t, err)
	assert.Equal(t, "text", strings.TrimSpace(stdout))
}

func TestConfigSet_Invalid(t *testing.T) {
	isolateEnv(t)

	_, _, err := runCLI(t, "", "config", "set", "colour", "blue")
	require.Error(t, err)
	var unknown *config.ErrUnknownSetting
	assert.ErrorAs(t, err, &unknown)

	_, _, err = runCLI(t, "", "config", "set", "retry_max", "many")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-negative integer")

	_, _, err = runCLI(t, "", "config", "get", "colour")
	require.Error(t, err)
}

func TestConfigList_Effective(t *testing.T) {
	isolateEnv(t)
	t.Setenv("DNSIMPLE_RETRY_MAX", "4")

	stdout, _, err := runCLI(t, "", "config", "list", "-o", "json")
	require.NoError(t, err)

	obj := decodeObject(t, stdout)
	assert.EqualValues(t, 4, obj["retry_max"])
	assert.Equal(t, "30s", obj["timeout"])
	assert.Equal(t, "text", obj["output"])
}

func saveTestProfiles(t *testing.T, names ...string) {
	t.Helper()
	store, err := config.OpenStore()
	require.NoError(t, err)
	for i, name := range names {
		require.NoError(t, store.Save(name, config.Account{
			BaseURL:   "https://api.sandbox.dnsimple.com",
			Token:     "token-" + name,
			AccountID: string(rune('1' + i)),
		}))
	}
}

func TestProfilesList(t *testing.T) {
	isolateEnv(t)
	withTestKeyring(t)
	saveTestProfiles(t, "default", "sandbox")

	stdout, _, err := runCLI(t, "", "config", "profiles", "list", "-o", "json")
	require.NoError(t, err)

	obj := decodeObject(t, stdout)
	assert.Equal(t, "sandbox", obj["current"])
	profiles, ok := obj["profiles"].([]any)
	require.True(t, ok)
	require.Len(t, profiles, 2)
	first := profiles[0].(map[string]any)
	assert.Equal(t, "default", first["name"])
	assert.Equal(t, false, first["current"])
	assert.Equal(t, "1", first["account_id"])

	stdout, _, err = runCLI(t, "", "config", "profiles", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "sandbox")
	assert.NotContains(t, stdout, "token-")
}

func TestProfilesList_Empty(t *testing.T) {
	isolateEnv(t)
	withTestKeyring(t)

	_, stderr, err := runCLI(t, "", "config", "profiles", "list")
	require.NoError(t, err)
	assert.Contains(t, stderr, "No profiles stored")
}

func TestProfilesUse(t *testing.T) {
	isolateEnv(t)
	withTestKeyring(t)
	saveTestProfiles(t, "default", "sandbox")

	stdout, _, err := runCLI(t, "", "config", "profiles", "use", "default")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Switched to profile default")

	store, err := config.OpenStore()
	require.NoError(t, err)
	current, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, "default", current)

	_, _, err = runCLI(t, "", "config", "profiles", "use", "missing")
	assert.ErrorIs(t, err, config.ErrProfileNotFound)
}

func TestProfilesDelete(t *testing.T) {
	isolateEnv(t)
	withTestKeyring(t)
	saveTestProfiles(t, "default", "sandbox")

	_, _, err := runCLI(t, "", "config", "profiles", "delete", "sandbox", "-o", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force or --yes is required")

	stdout, _, err := runCLI(t, "", "config", "profiles", "delete", "sandbox", "--force")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleted profile sandbox")

	store, err := config.OpenStore()
	require.NoError(t, err)
	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, names)

	_, _, err = runCLI(t, "", "config", "profiles", "delete", "sandbox", "--force")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `profile "sandbox" does not exist`)
}
