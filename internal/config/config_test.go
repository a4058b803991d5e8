package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withMockKeyring sets up an in-memory keyring for the duration of a test
func withMockKeyring(t *testing.T) *keyring.ArrayKeyring {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	t.Cleanup(SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	}))
	return ring
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DNSIMPLE_TOKEN", "DNSIMPLE_BASE_URL", "DNSIMPLE_ACCOUNT_ID", "DNSIMPLE_PROFILE",
		"DNSIMPLE_OUTPUT", "DNSIMPLE_TIMEOUT", "DNSIMPLE_RETRY_MAX", "DNSIMPLE_RETRY_WAIT_MIN", "DNSIMPLE_RETRY_WAIT_MAX",
		envKeyringBackend, envKeyringPassword, envCredentialsDir,
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestStore_SaveLoad(t *testing.T) {
	withMockKeyring(t)
	store, err := OpenStore()
	require.NoError(t, err)

	require.NoError(t, store.Save("", Account{BaseURL: "https://api.sandbox.dnsimple.com/", Token: "t1", AccountID: "1010"}))
	require.NoError(t, store.Save("work", Account{Token: "t2", AccountID: "2020"}))

	got, err := store.Load("default")
	require.NoError(t, err)
	assert.Equal(t, Account{BaseURL: "https://api.sandbox.dnsimple.com", Token: "t1", AccountID: "1010"}, got)

	profiles, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "work"}, profiles)

	current, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, "work", current, "saving makes a profile current")

	require.NoError(t, store.Save("work", Account{Token: "t3"}))
	profiles, _ = store.List()
	assert.Equal(t, []string{"default", "work"}, profiles, "resaving does not duplicate")
}

func TestStore_LoadMissing(t *testing.T) {
	withMockKeyring(t)
	store, err := OpenStore()
	require.NoError(t, err)

	_, err = store.Load("nope")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	current, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, "default", current)
}

func TestStore_Delete(t *testing.T) {
	withMockKeyring(t)
	store, err := OpenStore()
	require.NoError(t, err)

	require.NoError(t, store.Save("a", Account{Token: "a"}))
	require.NoError(t, store.Save("b", Account{Token: "b"}))
	require.NoError(t, store.Delete("b"))

	current, _ := store.Current()
	assert.Equal(t, "a", current)
	profiles, _ := store.List()
	assert.Equal(t, []string{"a"}, profiles)

	require.NoError(t, store.Delete("a"))
	current, _ = store.Current()
	assert.Equal(t, "default", current)
	assert.NoError(t, store.Delete("never-existed"))
}

func TestOpenStore_Failure(t *testing.T) {
	t.Cleanup(SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return nil, errors.New("locked")
	}))
	_, err := OpenStore()
	assert.ErrorContains(t, err, "failed to open keyring")
}

func TestKeyringConfig(t *testing.T) {
	clearEnv(t)
	base := t.TempDir()
	t.Setenv(envCredentialsDir, base)

	t.Setenv(envKeyringBackend, "file")
	cfg := keyringConfig()
	assert.Equal(t, serviceName, cfg.ServiceName)
	assert.Equal(t, filepath.Join(base, "keyring"), cfg.FileDir)
	assert.Equal(t, []keyring.BackendType{keyring.FileBackend}, cfg.AllowedBackends)

	t.Setenv(envKeyringBackend, "system")
	cfg = keyringConfig()
	assert.Empty(t, cfg.FileDir)
	assert.Nil(t, cfg.AllowedBackends)
}

func TestShouldForceFileBackend(t *testing.T) {
	assert.True(t, shouldForceFileBackend("darwin", keyringBackendFile, ""))
	assert.True(t, shouldForceFileBackend("linux", keyringBackendAuto, ""))
	assert.False(t, shouldForceFileBackend("linux", keyringBackendAuto, "unix:path=/run/bus"))
	assert.False(t, shouldForceFileBackend("linux", keyringBackendSystem, ""))
	assert.False(t, shouldForceFileBackend("darwin", keyringBackendAuto, ""))
}

func TestKeyringFilePassword(t *testing.T) {
	clearEnv(t)
	prev := stdinHasTTY
	stdinHasTTY = func() bool { return false }
	t.Cleanup(func() { stdinHasTTY = prev })

	_, err := keyringFilePassword("Password")
	assert.ErrorContains(t, err, envKeyringPassword)

	t.Setenv(envKeyringPassword, "s3cret")
	got, err := keyringFilePassword("Password")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
}

type fakeCreds struct {
	current  string
	accounts map[string]Account
}

func (f fakeCreds) Current() (string, error) { return f.current, nil }

func (f fakeCreds) Load(profile string) (Account, error) {
	if a, ok := f.accounts[profile]; ok {
		return a, nil
	}
	return Account{}, ErrProfileNotFound
}

func TestResolve_Precedence(t *testing.T) {
	clearEnv(t)
	creds := fakeCreds{
		current: "default",
		accounts: map[string]Account{
			"default": {BaseURL: "https://profile.example.com", Token: "profile-token", AccountID: "1"},
			"work":    {Token: "work-token", AccountID: "2"},
		},
	}
	settings := Settings{BaseURL: "https://settings.example.com", AccountID: "9"}

	cfg, err := Resolve(creds, settings, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, ClientConfig{Profile: "default", BaseURL: "https://profile.example.com", Token: "profile-token", AccountID: "1"}, cfg)

	cfg, err = Resolve(creds, settings, Overrides{Profile: "work"})
	require.NoError(t, err)
	assert.Equal(t, "https://settings.example.com", cfg.BaseURL, "settings file fills what the profile lacks")
	assert.Equal(t, "2", cfg.AccountID)

	t.Setenv("DNSIMPLE_TOKEN", "env-token")
	t.Setenv("DNSIMPLE_ACCOUNT_ID", "3")
	t.Setenv("DNSIMPLE_BASE_URL", "https://env.example.com/")
	cfg, err = Resolve(creds, settings, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, ClientConfig{Profile: "default", BaseURL: "https://env.example.com", Token: "env-token", AccountID: "3"}, cfg)

	cfg, err = Resolve(creds, settings, Overrides{BaseURL: "https://flag.example.com", AccountID: "4"})
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example.com", cfg.BaseURL)
	assert.Equal(t, "4", cfg.AccountID)
}

func TestResolve_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DNSIMPLE_TOKEN", "env-token")

	cfg, err := Resolve(nil, Settings{}, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Empty(t, cfg.AccountID)
}

func TestResolve_NotConfigured(t *testing.T) {
	clearEnv(t)
	_, err := Resolve(fakeCreds{current: "default"}, Settings{}, Overrides{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = Resolve(fakeCreds{current: "default"}, Settings{}, Overrides{Profile: "missing"})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestLoadSettings(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, Settings{Output: "text", Timeout: 30 * time.Second, RetryMax: 2, RetryWaitMin: 500 * time.Millisecond, RetryWaitMax: 5 * time.Second}, s)

	content := "output: json\ntimeout: 10s\nretry_max: 0\nbase_url: https://api.sandbox.dnsimple.com/\naccount_id: \"1010\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	s, err = LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "json", s.Output)
	assert.Equal(t, 10*time.Second, s.Timeout)
	assert.Equal(t, 0, s.RetryMax)
	assert.Equal(t, "https://api.sandbox.dnsimple.com", s.BaseURL)
	assert.Equal(t, "1010", s.AccountID)

	t.Setenv("DNSIMPLE_TIMEOUT", "1m")
	s, err = LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, s.Timeout, "environment overrides the file")
}

func TestLoadSettings_Invalid(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: [unclosed"), 0o600))
	_, err := LoadSettings(path)
	assert.ErrorContains(t, err, "failed to read")
}

func TestSetSetting(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, SetSetting(path, KeyOutput, "yaml"))
	require.NoError(t, SetSetting(path, KeyTimeout, "90s"))
	require.NoError(t, SetSetting(path, KeyRetryMax, "4"))

	stored, err := FileSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "yaml", stored["output"])
	assert.Equal(t, "1m30s", stored["timeout"])
	assert.Len(t, stored, 3, "defaults are not written")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 4, s.RetryMax)

	require.NoError(t, UnsetSetting(path, KeyTimeout))
	stored, _ = FileSettings(path)
	_, has := stored["timeout"]
	assert.False(t, has)
}

func TestSetSetting_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	for _, tc := range [][2]string{
		{KeyTimeout, "soon"},
		{KeyRetryMax, "-1"},
		{KeyOutput, "xml"},
	} {
		assert.Error(t, SetSetting(path, tc[0], tc[1]), tc[0])
	}

	err := SetSetting(path, "colour", "blue")
	var unknown *ErrUnknownSetting
	require.ErrorAs(t, err, &unknown)
	assert.True(t, strings.Contains(err.Error(), "account_id"))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing is written for invalid values")
}

func TestSettingsPath(t *testing.T) {
	prev := userConfigDir
	userConfigDir = func() (string, error) { return "/home/u/.config", nil }
	t.Cleanup(func() { userConfigDir = prev })

	got, err := SettingsPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/u/.config", "dnsimple-cli", "config.yaml"), got)
}
