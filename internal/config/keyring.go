// Package config stores credentials in the system keyring and reads
// non-secret settings from a YAML file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
	"golang.org/x/term"
)

const (
	serviceName       = "dnsimple-cli"
	defaultProfile    = "default"
	profilePrefix     = "profile:"
	profileIndexKey   = "profiles_index"
	currentProfileKey = "current_profile"

	envKeyringBackend  = "DNSIMPLE_KEYRING_BACKEND"
	envKeyringPassword = "DNSIMPLE_KEYRING_PASSWORD"
	envCredentialsDir  = "DNSIMPLE_CREDENTIALS_DIR"

	keyringBackendAuto   = "auto"
	keyringBackendFile   = "file"
	keyringBackendSystem = "system"
)

// openKeyring opens the credential keyring. Replaced in tests.
var openKeyring = func(cfg keyring.Config) (keyring.Keyring, error) {
	return keyring.Open(cfg)
}

var userConfigDir = os.UserConfigDir

var stdinHasTTY = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// SetOpenKeyring allows replacing the keyring opener for testing.
// Returns a cleanup function that restores the original.
func SetOpenKeyring(fn func(keyring.Config) (keyring.Keyring, error)) func() {
	original := openKeyring
	openKeyring = fn
	return func() { openKeyring = original }
}

// Account is what a profile stores.
type Account struct {
	BaseURL   string `json:"base_url,omitempty"`
	Token     string `json:"token"`
	AccountID string `json:"account_id,omitempty"`
}

// ErrNotConfigured is returned when no token is available.
var ErrNotConfigured = errors.New("dnsimple not configured - run 'dnsimple auth login' or set DNSIMPLE_TOKEN")

// ErrProfileNotFound is returned for an unknown profile name.
var ErrProfileNotFound = errors.New("profile not found")

func keyringConfig() keyring.Config {
	cfg := keyring.Config{
		ServiceName: serviceName,
	}

	backend := keyringBackendMode()
	if backend == keyringBackendSystem {
		return cfg
	}

	// In auto mode keyring.Open falls through to the encrypted file backend
	// when no native backend is available.
	cfg.FileDir = keyringFileDir()
	cfg.FilePasswordFunc = keyringFilePassword

	if shouldForceFileBackend(runtime.GOOS, backend, os.Getenv("DBUS_SESSION_BUS_ADDRESS")) {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}
	return cfg
}

func keyringBackendMode() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(envKeyringBackend))) {
	case keyringBackendFile:
		return keyringBackendFile
	case keyringBackendSystem, "os", "native":
		return keyringBackendSystem
	default:
		return keyringBackendAuto
	}
}

// Headless Linux has no secret service; use the file backend there.
func shouldForceFileBackend(goos, backend, dbusAddr string) bool {
	if backend == keyringBackendFile {
		return true
	}
	return backend == keyringBackendAuto && goos == "linux" && strings.TrimSpace(dbusAddr) == ""
}

func keyringFileDir() string {
	base := strings.TrimSpace(os.Getenv(envCredentialsDir))
	if base == "" {
		if dir, err := userConfigDir(); err == nil && strings.TrimSpace(dir) != "" {
			base = filepath.Join(dir, serviceName)
		}
	}
	if base == "" {
		base = filepath.Join(os.TempDir(), serviceName)
	}
	return filepath.Join(base, "keyring")
}

func keyringFilePassword(prompt string) (string, error) {
	if password := os.Getenv(envKeyringPassword); strings.TrimSpace(password) != "" {
		return password, nil
	}
	if !stdinHasTTY() {
		return "", fmt.Errorf("set %s when using file keyring in non-interactive environments", envKeyringPassword)
	}
	return keyring.TerminalPrompt(prompt)
}

// Store is an opened credential keyring.
type Store struct {
	ring keyring.Keyring
}

// OpenStore opens the keyring configured by the DNSIMPLE_KEYRING_* variables.
func OpenStore() (*Store, error) {
	ring, err := openKeyring(keyringConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return &Store{ring: ring}, nil
}

func profileKey(name string) string {
	return profilePrefix + normalizeProfile(name)
}

func normalizeProfile(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return defaultProfile
	}
	return name
}

func (s *Store) profiles() ([]string, error) {
	item, err := s.ring.Get(profileIndexKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile index: %w", err)
	}
	var profiles []string
	if err := json.Unmarshal(item.Data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile index: %w", err)
	}
	return profiles, nil
}

func (s *Store) saveProfiles(profiles []string) error {
	data, err := json.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("failed to marshal profile index: %w", err)
	}
	return s.ring.Set(keyring.Item{Key: profileIndexKey, Data: data})
}

// Save stores account under profile and makes it the current profile.
func (s *Store) Save(profile string, account Account) error {
	profile = normalizeProfile(profile)
	account.BaseURL = strings.TrimSuffix(strings.TrimSpace(account.BaseURL), "/")

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}
	if err := s.ring.Set(keyring.Item{Key: profileKey(profile), Data: data, Label: "DNSimple " + profile}); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	profiles, err := s.profiles()
	if err != nil {
		return err
	}
	if !contains(profiles, profile) {
		if err := s.saveProfiles(append(profiles, profile)); err != nil {
			return err
		}
	}
	return s.SetCurrent(profile)
}

// Load returns the account stored under profile.
func (s *Store) Load(profile string) (Account, error) {
	profile = normalizeProfile(profile)
	item, err := s.ring.Get(profileKey(profile))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return Account{}, fmt.Errorf("%w: %s", ErrProfileNotFound, profile)
	}
	if err != nil {
		return Account{}, fmt.Errorf("failed to get profile: %w", err)
	}

	var account Account
	if err := json.Unmarshal(item.Data, &account); err != nil {
		return Account{}, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return account, nil
}

// Delete removes profile. When it was current, the first remaining profile
// becomes current.
func (s *Store) Delete(profile string) error {
	profile = normalizeProfile(profile)
	if err := s.ring.Remove(profileKey(profile)); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to remove profile: %w", err)
	}

	profiles, err := s.profiles()
	if err != nil {
		return err
	}
	remaining := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p != profile {
			remaining = append(remaining, p)
		}
	}
	if err := s.saveProfiles(remaining); err != nil {
		return err
	}

	if current, err := s.Current(); err == nil && current == profile {
		next := defaultProfile
		if len(remaining) > 0 {
			next = remaining[0]
		}
		return s.SetCurrent(next)
	}
	return nil
}

// List returns the stored profile names in the order they were added.
func (s *Store) List() ([]string, error) {
	return s.profiles()
}

// Current returns the active profile name.
func (s *Store) Current() (string, error) {
	item, err := s.ring.Get(currentProfileKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return defaultProfile, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get current profile: %w", err)
	}
	return string(item.Data), nil
}

// SetCurrent makes profile the active profile.
func (s *Store) SetCurrent(profile string) error {
	return s.ring.Set(keyring.Item{Key: currentProfileKey, Data: []byte(normalizeProfile(profile))})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
