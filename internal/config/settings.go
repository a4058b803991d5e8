package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings are the non-secret defaults read from the settings file and
// DNSIMPLE_* environment variables.
type Settings struct {
	Output       string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	BaseURL      string
	AccountID    string
}

// Setting keys.
const (
	KeyOutput       = "output"
	KeyTimeout      = "timeout"
	KeyRetryMax     = "retry_max"
	KeyRetryWaitMin = "retry_wait_min"
	KeyRetryWaitMax = "retry_wait_max"
	KeyBaseURL      = "base_url"
	KeyAccountID    = "account_id"
)

var settingDefaults = map[string]any{
	KeyOutput:       "text",
	KeyTimeout:      "30s",
	KeyRetryMax:     2,
	KeyRetryWaitMin: "500ms",
	KeyRetryWaitMax: "5s",
	KeyBaseURL:      "",
	KeyAccountID:    "",
}

// SettingKeys returns the known keys in order.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingDefaults))
	for k := range settingDefaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ErrUnknownSetting is returned for keys outside SettingKeys.
type ErrUnknownSetting struct {
	Key string
}

func (e *ErrUnknownSetting) Error() string {
	return fmt.Sprintf("unknown setting %q (known: %s)", e.Key, strings.Join(SettingKeys(), ", "))
}

// SettingsPath returns the settings file location:
// $XDG_CONFIG_HOME/dnsimple-cli/config.yaml on Linux.
func SettingsPath() (string, error) {
	dir, err := userConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, serviceName, "config.yaml"), nil
}

func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	return v, nil
}

// LoadSettings reads path, if it exists, under DNSIMPLE_* environment
// overrides and defaults.
func LoadSettings(path string) (Settings, error) {
	v, err := newViper(path)
	if err != nil {
		return Settings{}, err
	}
	for k, def := range settingDefaults {
		v.SetDefault(k, def)
	}
	v.SetEnvPrefix("DNSIMPLE")
	v.AutomaticEnv()

	s := Settings{
		Output:       v.GetString(KeyOutput),
		Timeout:      v.GetDuration(KeyTimeout),
		RetryMax:     v.GetInt(KeyRetryMax),
		RetryWaitMin: v.GetDuration(KeyRetryWaitMin),
		RetryWaitMax: v.GetDuration(KeyRetryWaitMax),
		BaseURL:      strings.TrimSuffix(v.GetString(KeyBaseURL), "/"),
		AccountID:    v.GetString(KeyAccountID),
	}
	if s.RetryMax < 0 {
		return Settings{}, fmt.Errorf("%s must not be negative", KeyRetryMax)
	}
	return s, nil
}

// FileSettings returns only the values stored in path, without defaults
// or environment overrides.
func FileSettings(path string) (map[string]any, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}
	return v.AllSettings(), nil
}

// SetSetting validates value for key and writes it to path.
func SetSetting(path, key, value string) error {
	parsed, err := parseSetting(key, value)
	if err != nil {
		return err
	}
	v, err := newViper(path)
	if err != nil {
		return err
	}
	v.Set(key, parsed)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return v.WriteConfigAs(path)
}

// UnsetSetting removes key from path.
func UnsetSetting(path, key string) error {
	if _, ok := settingDefaults[key]; !ok {
		return &ErrUnknownSetting{Key: key}
	}
	current, err := FileSettings(path)
	if err != nil {
		return err
	}
	delete(current, key)

	v := viper.New()
	v.SetConfigType("yaml")
	for k, val := range current {
		v.Set(k, val)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return v.WriteConfigAs(path)
}

func parseSetting(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case KeyTimeout, KeyRetryWaitMin, KeyRetryWaitMax:
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid %s %q: expected a duration such as 30s", key, value)
		}
		return d.String(), nil
	case KeyRetryMax:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid %s %q: expected a non-negative integer", key, value)
		}
		return n, nil
	case KeyOutput:
		switch value {
		case "text", "json", "jsonl", "yaml":
			return value, nil
		}
		return nil, fmt.Errorf("invalid %s %q: must be one of text, json, jsonl, yaml", key, value)
	case KeyBaseURL:
		return strings.TrimSuffix(value, "/"), nil
	case KeyAccountID:
		return value, nil
	default:
		return nil, &ErrUnknownSetting{Key: key}
	}
}
