package config

import (
	"errors"
	"os"
	"strings"
)

// DefaultBaseURL is used when nothing else names a host.
const DefaultBaseURL = "https://api.dnsimple.com"

// Overrides are values given on the command line.
type Overrides struct {
	Profile   string
	BaseURL   string
	AccountID string
}

// ClientConfig is the resolved connection for one invocation.
type ClientConfig struct {
	Profile   string
	BaseURL   string
	Token     string
	AccountID string
}

// CredentialSource is the part of Store that Resolve needs.
type CredentialSource interface {
	Load(profile string) (Account, error)
	Current() (string, error)
}

// Resolve merges, highest first: flags, DNSIMPLE_* environment, the stored
// profile, the settings file and the default base URL. A missing token is
// ErrNotConfigured. A missing account id is left for the API layer to
// report, since /whoami needs none.
//
// creds may be nil when the keyring is unavailable and DNSIMPLE_TOKEN is set.
func Resolve(creds CredentialSource, settings Settings, flags Overrides) (ClientConfig, error) {
	cfg := ClientConfig{Profile: firstNonBlank(flags.Profile, os.Getenv("DNSIMPLE_PROFILE"))}

	var account Account
	if creds != nil {
		if cfg.Profile == "" {
			current, err := creds.Current()
			if err != nil {
				return ClientConfig{}, err
			}
			cfg.Profile = current
		}
		loaded, err := creds.Load(cfg.Profile)
		switch {
		case err == nil:
			account = loaded
		case errors.Is(err, ErrProfileNotFound):
			if flags.Profile != "" {
				return ClientConfig{}, err
			}
		default:
			return ClientConfig{}, err
		}
	}

	cfg.Token = firstNonBlank(os.Getenv("DNSIMPLE_TOKEN"), account.Token)
	cfg.BaseURL = strings.TrimSuffix(firstNonBlank(
		flags.BaseURL,
		os.Getenv("DNSIMPLE_BASE_URL"),
		account.BaseURL,
		settings.BaseURL,
		DefaultBaseURL,
	), "/")
	cfg.AccountID = firstNonBlank(
		flags.AccountID,
		os.Getenv("DNSIMPLE_ACCOUNT_ID"),
		account.AccountID,
		settings.AccountID,
	)

	if cfg.Token == "" {
		return cfg, ErrNotConfigured
	}
	return cfg, nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
