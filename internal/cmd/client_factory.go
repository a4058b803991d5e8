package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dnsimple/dnsimple-cli/internal/api"
	"github.com/dnsimple/dnsimple-cli/internal/config"
	"github.com/dnsimple/dnsimple-cli/internal/validation"
)

type clientFactory struct {
	timeout   time.Duration
	retry     api.RetryConfig
	userAgent string
	overrides config.Overrides
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		timeout: flags.Timeout,
		retry: api.RetryConfig{
			RetryMax:     flags.RetryMax,
			RetryWaitMin: settings.RetryWaitMin,
			RetryWaitMax: settings.RetryWaitMax,
		},
		userAgent: fmt.Sprintf("dnsimple-cli/%s", version),
		overrides: config.Overrides{
			Profile:   flags.Profile,
			BaseURL:   flags.BaseURL,
			AccountID: flags.Account,
		},
	}
}

// resolve merges flags, environment, the stored profile and settings. When
// the keyring cannot be opened, DNSIMPLE_TOKEN alone is enough.
func (f *clientFactory) resolve() (config.ClientConfig, error) {
	var creds config.CredentialSource
	store, err := config.OpenStore()
	if err != nil {
		if strings.TrimSpace(os.Getenv("DNSIMPLE_TOKEN")) == "" {
			return config.ClientConfig{}, err
		}
	} else {
		creds = store
	}

	cfg, err := config.Resolve(creds, settings, f.overrides)
	if err != nil {
		return cfg, err
	}
	if err := validation.ValidateBaseURL(cfg.BaseURL); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (f *clientFactory) newClient(baseURL, token string) *api.Client {
	client := api.New(baseURL, token, f.retry, f.timeout)
	client.UserAgent = f.userAgent
	return client
}

// account returns a client and the account every call is scoped to.
func (f *clientFactory) account() (*api.Client, string, error) {
	cfg, err := f.resolve()
	if err != nil {
		return nil, "", err
	}
	return f.newClient(cfg.BaseURL, cfg.Token), cfg.AccountID, nil
}

// getClient creates an API client from stored credentials
func getClient() (*api.Client, string, error) {
	return newClientFactory().account()
}
