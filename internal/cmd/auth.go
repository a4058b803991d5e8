package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dnsimple/dnsimple-cli/internal/api"
	"github.com/dnsimple/dnsimple-cli/internal/config"
	"github.com/dnsimple/dnsimple-cli/internal/iocontext"
	"github.com/dnsimple/dnsimple-cli/internal/validation"
)

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication credentials",
		Long:  "Store DNSimple API tokens in your OS keychain, one per profile.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		token   string
		sandbox bool
		envFile string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save an API token",
		Long: strings.TrimSpace(`
Verify an API token against /whoami and save it to your OS keychain.

Account tokens carry their account. User tokens can reach several accounts,
so they need --account.

Without --token the token is read from stdin, hidden when stdin is a terminal.
`),
		Example: strings.TrimSpace(`
  # Prompt for the token
  dnsimple auth login

  # Save a sandbox token under its own profile
  dnsimple auth login --sandbox --token "$TOKEN" --profile sandbox

  # A user token scoped to one account
  dnsimple auth login --token "$TOKEN" --account 1010

  # Read DNSIMPLE_* values from a .env file
  dnsimple auth login --env-file .env
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			ioStreams := iocontext.GetIO(cmd.Context())
			profile := flags.Profile
			accountID := flags.Account
			baseURL := flags.BaseURL

			if envFile != "" {
				envVars, err := loadAuthEnvFile(envFile)
				if err != nil {
					return err
				}
				token = firstSet(token, envVars["DNSIMPLE_TOKEN"])
				accountID = firstSet(accountID, envVars["DNSIMPLE_ACCOUNT_ID"])
				baseURL = firstSet(baseURL, envVars["DNSIMPLE_BASE_URL"])
				profile = firstSet(profile, envVars["DNSIMPLE_PROFILE"])
			}

			if sandbox {
				if baseURL != "" && strings.TrimSuffix(baseURL, "/") != api.SandboxBaseURL {
					return fmt.Errorf("--sandbox conflicts with --base-url %s", baseURL)
				}
				baseURL = api.SandboxBaseURL
			}
			baseURL = strings.TrimSuffix(firstSet(baseURL, settings.BaseURL, api.DefaultBaseURL), "/")
			if err := validation.ValidateBaseURL(baseURL); err != nil {
				return fmt.Errorf("invalid base URL: %w", err)
			}

			token = strings.TrimSpace(token)
			if token == "" {
				if flags.NoInput {
					return fmt.Errorf("--token is required when prompts are disabled")
				}
				_, _ = fmt.Fprint(ioStreams.ErrOut, "DNSimple API token: ")
				secret, err := ioStreams.ReadSecret()
				if ioStreams.InIsTerminal() {
					_, _ = fmt.Fprintln(ioStreams.ErrOut)
				}
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}
				token = strings.TrimSpace(secret)
			}
			if token == "" {
				return fmt.Errorf("a token is required")
			}

			client := newClientFactory().newClient(baseURL, token)
			resp, err := client.Identity().Whoami(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to verify token: %w", err)
			}

			who := resp.Data
			switch {
			case who.Account != nil:
				tokenAccount := strconv.FormatInt(who.Account.ID, 10)
				if accountID != "" && accountID != tokenAccount {
					return fmt.Errorf("token belongs to account %s, not %s", tokenAccount, accountID)
				}
				accountID = tokenAccount
			case accountID == "":
				return fmt.Errorf("user tokens need --account to pick an account")
			}

			store, err := config.OpenStore()
			if err != nil {
				return err
			}
			if err := store.Save(profile, config.Account{BaseURL: baseURL, Token: token, AccountID: accountID}); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}
			current, _ := store.Current()

			if isStructured(cmd) {
				return printStructured(cmd, map[string]any{
					"profile":    current,
					"base_url":   baseURL,
					"account_id": accountID,
					"identity":   describeIdentity(who),
				})
			}
			if !flags.Quiet {
				out := ioStreams.Out
				_, _ = fmt.Fprintf(out, "Logged in as %s\n", describeIdentity(who))
				_, _ = fmt.Fprintf(out, "  Profile:    %s\n", current)
				_, _ = fmt.Fprintf(out, "  Base URL:   %s\n", baseURL)
				_, _ = fmt.Fprintf(out, "  Account ID: %s\n", accountID)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&token, "token", "", "API access token (prompted for when omitted)")
	cmd.Flags().BoolVar(&sandbox, "sandbox", false, "Use the DNSimple sandbox API")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load DNSIMPLE_* values from a .env file")
	flagAlias(cmd.Flags(), "env-file", "env")

	return cmd
}

func loadAuthEnvFile(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("--env-file requires a file path")
	}
	envVars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read --env-file %q: %w", path, err)
	}
	return envVars, nil
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// describeIdentity names whoever a token authenticates.
func describeIdentity(w api.Whoami) string {
	switch {
	case w.Account != nil:
		return fmt.Sprintf("account %d (%s)", w.Account.ID, w.Account.Email)
	case w.User != nil:
		return fmt.Sprintf("user %d (%s)", w.User.ID, w.User.Email)
	}
	return "unknown"
}

func newAuthStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the active credentials",
		Long:  "Resolve credentials the way every command does and check them against /whoami.",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			factory := newClientFactory()
			cfg, err := factory.resolve()
			if err != nil {
				return err
			}

			resp, err := factory.newClient(cfg.BaseURL, cfg.Token).Identity().Whoami(cmd.Context())
			if err != nil {
				return fmt.Errorf("credentials were rejected: %w", err)
			}

			tokenSource := "profile"
			if strings.TrimSpace(os.Getenv("DNSIMPLE_TOKEN")) != "" {
				tokenSource = "DNSIMPLE_TOKEN"
			}

			if isStructured(cmd) {
				return printStructured(cmd, map[string]any{
					"authenticated": true,
					"profile":       cfg.Profile,
					"base_url":      cfg.BaseURL,
					"account_id":    cfg.AccountID,
					"token_source":  tokenSource,
					"whoami":        resp.Data,
				})
			}

			out := iocontext.GetIO(cmd.Context()).Out
			_, _ = fmt.Fprintf(out, "Authenticated as %s\n", describeIdentity(resp.Data))
			_, _ = fmt.Fprintf(out, "  Profile:    %s\n", valueOrDash(cfg.Profile))
			_, _ = fmt.Fprintf(out, "  Base URL:   %s\n", cfg.BaseURL)
			_, _ = fmt.Fprintf(out, "  Account ID: %s\n", valueOrDash(cfg.AccountID))
			_, _ = fmt.Fprintf(out, "  Token from: %s\n", tokenSource)
			return nil
		}),
	}

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Long:  "Remove the credentials of --profile, or of the current profile.",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			store, err := config.OpenStore()
			if err != nil {
				return err
			}

			profile := flags.Profile
			if profile == "" {
				if profile, err = store.Current(); err != nil {
					return err
				}
			}
			if _, err := store.Load(profile); err != nil {
				if errors.Is(err, config.ErrProfileNotFound) {
					return fmt.Errorf("not logged in under profile %q", profile)
				}
				return err
			}
			if err := store.Delete(profile); err != nil {
				return err
			}

			if isStructured(cmd) {
				return printStructured(cmd, map[string]any{"logged_out": true, "profile": profile})
			}
			printAction(cmd, "Removed", "credentials for profile", profile, "")
			return nil
		}),
	}

	return cmd
}
