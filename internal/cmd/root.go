package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dnsimple/dnsimple-cli/internal/config"
	"github.com/dnsimple/dnsimple-cli/internal/debug"
	"github.com/dnsimple/dnsimple-cli/internal/dryrun"
	"github.com/dnsimple/dnsimple-cli/internal/filter"
	"github.com/dnsimple/dnsimple-cli/internal/iocontext"
	"github.com/dnsimple/dnsimple-cli/internal/outfmt"
	"github.com/dnsimple/dnsimple-cli/internal/resolve"
	"github.com/dnsimple/dnsimple-cli/internal/validation"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Output       string
	JSON         bool
	Query        string
	JQ           string
	Template     string
	Compact      bool
	Debug        bool
	DryRun       bool
	Quiet        bool
	Yes          bool
	NoInput      bool
	AllowPrivate bool
	Timeout      time.Duration
	RetryMax     int
	ConfigPath   string
	Profile      string
	Account      string
	BaseURL      string
}

// flags holds the global command flags. It is reset at the start of every
// Execute call; nothing may read it outside a running command.
var flags rootFlags

// settings holds the settings file merged with DNSIMPLE_* environment
// overrides, loaded once per Execute.
var settings config.Settings

func parseBoolEnv(key string) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return false
	}
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return enabled
}

// settingsPath returns --config, then DNSIMPLE_CONFIG, then the default
// location.
func settingsPath() (string, error) {
	if path := strings.TrimSpace(flags.ConfigPath); path != "" {
		return path, nil
	}
	if path := strings.TrimSpace(os.Getenv("DNSIMPLE_CONFIG")); path != "" {
		return path, nil
	}
	return config.SettingsPath()
}

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	flags = rootFlags{}
	settings = config.Settings{}

	root := &cobra.Command{
		Use:                "dnsimple",
		Short:              "CLI for the DNSimple API",
		Long:               "Manage DNSimple record templates, template records and domains from the command line.",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true, // enhanceUnknownError suggests instead
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			path, err := settingsPath()
			if err != nil {
				return err
			}
			loaded, err := config.LoadSettings(path)
			if err != nil {
				return err
			}
			settings = loaded

			if !cmd.Flags().Changed("output") {
				flags.Output = settings.Output
			}
			if !cmd.Flags().Changed("timeout") {
				flags.Timeout = settings.Timeout
			}
			if !cmd.Flags().Changed("retry-max") {
				flags.RetryMax = settings.RetryMax
			}
			if flags.RetryMax < 0 {
				return fmt.Errorf("--retry-max must be >= 0")
			}
			if flags.Timeout < 0 {
				return fmt.Errorf("--timeout must be >= 0")
			}

			if flags.Yes {
				flags.NoInput = true
			}

			if flags.JSON {
				if cmd.Flags().Changed("output") && flags.Output != "json" {
					return fmt.Errorf("--json conflicts with --output %s", flags.Output)
				}
				flags.Output = "json"
			}
			query := getJQQuery()
			if query != "" || flags.Template != "" {
				mode, _ := outfmt.Parse(flags.Output)
				if mode == outfmt.Text {
					if cmd.Flags().Changed("output") {
						return fmt.Errorf("--query/--jq/--template require --output json, jsonl or yaml")
					}
					flags.Output = "json"
				}
			}

			mode, err := outfmt.Parse(flags.Output)
			if err != nil {
				return err
			}
			ctx = outfmt.WithMode(ctx, mode)
			ctx = outfmt.WithCompact(ctx, flags.Compact)

			base := *iocontext.GetIO(ctx)
			ioStreams := &base
			if flags.Quiet {
				ioStreams.ErrOut = io.Discard
				if mode == outfmt.Text {
					ioStreams.Out = io.Discard
				}
			}
			ctx = iocontext.WithIO(ctx, ioStreams)
			cmd.SetOut(ioStreams.Out)
			cmd.SetErr(ioStreams.ErrOut)

			allowPrivate := flags.AllowPrivate || parseBoolEnv("DNSIMPLE_ALLOW_PRIVATE") || parseBoolEnv("DNSIMPLE_TESTING")
			validation.SetAllowPrivate(allowPrivate)
			if flags.AllowPrivate && !flags.Quiet {
				_, _ = fmt.Fprintln(ioStreams.ErrOut, "Warning: allowing private/localhost URLs (use only with trusted targets).")
			}

			debug.SetupLogger(flags.Debug)
			ctx = debug.WithDebug(ctx, flags.Debug)
			ctx = dryrun.WithDryRun(ctx, flags.DryRun)

			if query != "" {
				if err := filter.Validate(query); err != nil {
					return err
				}
				ctx = outfmt.WithQuery(ctx, query)
			}
			if flags.Template != "" {
				tmpl, err := loadTemplate(flags.Template)
				if err != nil {
					return err
				}
				ctx = outfmt.WithTemplate(ctx, tmpl)
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)
	streams := iocontext.GetIO(ctx)
	root.SetOut(streams.Out)
	root.SetErr(streams.ErrOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", "text", "Output format: text|json|jsonl|yaml (env DNSIMPLE_OUTPUT)")
	pf.BoolVar(&flags.JSON, "json", false, "Shorthand for --output json")
	pf.StringVarP(&flags.Query, "query", "q", "", "JQ expression to filter structured output")
	pf.StringVar(&flags.JQ, "jq", "", "Alias for --query")
	pf.StringVar(&flags.Template, "template", "", "Go template string (or @path) to render structured output")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Preview changes without executing")
	pf.BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress non-essential output")
	pf.BoolVarP(&flags.Yes, "yes", "y", false, "Skip confirmation prompts")
	pf.BoolVar(&flags.NoInput, "no-input", false, "Disable interactive prompts")
	pf.BoolVar(&flags.AllowPrivate, "allow-private", false, "Allow private/localhost base URLs (unsafe)")
	pf.DurationVar(&flags.Timeout, "timeout", 0, "HTTP request timeout (e.g., 30s, 2m)")
	pf.IntVar(&flags.RetryMax, "retry-max", 0, "Max retries for failed connections; responses are never retried")
	pf.StringVar(&flags.ConfigPath, "config", "", "Settings file (default $XDG_CONFIG_HOME/dnsimple-cli/config.yaml)")
	pf.StringVar(&flags.Profile, "profile", "", "Credential profile to use (env DNSIMPLE_PROFILE)")
	pf.StringVarP(&flags.Account, "account", "a", "", "Account identifier (env DNSIMPLE_ACCOUNT_ID)")
	pf.StringVar(&flags.BaseURL, "base-url", "", "API base URL (env DNSIMPLE_BASE_URL)")

	flagAlias(pf, "dry-run", "dr")
	flagAlias(pf, "compact-json", "cj")
	flagAlias(pf, "account", "account-id")

	root.AddCommand(newTemplatesCmd())
	root.AddCommand(newTemplateRecordsCmd())
	root.AddCommand(newDomainsCmd())
	root.AddCommand(newAuthCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	targetCmd, err := root.ExecuteC()
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanceUnknownError(err, root, targetCmd))
		}
		return err
	}
	return nil
}

// getJQQuery returns --jq, falling back to --query.
func getJQQuery() string {
	if flags.JQ != "" {
		return flags.JQ
	}
	return flags.Query
}

// enhanceUnknownError adds "did you mean?" suggestions to unknown command
// and flag errors.
func enhanceUnknownError(err error, root *cobra.Command, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		unknown := extractQuoted(msg)
		var names []resolve.Named
		for _, c := range root.Commands() {
			if c.IsAvailableCommand() {
				names = append(names, resolve.Named{ID: c.Name(), Names: append([]string{c.Name()}, c.Aliases...)})
			}
		}
		if matches := resolve.Suggest(unknown, names, 1); len(matches) > 0 {
			return fmt.Sprintf("%s\n\nDid you mean %q?", msg, matches[0].ID)
		}
		return msg
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		unknown := strings.TrimLeft(extractFlag(msg), "-")
		cmd := root
		if targetCmd != nil {
			cmd = targetCmd
		}
		var names []resolve.Named
		collect := func(fs *pflag.FlagSet) {
			fs.VisitAll(func(f *pflag.Flag) {
				if !f.Hidden {
					names = append(names, resolve.Named{ID: "--" + f.Name, Names: []string{f.Name}})
				}
			})
		}
		collect(cmd.Flags())
		collect(cmd.InheritedFlags())

		helpCmd := strings.TrimSpace(cmd.CommandPath()) + " --help"
		if matches := resolve.Suggest(unknown, names, 1); unknown != "" && len(matches) > 0 {
			return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, matches[0].ID, helpCmd)
		}
		return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
	}

	return msg
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a flag name (e.g., "--foo") from an error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		// shorthand errors look like "unknown shorthand flag: 'x' in -x"
		idx = strings.LastIndex(s, " -")
		if idx < 0 {
			return ""
		}
		idx++
	}
	rest := s[idx:]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimRight(rest, ".,;:!?\"'")
}

func loadTemplate(value string) (string, error) {
	if strings.HasPrefix(value, "@") {
		data, err := os.ReadFile(strings.TrimPrefix(value, "@"))
		if err != nil {
			return "", fmt.Errorf("failed to read template file: %w", err)
		}
		return string(data), nil
	}
	return value, nil
}
