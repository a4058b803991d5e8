package cmd

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dnsimple/dnsimple-cli/internal/config"
	"github.com/dnsimple/dnsimple-cli/internal/iocontext"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Manage CLI configuration",
		Long:    "Read and write the settings file and manage credential profiles.",
	}

	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigUnsetCmd())
	cmd.AddCommand(newConfigProfilesCmd())

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			path, err := settingsPath()
			if err != nil {
				return err
			}
			if isStructured(cmd) {
				_, statErr := os.Stat(path)
				return printStructured(cmd, map[string]any{"path": path, "exists": statErr == nil})
			}
			_, _ = fmt.Fprintln(iocontext.GetIO(cmd.Context()).Out, path)
			return nil
		}),
	}
}

// effectiveSettings returns every setting as the running command sees it.
func effectiveSettings() map[string]any {
	return map[string]any{
		config.KeyOutput:       settings.Output,
		config.KeyTimeout:      settings.Timeout.String(),
		config.KeyRetryMax:     settings.RetryMax,
		config.KeyRetryWaitMin: settings.RetryWaitMin.String(),
		config.KeyRetryWaitMax: settings.RetryWaitMax.String(),
		config.KeyBaseURL:      settings.BaseURL,
		config.KeyAccountID:    settings.AccountID,
	}
}

func newConfigListCmd() *cobra.Command {
	var fileOnly bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List settings",
		Long:    "List effective settings, including defaults and DNSIMPLE_* overrides. --file lists only what the file stores.",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			values := effectiveSettings()
			if fileOnly {
				path, err := settingsPath()
				if err != nil {
					return err
				}
				if values, err = config.FileSettings(path); err != nil {
					return err
				}
			}

			if isStructured(cmd) {
				return printStructured(cmd, values)
			}

			keys := make([]string, 0, len(values))
			for k := range values {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			f := formatter(cmd)
			if len(keys) == 0 {
				f.Empty("No settings stored")
				return nil
			}
			f.StartTable("KEY", "VALUE")
			for _, k := range keys {
				f.Row(k, fmt.Sprint(values[k]))
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().BoolVar(&fileOnly, "file", false, "Only values stored in the settings file")
	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one effective setting",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			value, ok := effectiveSettings()[args[0]]
			if !ok {
				return &config.ErrUnknownSetting{Key: args[0]}
			}
			if isStructured(cmd) {
				return printStructured(cmd, map[string]any{"key": args[0], "value": value})
			}
			_, _ = fmt.Fprintln(iocontext.GetIO(cmd.Context()).Out, value)
			return nil
		}),
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting",
		Example: `  dnsimple config set output json
  dnsimple config set timeout 1m`,
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			path, err := settingsPath()
			if err != nil {
				return err
			}
			if err := config.SetSetting(path, args[0], args[1]); err != nil {
				return err
			}
			if isStructured(cmd) {
				return printStructured(cmd, map[string]any{"key": args[0], "value": args[1], "path": path})
			}
			printAction(cmd, "Set", args[0], "", args[1])
			return nil
		}),
	}
}

func newConfigUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a setting from the settings file",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			path, err := settingsPath()
			if err != nil {
				return err
			}
			if err := config.UnsetSetting(path, args[0]); err != nil {
				return err
			}
			if isStructured(cmd) {
				return printStructured(cmd, map[string]any{"key": args[0], "unset": true})
			}
			printAction(cmd, "Unset", args[0], "", "")
			return nil
		}),
	}
}

func newConfigProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage credential profiles",
	}

	cmd.AddCommand(newProfilesListCmd())
	cmd.AddCommand(newProfilesUseCmd())
	cmd.AddCommand(newProfilesDeleteCmd())

	return cmd
}

type profileSummary struct {
	Name      string `json:"name"`
	Current   bool   `json:"current"`
	BaseURL   string `json:"base_url,omitempty"`
	AccountID string `json:"account_id,omitempty"`
}

func newProfilesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored profiles",
		Example: "dnsimple config profiles list",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			store, err := config.OpenStore()
			if err != nil {
				return err
			}
			names, err := store.List()
			if err != nil {
				return err
			}
			current, _ := store.Current()

			profiles := make([]profileSummary, 0, len(names))
			for _, name := range names {
				p := profileSummary{Name: name, Current: name == current}
				if account, err := store.Load(name); err == nil {
					p.BaseURL = account.BaseURL
					p.AccountID = account.AccountID
				}
				profiles = append(profiles, p)
			}

			if isStructured(cmd) {
				return printStructured(cmd, map[string]any{"current": current, "profiles": profiles})
			}

			return printList(cmd, profiles, nil, "No profiles stored. Run 'dnsimple auth login' to add one.",
				[]string{"CURRENT", "PROFILE", "BASE URL", "ACCOUNT"},
				func(p profileSummary) []any {
					marker := ""
					if p.Current {
						marker = "*"
					}
					return []any{marker, p.Name, valueOrDash(p.BaseURL), valueOrDash(p.AccountID)}
				})
		}),
	}
}

func newProfilesUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "use <name>",
		Short:   "Make a profile current",
		Example: "dnsimple config profiles use sandbox",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			store, err := config.OpenStore()
			if err != nil {
				return err
			}
			if _, err := store.Load(args[0]); err != nil {
				return err
			}
			if err := store.SetCurrent(args[0]); err != nil {
				return err
			}
			if isStructured(cmd) {
				return printStructured(cmd, map[string]any{"current": args[0]})
			}
			printAction(cmd, "Switched to", "profile", args[0], "")
			return nil
		}),
	}
}

func newProfilesDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a profile",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			store, err := config.OpenStore()
			if err != nil {
				return err
			}
			if _, err := store.Load(args[0]); err != nil {
				if errors.Is(err, config.ErrProfileNotFound) {
					return fmt.Errorf("profile %q does not exist", args[0])
				}
				return err
			}

			confirmed, err := confirmAction(cmd, confirmOptions{
				Prompt:        fmt.Sprintf("Delete profile %q and its token? [y/N] ", args[0]),
				CancelMessage: "Cancelled.",
				Force:         force,
			})
			if err != nil || !confirmed {
				return err
			}

			if err := store.Delete(args[0]); err != nil {
				return err
			}
			if isStructured(cmd) {
				return printStructured(cmd, map[string]any{"deleted": args[0]})
			}
			printAction(cmd, "Deleted", "profile", args[0], "")
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")
	return cmd
}
