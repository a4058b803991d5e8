package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dnsimple/dnsimple-cli/internal/iocontext"
	"github.com/dnsimple/dnsimple-cli/internal/update"
)

// version is set at build time via ldflags
var version = "dev"

// newUpdateChecker is replaced in tests.
var newUpdateChecker = update.NewChecker

func newVersionCmd() *cobra.Command {
	var noCheck bool

	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			// Update checks fail silently.
			var result *update.CheckResult
			if !noCheck {
				result, _ = newUpdateChecker().Check(cmd.Context(), version)
			}

			if isStructured(cmd) {
				return printStructured(cmd, map[string]any{"version": version, "update": result})
			}

			ioStreams := iocontext.GetIO(cmd.Context())
			_, _ = fmt.Fprintf(ioStreams.Out, "dnsimple-cli version %s\n", version)
			if result != nil && result.UpdateAvailable {
				_, _ = fmt.Fprintf(ioStreams.ErrOut, "\n%s\n", result.Notice())
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&noCheck, "no-update-check", false, "Skip the release check")
	return cmd
}
