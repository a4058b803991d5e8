package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dnsimple/dnsimple-cli/internal/api"
	"github.com/dnsimple/dnsimple-cli/internal/dryrun"
	"github.com/dnsimple/dnsimple-cli/internal/iocontext"
	"github.com/dnsimple/dnsimple-cli/internal/outfmt"
)

// errAlreadyHandled is a sentinel error indicating the error was already printed to stderr.
// Commands using RunE return this to signal Cobra that an error occurred (for exit code)
// without Cobra printing it again (since SilenceErrors is true on root command).
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() []error {
	return []error{errAlreadyHandled, e.err}
}

func (e *handledError) ExitCode() int {
	return e.exitCode
}

// RunE wraps a command function with enhanced error handling
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil {
			return nil
		}
		ioStreams := iocontext.GetIO(cmd.Context())
		if isStructured(cmd) {
			if structured := api.StructuredErrorFromError(err); structured != nil {
				_ = outfmt.WriteJSON(ioStreams.ErrOut, structured)
			}
		} else {
			_, _ = fmt.Fprint(ioStreams.ErrOut, HandleError(err))
		}
		return &handledError{err: err, exitCode: ExitCode(err)}
	}
}

// isStructured reports whether the command writes json, jsonl or yaml.
func isStructured(cmd *cobra.Command) bool {
	return outfmt.IsStructured(cmd.Context())
}

func formatter(cmd *cobra.Command) *outfmt.Formatter {
	ioStreams := iocontext.GetIO(cmd.Context())
	return outfmt.NewFormatter(cmd.Context(), ioStreams.Out, ioStreams.ErrOut)
}

// printStructured writes v in the selected structured mode with --query and
// --template applied.
func printStructured(cmd *cobra.Command, v any) error {
	return formatter(cmd).Output(v)
}

// printList writes a page of items: {"items", "pagination"} in structured
// modes, a table otherwise.
func printList[T any](cmd *cobra.Command, items []T, pagination *api.Pagination, empty string, headers []string, row func(T) []any) error {
	if items == nil {
		items = []T{}
	}
	f := formatter(cmd)
	if isStructured(cmd) {
		payload := map[string]any{"items": items}
		if pagination != nil {
			payload["pagination"] = pagination
		}
		return f.Output(payload)
	}
	if len(items) == 0 {
		f.Empty(empty)
		return nil
	}
	f.StartTable(headers...)
	for _, item := range items {
		f.Row(row(item)...)
	}
	return f.EndTable()
}

func printAction(cmd *cobra.Command, action, resource string, id any, name string) {
	if flags.Quiet || isStructured(cmd) {
		return
	}

	ioStreams := iocontext.GetIO(cmd.Context())
	message := fmt.Sprintf("%s %s", action, resource)
	if id != nil {
		if value, ok := id.(string); !ok || value != "" {
			message = fmt.Sprintf("%s %v", message, id)
		}
	}
	if name != "" {
		message = fmt.Sprintf("%s: %s", message, name)
	}
	_, _ = fmt.Fprintln(ioStreams.Out, message)
}

func maybeDryRun(cmd *cobra.Command, preview *dryrun.Preview) (bool, error) {
	if !dryrun.IsEnabled(cmd.Context()) {
		return false, nil
	}
	if preview == nil {
		preview = &dryrun.Preview{}
	}
	ioStreams := iocontext.GetIO(cmd.Context())
	if isStructured(cmd) {
		return true, preview.WriteJSON(ioStreams.Out)
	}
	preview.Write(ioStreams.Out)
	return true, nil
}

type confirmOptions struct {
	Prompt        string
	CancelMessage string
	Force         bool
}

// confirmAction asks for a y/N answer on stdin. --yes and Force skip the
// prompt; structured output and --no-input refuse to prompt at all.
func confirmAction(cmd *cobra.Command, opts confirmOptions) (bool, error) {
	if flags.Yes || opts.Force {
		return true, nil
	}
	if isStructured(cmd) {
		return false, fmt.Errorf("--force or --yes is required when using --output %s", outfmt.ModeFromContext(cmd.Context()))
	}
	if flags.NoInput {
		return false, fmt.Errorf("confirmation required: pass --force or --yes")
	}

	ioStreams := iocontext.GetIO(cmd.Context())
	_, _ = fmt.Fprint(ioStreams.ErrOut, opts.Prompt)

	response, _ := bufio.NewReader(ioStreams.In).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return true, nil
	}
	if opts.CancelMessage != "" {
		_, _ = fmt.Fprintln(ioStreams.ErrOut, opts.CancelMessage)
	}
	return false, nil
}

// parseIDArgs trims, drops blanks and de-duplicates identifiers, keeping
// their order.
func parseIDArgs(args []string, resource string) ([]string, error) {
	seen := make(map[string]bool, len(args))
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			id := strings.TrimSpace(part)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one %s identifier is required", resource)
	}
	return ids, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func valueOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// aliasBridgeValue wraps a pflag.Value so that Set() on the alias also
// marks the canonical flag as Changed.
type aliasBridgeValue struct {
	pflag.Value
	canonical *pflag.Flag
}

func (v *aliasBridgeValue) Set(s string) error {
	if err := v.Value.Set(s); err != nil {
		return err
	}
	v.canonical.Changed = true
	return nil
}

// flagAlias registers a hidden alias for an existing flag. Both flags share
// the same underlying Value, and setting the alias marks the canonical flag
// as changed.
func flagAlias(fs *pflag.FlagSet, name, alias string) {
	f := fs.Lookup(name)
	if f == nil {
		panic(fmt.Sprintf("flagAlias: flag %q not found", name))
	}
	a := *f
	a.Name = alias
	a.Shorthand = ""
	a.Usage = ""
	a.Hidden = true
	a.Value = &aliasBridgeValue{Value: f.Value, canonical: f}
	a.Annotations = map[string][]string{"alias-of": {name}}
	fs.AddFlag(&a)
}
