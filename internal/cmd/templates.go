package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dnsimple/dnsimple-cli/internal/api"
	"github.com/dnsimple/dnsimple-cli/internal/dryrun"
	"github.com/dnsimple/dnsimple-cli/internal/iocontext"
	"github.com/dnsimple/dnsimple-cli/internal/resolve"
	"github.com/dnsimple/dnsimple-cli/internal/validation"
)

var templateHeaders = []string{"ID", "SHORT NAME", "NAME", "DESCRIPTION"}

func templateRow(t api.Template) []any {
	return []any{t.ID, t.ShortName, t.Name, truncate(valueOrDash(t.Description), 50)}
}

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"template", "tpl"},
		Short:   "Manage record templates",
		Long:    "Create, list, update, delete and apply DNS record templates.",
	}

	cmd.AddCommand(newTemplatesListCmd())
	cmd.AddCommand(newTemplatesGetCmd())
	cmd.AddCommand(newTemplatesCreateCmd())
	cmd.AddCommand(newTemplatesUpdateCmd())
	cmd.AddCommand(newTemplatesDeleteCmd())
	cmd.AddCommand(newTemplatesApplyCmd())

	return cmd
}

func newTemplatesListCmd() *cobra.Command {
	var lf listFlags

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List templates",
		Example: strings.TrimSpace(`
  # List templates
  dnsimple templates list

  # Sorted, every page, as JSON
  dnsimple templates list --sort name:asc --all -o json

  # Only the short names
  dnsimple templates list --jq '.items[].short_name'
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, account, err := getClient()
			if err != nil {
				return err
			}

			items, pagination, err := fetchList(cmd.Context(), &lf, func(ctx context.Context, opts *api.ListOptions) (*api.Response[[]api.Template], error) {
				return client.Templates().ListTemplates(ctx, account, opts)
			})
			if err != nil {
				return fmt.Errorf("failed to list templates: %w", err)
			}
			return printList(cmd, items, pagination, "No templates found", templateHeaders, templateRow)
		}),
	}

	addListFlags(cmd, &lf)
	return cmd
}

func newTemplatesGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "get <template>...",
		Aliases: []string{"show"},
		Short:   "Get templates by ID or short name",
		Long:    "Get one or more templates. Several templates are fetched concurrently.",
		Example: strings.TrimSpace(`
  # Get a template
  dnsimple templates get alpha

  # Get several templates at once
  dnsimple templates get alpha beta 42 -o json
`),
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDArgs(args, "template")
			if err != nil {
				return err
			}

			client, account, err := getClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			pending := make([]<-chan api.Result[*api.Response[api.Template]], len(ids))
			for i, id := range ids {
				pending[i] = api.Async(ctx, func(ctx context.Context) (*api.Response[api.Template], error) {
					return client.Templates().GetTemplate(ctx, account, id)
				})
			}

			templates := make([]api.Template, 0, len(ids))
			for i, ch := range pending {
				resp, err := api.Await(ctx, ch)
				if err != nil {
					if api.IsNotFound(err) {
						suggestTemplates(ctx, cmd, client, account, ids[i])
					}
					return fmt.Errorf("failed to get template %s: %w", ids[i], err)
				}
				templates = append(templates, resp.Data)
			}

			if isStructured(cmd) {
				if len(templates) == 1 {
					return printStructured(cmd, templates[0])
				}
				return printStructured(cmd, templates)
			}

			out := iocontext.GetIO(ctx).Out
			for i, t := range templates {
				if i > 0 {
					_, _ = fmt.Fprintln(out)
				}
				_, _ = fmt.Fprintf(out, "Template #%d\n", t.ID)
				_, _ = fmt.Fprintf(out, "  Name:        %s\n", t.Name)
				_, _ = fmt.Fprintf(out, "  Short name:  %s\n", t.ShortName)
				_, _ = fmt.Fprintf(out, "  Description: %s\n", valueOrDash(t.Description))
				_, _ = fmt.Fprintf(out, "  Account:     %d\n", t.AccountID)
				_, _ = fmt.Fprintf(out, "  Created:     %s\n", t.CreatedAt)
				_, _ = fmt.Fprintf(out, "  Updated:     %s\n", t.UpdatedAt)
			}
			return nil
		}),
	}

	return cmd
}

// suggestTemplates prints the templates whose names look like query. It
// is best effort: a failed lookup prints nothing.
func suggestTemplates(ctx context.Context, cmd *cobra.Command, client *api.Client, account, query string) {
	resp, err := client.Templates().ListTemplates(ctx, account, &api.ListOptions{PerPage: 100})
	if err != nil {
		return
	}
	items := make([]resolve.Named, 0, len(resp.Data))
	for _, t := range resp.Data {
		items = append(items, resolve.Named{ID: t.ShortName, Names: []string{t.ShortName, t.Name, strconv.FormatInt(t.ID, 10)}})
	}

	errOut := iocontext.GetIO(cmd.Context()).ErrOut
	if id, err := resolve.Resolve(query, items); err == nil {
		_, _ = fmt.Fprintf(errOut, "Did you mean %q?\n", id)
		return
	}
	matches := resolve.Suggest(query, items, 3)
	if len(matches) == 0 {
		return
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.ID
	}
	_, _ = fmt.Fprintf(errOut, "Did you mean one of: %s?\n", strings.Join(names, ", "))
}

type templateFlags struct {
	name        string
	shortName   string
	description string
}

func (tf *templateFlags) register(cmd *cobra.Command, nameUsage string) {
	cmd.Flags().StringVar(&tf.name, "name", "", nameUsage)
	cmd.Flags().StringVar(&tf.shortName, "short-name", "", "Short name (letters, digits, _ and -)")
	cmd.Flags().StringVar(&tf.description, "description", "", "Description")
	flagAlias(cmd.Flags(), "short-name", "sid")
	flagAlias(cmd.Flags(), "description", "desc")
}

// attributes validates the flags set on cmd and returns them as a request
// body. Unset flags are left out.
func (tf *templateFlags) attributes(cmd *cobra.Command) (api.TemplateAttributes, map[string]any, error) {
	var attrs api.TemplateAttributes
	details := map[string]any{}
	if cmd.Flags().Changed("name") {
		if err := validation.ValidateName(tf.name); err != nil {
			return attrs, nil, err
		}
		attrs.Name = strings.TrimSpace(tf.name)
		details["name"] = attrs.Name
	}
	if cmd.Flags().Changed("short-name") {
		if err := validation.ValidateShortName(tf.shortName); err != nil {
			return attrs, nil, err
		}
		attrs.ShortName = api.String(strings.TrimSpace(tf.shortName))
		details["short_name"] = *attrs.ShortName
	}
	if cmd.Flags().Changed("description") {
		if err := validation.ValidateDescription(tf.description); err != nil {
			return attrs, nil, err
		}
		attrs.Description = api.String(tf.description)
		details["description"] = tf.description
	}
	return attrs, details, nil
}

func newTemplatesCreateCmd() *cobra.Command {
	var tf templateFlags

	cmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"mk"},
		Short:   "Create a template",
		Example: strings.TrimSpace(`
  # Create a template
  dnsimple templates create --name Beta --short-name beta --description "A beta template."
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("name") {
				return fmt.Errorf("--name is required")
			}
			attrs, details, err := tf.attributes(cmd)
			if err != nil {
				return err
			}

			client, account, err := getClient()
			if err != nil {
				return err
			}

			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "create",
				Resource:  "template",
				Method:    "POST",
				Path:      fmt.Sprintf("/v2/%s/templates", account),
				Details:   details,
			}); ok {
				return err
			}

			resp, err := client.Templates().CreateTemplate(cmd.Context(), account, attrs)
			if err != nil {
				return fmt.Errorf("failed to create template: %w", err)
			}

			if isStructured(cmd) {
				return printStructured(cmd, resp.Data)
			}
			printAction(cmd, "Created", "template", resp.Data.ID, resp.Data.Name)
			return nil
		}),
	}

	tf.register(cmd, "Template name (required)")
	return cmd
}

func newTemplatesUpdateCmd() *cobra.Command {
	var tf templateFlags

	cmd := &cobra.Command{
		Use:     "update <template>",
		Aliases: []string{"up"},
		Short:   "Update a template",
		Example: strings.TrimSpace(`
  # Rename a template
  dnsimple templates update alpha --name "Alpha Prime"
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			template := strings.TrimSpace(args[0])
			attrs, details, err := tf.attributes(cmd)
			if err != nil {
				return err
			}
			if len(details) == 0 {
				return fmt.Errorf("at least one of --name, --short-name or --description is required")
			}

			client, account, err := getClient()
			if err != nil {
				return err
			}

			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "update",
				Resource:  "template " + template,
				Method:    "PATCH",
				Path:      fmt.Sprintf("/v2/%s/templates/%s", account, template),
				Details:   details,
			}); ok {
				return err
			}

			resp, err := client.Templates().UpdateTemplate(cmd.Context(), account, template, attrs)
			if err != nil {
				return fmt.Errorf("failed to update template %s: %w", template, err)
			}

			if isStructured(cmd) {
				return printStructured(cmd, resp.Data)
			}
			printAction(cmd, "Updated", "template", resp.Data.ID, resp.Data.Name)
			return nil
		}),
	}

	tf.register(cmd, "Template name")
	return cmd
}

func newTemplatesDeleteCmd() *cobra.Command {
	var (
		force       bool
		concurrency int64
		progress    bool
	)

	cmd := &cobra.Command{
		Use:     "delete <template>...",
		Aliases: []string{"rm"},
		Short:   "Delete templates",
		Long:    "Delete one or more templates. Several templates are deleted concurrently.",
		Example: strings.TrimSpace(`
  # Delete a template
  dnsimple templates delete alpha

  # Delete several without prompting
  dnsimple templates delete alpha beta gamma --force
`),
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDArgs(args, "template")
			if err != nil {
				return err
			}

			client, account, err := getClient()
			if err != nil {
				return err
			}

			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "delete",
				Resource:  "templates",
				Method:    "DELETE",
				Path:      fmt.Sprintf("/v2/%s/templates/{template}", account),
				Details:   map[string]any{"templates": strings.Join(ids, ", ")},
			}); ok {
				return err
			}

			confirmed, err := confirmAction(cmd, confirmOptions{
				Prompt:        fmt.Sprintf("Delete %d template(s): %s? [y/N] ", len(ids), strings.Join(ids, ", ")),
				CancelMessage: "Cancelled.",
				Force:         force,
			})
			if err != nil || !confirmed {
				return err
			}

			return runDeletes(cmd, "template", ids, concurrency, progress, func(ctx context.Context, id string) error {
				_, err := client.Templates().DeleteTemplate(ctx, account, id)
				return err
			})
		}),
	}

	addDeleteFlags(cmd, &force, &concurrency, &progress)
	return cmd
}

func addDeleteFlags(cmd *cobra.Command, force *bool, concurrency *int64, progress *bool) {
	cmd.Flags().BoolVarP(force, "force", "f", false, "Skip the confirmation prompt")
	cmd.Flags().Int64Var(concurrency, "concurrency", DefaultConcurrency, "Maximum deletes in flight")
	cmd.Flags().BoolVar(progress, "progress", false, "Report progress on stderr")
}

// runDeletes deletes ids concurrently and reports per-id outcomes. The
// error of the first failure, in argument order, is returned.
func runDeletes(cmd *cobra.Command, resource string, ids []string, concurrency int64, progress bool, del func(context.Context, string) error) error {
	ioStreams := iocontext.GetIO(cmd.Context())
	var progressOut = ioStreams.ErrOut
	if !progress || isStructured(cmd) || flags.Quiet {
		progressOut = nil
	}

	results := runBulkOperation(cmd.Context(), ids, concurrency, progressOut, del)
	success, failure := countResults(results)

	if isStructured(cmd) {
		if err := printStructured(cmd, map[string]any{
			"deleted": success,
			"failed":  failure,
			"results": results,
		}); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Success {
				printAction(cmd, "Deleted", resource, r.ID, "")
			} else if len(ids) > 1 {
				_, _ = fmt.Fprintf(ioStreams.ErrOut, "Failed to delete %s %s: %s\n", resource, r.ID, r.Error)
			}
		}
	}

	if failure == 0 {
		return nil
	}
	if len(ids) == 1 {
		return fmt.Errorf("failed to delete %s %s: %w", resource, ids[0], firstError(results))
	}
	return fmt.Errorf("failed to delete %d of %d %ss: %w", failure, len(ids), resource, firstError(results))
}

func newTemplatesApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <domain> <template>",
		Short: "Apply a template to a domain",
		Long:  "Add the records of a template to a domain's zone.",
		Example: strings.TrimSpace(`
  # Apply the alpha template to example.com
  dnsimple templates apply example.com alpha
`),
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			domain := strings.TrimSpace(args[0])
			template := strings.TrimSpace(args[1])

			client, account, err := getClient()
			if err != nil {
				return err
			}

			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "apply",
				Resource:  "template " + template,
				Method:    "POST",
				Path:      fmt.Sprintf("/v2/%s/domains/%s/templates/%s", account, domain, template),
				Details:   map[string]any{"domain": domain, "template": template},
			}); ok {
				return err
			}

			if _, err := client.Templates().ApplyTemplate(cmd.Context(), account, domain, template); err != nil {
				return fmt.Errorf("failed to apply template %s to %s: %w", template, domain, err)
			}

			if isStructured(cmd) {
				return printStructured(cmd, map[string]any{"applied": true, "domain": domain, "template": template})
			}
			_, _ = fmt.Fprintf(iocontext.GetIO(cmd.Context()).Out, "Applied template %s to %s\n", template, domain)
			return nil
		}),
	}

	return cmd
}
