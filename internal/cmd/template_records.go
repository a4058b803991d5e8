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
	"github.com/dnsimple/dnsimple-cli/internal/validation"
)

var templateRecordHeaders = []string{"ID", "TYPE", "NAME", "CONTENT", "TTL", "PRIORITY"}

func templateRecordRow(r api.TemplateRecord) []any {
	return []any{r.ID, r.Type, valueOrDash(r.Name), truncate(r.Content, 60), r.TTL, priorityString(r.Priority)}
}

func priorityString(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}

func newTemplateRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template-records",
		Aliases: []string{"template-record", "records"},
		Short:   "Manage the records of a template",
	}

	cmd.AddCommand(newTemplateRecordsListCmd())
	cmd.AddCommand(newTemplateRecordsGetCmd())
	cmd.AddCommand(newTemplateRecordsCreateCmd())
	cmd.AddCommand(newTemplateRecordsDeleteCmd())

	return cmd
}

func newTemplateRecordsListCmd() *cobra.Command {
	var lf listFlags

	cmd := &cobra.Command{
		Use:     "list <template>",
		Aliases: []string{"ls"},
		Short:   "List the records of a template",
		Example: strings.TrimSpace(`
  # List the records of the alpha template
  dnsimple template-records list alpha

  # Only MX records
  dnsimple template-records list alpha --filter type=MX
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			template := strings.TrimSpace(args[0])
			client, account, err := getClient()
			if err != nil {
				return err
			}

			items, pagination, err := fetchList(cmd.Context(), &lf, func(ctx context.Context, opts *api.ListOptions) (*api.Response[[]api.TemplateRecord], error) {
				return client.TemplateRecords().ListTemplateRecords(ctx, account, template, opts)
			})
			if err != nil {
				return fmt.Errorf("failed to list records of template %s: %w", template, err)
			}
			return printList(cmd, items, pagination, "No records found", templateRecordHeaders, templateRecordRow)
		}),
	}

	addListFlags(cmd, &lf)
	return cmd
}

func newTemplateRecordsGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "get <template> <record-id>",
		Aliases: []string{"show"},
		Short:   "Get a template record",
		Args:    cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			template := strings.TrimSpace(args[0])
			id, err := validation.ParsePositiveInt(args[1], "record ID")
			if err != nil {
				return err
			}

			client, account, err := getClient()
			if err != nil {
				return err
			}

			resp, err := client.TemplateRecords().GetTemplateRecord(cmd.Context(), account, template, strconv.Itoa(id))
			if err != nil {
				return fmt.Errorf("failed to get record %d of template %s: %w", id, template, err)
			}

			if isStructured(cmd) {
				return printStructured(cmd, resp.Data)
			}

			r := resp.Data
			out := iocontext.GetIO(cmd.Context()).Out
			_, _ = fmt.Fprintf(out, "Record #%d (template %d)\n", r.ID, r.TemplateID)
			_, _ = fmt.Fprintf(out, "  Type:     %s\n", r.Type)
			_, _ = fmt.Fprintf(out, "  Name:     %s\n", valueOrDash(r.Name))
			_, _ = fmt.Fprintf(out, "  Content:  %s\n", r.Content)
			_, _ = fmt.Fprintf(out, "  TTL:      %d\n", r.TTL)
			_, _ = fmt.Fprintf(out, "  Priority: %s\n", priorityString(r.Priority))
			_, _ = fmt.Fprintf(out, "  Created:  %s\n", r.CreatedAt)
			return nil
		}),
	}

	return cmd
}

func newTemplateRecordsCreateCmd() *cobra.Command {
	var (
		name     string
		typ      string
		content  string
		ttl      int
		priority int
	)

	cmd := &cobra.Command{
		Use:     "create <template>",
		Aliases: []string{"add"},
		Short:   "Add a record to a template",
		Example: strings.TrimSpace(`
  # Add an MX record
  dnsimple template-records create alpha --type MX --content mx.example.com --priority 10

  # Add an apex A record with a short TTL
  dnsimple template-records create alpha --type A --content 192.0.2.1 --ttl 300
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			template := strings.TrimSpace(args[0])

			recordType, err := validation.NormalizeRecordType(typ)
			if err != nil {
				return err
			}
			if strings.TrimSpace(content) == "" {
				return fmt.Errorf("--content is required")
			}
			attrs := api.TemplateRecordAttributes{
				Name:    strings.TrimSpace(name),
				Type:    recordType,
				Content: content,
			}
			details := map[string]any{"type": recordType, "name": attrs.Name, "content": content}
			if cmd.Flags().Changed("ttl") {
				if ttl <= 0 {
					return fmt.Errorf("--ttl must be a positive number of seconds")
				}
				attrs.TTL = ttl
				details["ttl"] = ttl
			}
			if cmd.Flags().Changed("priority") {
				if priority < 0 {
					return fmt.Errorf("--priority must be >= 0")
				}
				attrs.Priority = &priority
				details["priority"] = priority
			}

			client, account, err := getClient()
			if err != nil {
				return err
			}

			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "create",
				Resource:  "record in template " + template,
				Method:    "POST",
				Path:      fmt.Sprintf("/v2/%s/templates/%s/records", account, template),
				Details:   details,
			}); ok {
				return err
			}

			resp, err := client.TemplateRecords().CreateTemplateRecord(cmd.Context(), account, template, attrs)
			if err != nil {
				return fmt.Errorf("failed to add record to template %s: %w", template, err)
			}

			if isStructured(cmd) {
				return printStructured(cmd, resp.Data)
			}
			printAction(cmd, "Created", "record", resp.Data.ID, fmt.Sprintf("%s %s", resp.Data.Type, resp.Data.Content))
			return nil
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "Record name relative to the domain (empty for the apex)")
	cmd.Flags().StringVar(&typ, "type", "", "Record type, e.g. A, CNAME, MX, TXT (required)")
	cmd.Flags().StringVar(&content, "content", "", "Record content (required)")
	cmd.Flags().IntVar(&ttl, "ttl", 0, "TTL in seconds (server default when unset)")
	cmd.Flags().IntVar(&priority, "priority", 0, "Priority for MX and SRV records")
	flagAlias(cmd.Flags(), "priority", "prio")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newTemplateRecordsDeleteCmd() *cobra.Command {
	var (
		force       bool
		concurrency int64
		progress    bool
	)

	cmd := &cobra.Command{
		Use:     "delete <template> <record-id>...",
		Aliases: []string{"rm"},
		Short:   "Delete template records",
		Example: strings.TrimSpace(`
  # Delete two records of the alpha template
  dnsimple template-records delete alpha 296 297 --force
`),
		Args: cobra.MinimumNArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			template := strings.TrimSpace(args[0])
			ids, err := parseIDArgs(args[1:], "record")
			if err != nil {
				return err
			}
			for _, id := range ids {
				if _, err := validation.ParsePositiveInt(id, "record ID"); err != nil {
					return err
				}
			}

			client, account, err := getClient()
			if err != nil {
				return err
			}

			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "delete",
				Resource:  "records of template " + template,
				Method:    "DELETE",
				Path:      fmt.Sprintf("/v2/%s/templates/%s/records/{record}", account, template),
				Details:   map[string]any{"records": strings.Join(ids, ", ")},
			}); ok {
				return err
			}

			confirmed, err := confirmAction(cmd, confirmOptions{
				Prompt:        fmt.Sprintf("Delete %d record(s) from template %s? [y/N] ", len(ids), template),
				CancelMessage: "Cancelled.",
				Force:         force,
			})
			if err != nil || !confirmed {
				return err
			}

			return runDeletes(cmd, "record", ids, concurrency, progress, func(ctx context.Context, id string) error {
				_, err := client.TemplateRecords().DeleteTemplateRecord(ctx, account, template, id)
				return err
			})
		}),
	}

	addDeleteFlags(cmd, &force, &concurrency, &progress)
	return cmd
}
