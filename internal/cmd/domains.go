package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dnsimple/dnsimple-cli/internal/api"
	"github.com/dnsimple/dnsimple-cli/internal/dryrun"
	"github.com/dnsimple/dnsimple-cli/internal/iocontext"
)

var domainHeaders = []string{"ID", "NAME", "STATE", "AUTO RENEW", "EXPIRES"}

func domainRow(d api.Domain) []any {
	return []any{d.ID, d.Name, d.State, d.AutoRenew, valueOrDash(d.ExpiresAt)}
}

func newDomainsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "domains",
		Aliases: []string{"domain"},
		Short:   "Manage domains",
		Long:    "List, inspect, add and remove the domains templates are applied to.",
	}

	cmd.AddCommand(newDomainsListCmd())
	cmd.AddCommand(newDomainsGetCmd())
	cmd.AddCommand(newDomainsCreateCmd())
	cmd.AddCommand(newDomainsDeleteCmd())

	return cmd
}

func newDomainsListCmd() *cobra.Command {
	var lf listFlags

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List domains",
		Example: strings.TrimSpace(`
  # Domains whose name contains "example"
  dnsimple domains list --filter name_like=example
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, account, err := getClient()
			if err != nil {
				return err
			}

			items, pagination, err := fetchList(cmd.Context(), &lf, func(ctx context.Context, opts *api.ListOptions) (*api.Response[[]api.Domain], error) {
				return client.Domains().ListDomains(ctx, account, opts)
			})
			if err != nil {
				return fmt.Errorf("failed to list domains: %w", err)
			}
			return printList(cmd, items, pagination, "No domains found", domainHeaders, domainRow)
		}),
	}

	addListFlags(cmd, &lf)
	return cmd
}

func newDomainsGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "get <domain>",
		Aliases: []string{"show"},
		Short:   "Get a domain by name or ID",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			domain := strings.TrimSpace(args[0])
			client, account, err := getClient()
			if err != nil {
				return err
			}

			resp, err := client.Domains().GetDomain(cmd.Context(), account, domain)
			if err != nil {
				return fmt.Errorf("failed to get domain %s: %w", domain, err)
			}

			if isStructured(cmd) {
				return printStructured(cmd, resp.Data)
			}

			d := resp.Data
			out := iocontext.GetIO(cmd.Context()).Out
			_, _ = fmt.Fprintf(out, "%s (#%d)\n", d.Name, d.ID)
			if d.UnicodeName != "" && d.UnicodeName != d.Name {
				_, _ = fmt.Fprintf(out, "  Unicode:     %s\n", d.UnicodeName)
			}
			_, _ = fmt.Fprintf(out, "  State:       %s\n", d.State)
			_, _ = fmt.Fprintf(out, "  Auto renew:  %t\n", d.AutoRenew)
			_, _ = fmt.Fprintf(out, "  Private:     %t\n", d.PrivateWhois)
			_, _ = fmt.Fprintf(out, "  Expires:     %s\n", valueOrDash(d.ExpiresAt))
			_, _ = fmt.Fprintf(out, "  Created:     %s\n", d.CreatedAt)
			return nil
		}),
	}

	return cmd
}

func newDomainsCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "create <name>",
		Aliases: []string{"add"},
		Short:   "Add a domain to the account",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := strings.ToLower(strings.TrimSpace(args[0]))
			if name == "" {
				return fmt.Errorf("domain name is required")
			}

			client, account, err := getClient()
			if err != nil {
				return err
			}

			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "create",
				Resource:  "domain",
				Method:    "POST",
				Path:      fmt.Sprintf("/v2/%s/domains", account),
				Details:   map[string]any{"name": name},
			}); ok {
				return err
			}

			resp, err := client.Domains().CreateDomain(cmd.Context(), account, api.DomainAttributes{Name: name})
			if err != nil {
				return fmt.Errorf("failed to create domain %s: %w", name, err)
			}

			if isStructured(cmd) {
				return printStructured(cmd, resp.Data)
			}
			printAction(cmd, "Created", "domain", resp.Data.ID, resp.Data.Name)
			return nil
		}),
	}

	return cmd
}

func newDomainsDeleteCmd() *cobra.Command {
	var (
		force       bool
		concurrency int64
		progress    bool
	)

	cmd := &cobra.Command{
		Use:     "delete <domain>...",
		Aliases: []string{"rm"},
		Short:   "Delete domains",
		Args:    cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDArgs(args, "domain")
			if err != nil {
				return err
			}

			client, account, err := getClient()
			if err != nil {
				return err
			}

			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "delete",
				Resource:  "domains",
				Method:    "DELETE",
				Path:      fmt.Sprintf("/v2/%s/domains/{domain}", account),
				Details:   map[string]any{"domains": strings.Join(ids, ", ")},
				Warnings:  []string{"Deleting a domain removes its zone and every record in it."},
			}); ok {
				return err
			}

			confirmed, err := confirmAction(cmd, confirmOptions{
				Prompt:        fmt.Sprintf("Delete %d domain(s): %s? [y/N] ", len(ids), strings.Join(ids, ", ")),
				CancelMessage: "Cancelled.",
				Force:         force,
			})
			if err != nil || !confirmed {
				return err
			}

			return runDeletes(cmd, "domain", ids, concurrency, progress, func(ctx context.Context, id string) error {
				_, err := client.Domains().DeleteDomain(ctx, account, id)
				return err
			})
		}),
	}

	addDeleteFlags(cmd, &force, &concurrency, &progress)
	return cmd
}
