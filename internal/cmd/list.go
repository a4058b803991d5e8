package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dnsimple/dnsimple-cli/internal/api"
	"github.com/dnsimple/dnsimple-cli/internal/validation"
)

const defaultMaxPages = 100

// listFlags are the pagination, sorting and filtering flags shared by list
// commands.
type listFlags struct {
	page     int
	perPage  int
	sort     string
	filters  []string
	params   []string
	all      bool
	maxPages int
}

func addListFlags(cmd *cobra.Command, lf *listFlags) {
	cmd.Flags().IntVar(&lf.page, "page", 0, "Page to fetch (server default when omitted)")
	cmd.Flags().IntVar(&lf.perPage, "per-page", 0, "Entries per page")
	cmd.Flags().StringVar(&lf.sort, "sort", "", "Sort order, e.g. name:asc,id:desc")
	cmd.Flags().StringArrayVar(&lf.filters, "filter", nil, "Filter as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&lf.params, "param", nil, "Extra query parameter as key=value (repeatable)")
	cmd.Flags().BoolVar(&lf.all, "all", false, "Fetch every page")
	cmd.Flags().IntVar(&lf.maxPages, "max-pages", defaultMaxPages, "Maximum pages to fetch with --all")
	flagAlias(cmd.Flags(), "per-page", "limit")
}

func (lf *listFlags) options() (*api.ListOptions, error) {
	if lf.page < 0 {
		return nil, fmt.Errorf("--page must be >= 0")
	}
	if lf.perPage < 0 {
		return nil, fmt.Errorf("--per-page must be >= 0")
	}
	if lf.all && lf.maxPages <= 0 {
		return nil, fmt.Errorf("--max-pages must be > 0")
	}
	filters, err := validation.ParseKeyValues(lf.filters, "filter")
	if err != nil {
		return nil, err
	}
	params, err := validation.ParseKeyValues(lf.params, "param")
	if err != nil {
		return nil, err
	}
	return &api.ListOptions{
		Page:    lf.page,
		PerPage: lf.perPage,
		Sort:    lf.sort,
		Filter:  filters,
		Query:   params,
	}, nil
}

// fetchList calls fetch once, or with --all walks the pages until the last
// one or --max-pages. The returned pagination is that of the last page.
func fetchList[T any](ctx context.Context, lf *listFlags, fetch func(context.Context, *api.ListOptions) (*api.Response[[]T], error)) ([]T, *api.Pagination, error) {
	opts, err := lf.options()
	if err != nil {
		return nil, nil, err
	}

	resp, err := fetch(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	items := resp.Data
	pagination := resp.Pagination
	if !lf.all {
		return items, pagination, nil
	}

	for pages := 1; pagination.HasNextPage() && pages < lf.maxPages; pages++ {
		next := *opts
		next.Page = pagination.CurrentPage + 1
		resp, err = fetch(ctx, &next)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch page %d: %w", next.Page, err)
		}
		items = append(items, resp.Data...)
		pagination = resp.Pagination
	}
	return items, pagination, nil
}
