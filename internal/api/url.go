package api

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// APIVersion is the path prefix of every versioned endpoint.
const APIVersion = "v2"

// ListOptions carries the pagination, sorting and filtering parameters of a
// list call. Zero values are omitted from the query string.
type ListOptions struct {
	Page    int
	PerPage int
	// Sort is a comma separated list of field:direction pairs, e.g. "name:asc".
	Sort string
	// Filter holds server side filters, sent as plain query parameters.
	Filter map[string]string
	// Query holds arbitrary extra parameters passed through verbatim.
	Query map[string]string
}

// Encode renders the options as a query string (without the leading "?").
//
// Parameters are emitted as page, per_page and sort first, followed by
// filters and then pass-through parameters, each group in key order. A key
// is sent once: the first group that sets it wins, so Page beats a "page"
// filter and a filter beats a pass-through parameter of the same name.
func (o *ListOptions) Encode() string {
	if o == nil {
		return ""
	}

	var parts []string
	seen := make(map[string]bool)
	add := func(key, value string) {
		if seen[key] {
			return
		}
		seen[key] = true
		parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(value))
	}

	if o.Page > 0 {
		add("page", strconv.Itoa(o.Page))
	}
	if o.PerPage > 0 {
		add("per_page", strconv.Itoa(o.PerPage))
	}
	if o.Sort != "" {
		add("sort", o.Sort)
	}
	for _, key := range sortedKeys(o.Filter) {
		add(key, o.Filter[key])
	}
	for _, key := range sortedKeys(o.Query) {
		add(key, o.Query[key])
	}

	return strings.Join(parts, "&")
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BuildURL returns the absolute URL of an account scoped resource:
//
//	{baseURL}/v2/{accountID}{resourcePath}[/{resourceID}][?query]
//
// resourcePath must already be escaped (see resourcePathf). accountID and
// resourceID are path escaped here.
func BuildURL(baseURL, accountID, resourcePath, resourceID string, opts *ListOptions) (string, error) {
	if strings.TrimSpace(accountID) == "" {
		return "", ErrMissingAccountID
	}
	if resourcePath != "" && resourcePath[0] != '/' {
		resourcePath = "/" + resourcePath
	}

	var b strings.Builder
	b.WriteString(strings.TrimSuffix(baseURL, "/"))
	b.WriteString("/" + APIVersion + "/")
	b.WriteString(url.PathEscape(accountID))
	b.WriteString(resourcePath)
	if resourceID != "" {
		b.WriteString("/")
		b.WriteString(url.PathEscape(resourceID))
	}
	if query := opts.Encode(); query != "" {
		b.WriteString("?")
		b.WriteString(query)
	}
	return b.String(), nil
}

// resourcePathf formats a nested resource path, path escaping every argument.
//
//	resourcePathf("/templates/%s/records", "my template") // "/templates/my%20template/records"
func resourcePathf(format string, ids ...string) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, args...)
}
