// Package resolve matches user input against resource names, e.g. a
// template given by a partial name instead of its ID or short name.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Named is a resource with an identifier and the names it is known by.
// For templates that is the display name and the short name.
type Named struct {
	ID    string
	Names []string
}

// Match is a fuzzy match result with score.
type Match struct {
	ID    string
	Name  string
	Score int
}

var (
	ErrEmptyQuery = errors.New("empty search query")
	ErrEmptyItems = errors.New("no items to match against")
)

// AmbiguousError indicates multiple candidates matched equally well.
type AmbiguousError struct {
	Query   string
	Matches []Match
}

func (e *AmbiguousError) Error() string {
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "ambiguous match for %q", e.Query)
	if len(e.Matches) > 0 {
		b.WriteString(", candidates:")
		for _, m := range e.Matches {
			_, _ = fmt.Fprintf(&b, "\n  %s: %s", m.ID, m.Name)
		}
	}
	return b.String()
}

type entry struct {
	item int
	name string
}

// entries flattens every name of every item into one searchable list.
type entries []entry

func (s entries) String(i int) string { return strings.ToLower(s[i].name) }
func (s entries) Len() int            { return len(s) }

func flatten(items []Named) entries {
	var out entries
	for i, item := range items {
		for _, name := range item.Names {
			if name != "" {
				out = append(out, entry{item: i, name: name})
			}
		}
	}
	return out
}

// Resolve returns the ID of the item query names.
//
// An exact, case-insensitive match on the ID or any name wins. Otherwise a
// single fuzzy match is used, or among several the one item with a name
// starting with query. Anything else is an *AmbiguousError.
func Resolve(query string, items []Named) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	if len(items) == 0 {
		return "", ErrEmptyItems
	}

	for _, item := range items {
		if strings.EqualFold(item.ID, query) {
			return item.ID, nil
		}
		for _, name := range item.Names {
			if strings.EqualFold(name, query) {
				return item.ID, nil
			}
		}
	}

	all := flatten(items)
	results := dedupe(all, fuzzy.FindFrom(strings.ToLower(query), all))
	if len(results) == 0 {
		return "", fmt.Errorf("no match found for %q", query)
	}
	if len(results) == 1 {
		return items[all[results[0].Index].item].ID, nil
	}

	// Several items match. Fuzzy scores between them are not meaningful, so
	// only a single item whose name starts with query wins.
	lower := strings.ToLower(query)
	var prefixed fuzzy.Matches
	for _, r := range results {
		if hasPrefix(items[all[r.Index].item], lower) {
			prefixed = append(prefixed, r)
		}
	}
	if len(prefixed) == 1 {
		return items[all[prefixed[0].Index].item].ID, nil
	}
	return "", &AmbiguousError{Query: query, Matches: toMatches(items, all, results, 5)}
}

func hasPrefix(item Named, lower string) bool {
	for _, name := range item.Names {
		if strings.HasPrefix(strings.ToLower(name), lower) {
			return true
		}
	}
	return false
}

// Suggest returns up to limit items ranked by how well query matches them.
func Suggest(query string, items []Named, limit int) []Match {
	query = strings.TrimSpace(query)
	if query == "" || len(items) == 0 || limit <= 0 {
		return nil
	}
	all := flatten(items)
	results := dedupe(all, fuzzy.FindFrom(strings.ToLower(query), all))
	return toMatches(items, all, results, limit)
}

// dedupe keeps the best scoring name of every item.
func dedupe(all entries, results fuzzy.Matches) fuzzy.Matches {
	seen := make(map[int]bool, len(results))
	out := results[:0]
	for _, r := range results {
		if seen[all[r.Index].item] {
			continue
		}
		seen[all[r.Index].item] = true
		out = append(out, r)
	}
	return out
}

func toMatches(items []Named, all entries, results fuzzy.Matches, limit int) []Match {
	if len(results) == 0 {
		return nil
	}
	if len(results) > limit {
		results = results[:limit]
	}
	matches := make([]Match, len(results))
	for i, r := range results {
		e := all[r.Index]
		matches[i] = Match{ID: items[e.item].ID, Name: e.name, Score: r.Score}
	}
	return matches
}
