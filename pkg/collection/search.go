package collection

import (
	"strings"

	"golang.org/x/text/cases"
)

// Search returns the items whose name contains query, ignoring case.
// An empty query matches everything.
func Search[T Item](items []T, query string) []T {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}

	fold := cases.Fold()
	needle := fold.String(query)

	var out []T
	for _, item := range items {
		if strings.Contains(fold.String(item.ItemName()), needle) {
			out = append(out, item)
		}
	}
	return out
}
