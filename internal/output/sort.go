// Package output orders crawl results and writes them as CSV, JSON, HTML
// or a plain text table.
package output

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/JakeFAU/scholar-crawler/internal/crawler"
)

// SortKey selects the ordering applied before writing.
type SortKey string

// Supported sort keys.
const (
	SortCitations SortKey = "citations"
	SortYear      SortKey = "year"
)

// ParseSortKey validates a sort key name. Empty selects SortCitations.
func ParseSortKey(raw string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SortCitations:
		return SortCitations, nil
	case SortYear:
		return SortYear, nil
	default:
		return SortCitations, &crawler.ConfigurationError{Field: "sort", Reason: fmt.Sprintf("unknown sort key %q", raw)}
	}
}

// Sort returns a copy of records ordered by key, highest first. Records
// without a year sort after all dated records. Ties keep crawl order.
func Sort(records []crawler.Record, key SortKey) []crawler.Record {
	out := slices.Clone(records)
	switch key {
	case SortYear:
		slices.SortStableFunc(out, compareYear)
	default:
		slices.SortStableFunc(out, func(a, b crawler.Record) int {
			return cmp.Compare(b.Citations(), a.Citations())
		})
	}
	return out
}

func compareYear(a, b crawler.Record) int {
	ay, aok := a.PublishedYear()
	by, bok := b.PublishedYear()
	switch {
	case aok && bok:
		return cmp.Compare(by, ay)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return 0
	}
}
