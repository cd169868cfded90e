// Package crawler defines core types shared across subsystems.
package crawler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Category selects which kind of listing a crawl targets.
type Category int

// Supported listing categories.
const (
	Articles Category = iota
	CaseLaw
	Profiles
)

// String returns the lower-case name used in config files and flags.
func (c Category) String() string {
	switch c {
	case Articles:
		return "articles"
	case CaseLaw:
		return "case-law"
	case Profiles:
		return "profiles"
	default:
		return "unknown"
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c >= Articles && c <= Profiles
}

// ParseCategory maps a name such as "case-law" or "caselaw" to a Category.
func ParseCategory(raw string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "articles", "article":
		return Articles, nil
	case "case-law", "caselaw", "case_law":
		return CaseLaw, nil
	case "profiles", "profile":
		return Profiles, nil
	default:
		return Articles, &ConfigurationError{Field: "category", Reason: "unknown category " + raw}
	}
}

// SearchFilter captures the user supplied search parameters.
type SearchFilter struct {
	Keywords  string
	StartYear *int
	EndYear   *int
	Languages []string
	Category  Category
}

// Record is one extracted listing entry.
type Record interface {
	Category() Category
	Citations() int
	PublishedYear() (int, bool)
}

// ArticleRecord is a result from the article search.
type ArticleRecord struct {
	Title         string  `json:"title"`
	Authors       string  `json:"authors"`
	Year          *int    `json:"year"`
	SourceURL     *string `json:"source_url"`
	PaperURL      *string `json:"paper_url"`
	CitationCount int     `json:"citation_count"`
}

// CaseLawRecord is a result from the case-law search.
type CaseLawRecord struct {
	Title         string  `json:"title"`
	CaseName      string  `json:"case_name"`
	Year          *int    `json:"year"`
	SourceURL     *string `json:"source_url"`
	CitationCount int     `json:"citation_count"`
}

// ProfileRecord is one publication row of an author profile.
type ProfileRecord struct {
	Title         string  `json:"title"`
	Authors       string  `json:"authors"`
	SourceURL     *string `json:"source_url"`
	Year          *int    `json:"year"`
	CitationCount int     `json:"citation_count"`
}

// Category implements Record.
func (ArticleRecord) Category() Category { return Articles }

// Citations implements Record.
func (r ArticleRecord) Citations() int { return r.CitationCount }

// PublishedYear implements Record.
func (r ArticleRecord) PublishedYear() (int, bool) { return derefYear(r.Year) }

// Category implements Record.
func (CaseLawRecord) Category() Category { return CaseLaw }

// Citations implements Record.
func (r CaseLawRecord) Citations() int { return r.CitationCount }

// PublishedYear implements Record.
func (r CaseLawRecord) PublishedYear() (int, bool) { return derefYear(r.Year) }

// Category implements Record.
func (ProfileRecord) Category() Category { return Profiles }

// Citations implements Record.
func (r ProfileRecord) Citations() int { return r.CitationCount }

// PublishedYear implements Record.
func (r ProfileRecord) PublishedYear() (int, bool) { return derefYear(r.Year) }

func derefYear(y *int) (int, bool) {
	if y == nil {
		return 0, false
	}
	return *y, true
}

// Page is the raw result of fetching one URL.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// ContentLength returns the size of the body in bytes.
func (p Page) ContentLength() int {
	return len(p.Body)
}

// ParsedPage is a fetched page ready for field extraction.
type ParsedPage struct {
	URL *url.URL
	Doc *goquery.Document
}
