package crawler

import (
	"strconv"
	"strings"
)

// DefaultLanguage is used when a filter lists no languages.
const DefaultLanguage = "en"

// Validate checks the filter before any request is issued.
func (f SearchFilter) Validate() error {
	if strings.TrimSpace(f.Keywords) == "" {
		return &ConfigurationError{Field: "keywords", Reason: "must not be empty"}
	}
	if f.StartYear != nil && f.EndYear != nil && *f.StartYear > *f.EndYear {
		return &ConfigurationError{
			Field:  "year range",
			Reason: "start year " + strconv.Itoa(*f.StartYear) + " is after end year " + strconv.Itoa(*f.EndYear),
		}
	}
	if !f.Category.Valid() {
		return &ConfigurationError{Field: "category", Reason: "unknown category " + strconv.Itoa(int(f.Category))}
	}
	return nil
}

// QueryBuilder renders a validated SearchFilter as a search query string.
type QueryBuilder struct {
	filter    SearchFilter
	languages []string
}

// NewQueryBuilder validates filter and returns a builder for it.
func NewQueryBuilder(filter SearchFilter) (QueryBuilder, error) {
	if err := filter.Validate(); err != nil {
		return QueryBuilder{}, err
	}
	langs := normalizeLanguages(filter.Languages)
	if len(langs) == 0 {
		langs = []string{DefaultLanguage}
	}
	return QueryBuilder{filter: filter, languages: langs}, nil
}

// Build returns the query string. extraParams is appended verbatim.
// Year bounds are always emitted; an empty value means unbounded.
func (b QueryBuilder) Build(extraParams string) string {
	var sb strings.Builder
	sb.WriteString("hl=en&q=")
	sb.WriteString(EncodeKeywords(b.filter.Keywords))
	sb.WriteString("&as_ylo=")
	sb.WriteString(optionalInt(b.filter.StartYear))
	sb.WriteString("&as_yhi=")
	sb.WriteString(optionalInt(b.filter.EndYear))
	sb.WriteString("&lr=")
	for i, lang := range b.languages {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString("lang_")
		sb.WriteString(lang)
	}
	if extraParams != "" {
		sb.WriteByte('&')
		sb.WriteString(extraParams)
	}
	return sb.String()
}

// Languages returns the normalized language codes used by the builder.
func (b QueryBuilder) Languages() []string {
	out := make([]string, len(b.languages))
	copy(out, b.languages)
	return out
}

// EncodeKeywords replaces spaces with '+', which is the form the service
// accepts in its q parameter. It does not percent-encode anything else.
func EncodeKeywords(keywords string) string {
	return strings.ReplaceAll(strings.TrimSpace(keywords), " ", "+")
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func normalizeLanguages(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{})
	for _, lang := range in {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang == "" {
			continue
		}
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		out = append(out, lang)
	}
	return out
}
