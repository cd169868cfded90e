package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/scholar-crawler/internal/crawler"
)

// CaseLawExtractor reads case-law search results.
type CaseLawExtractor struct{}

// NewCaseLawExtractor returns a CaseLawExtractor.
func NewCaseLawExtractor() *CaseLawExtractor {
	return &CaseLawExtractor{}
}

// Extract implements crawler.Extractor.
func (x *CaseLawExtractor) Extract(page crawler.ParsedPage) ([]crawler.Record, *url.URL, error) {
	if page.Doc == nil {
		return nil, nil, errNoDocument
	}
	var records []crawler.Record
	page.Doc.Find(resultEntrySelector).Each(func(_ int, entry *goquery.Selection) {
		records = append(records, x.opinion(page.URL, entry))
	})
	return records, footerNextPage(page), nil
}

func (x *CaseLawExtractor) opinion(base *url.URL, entry *goquery.Selection) crawler.CaseLawRecord {
	meta := parseMetadata(entry.Find("div.gs_a").First().Text())
	return crawler.CaseLawRecord{
		Title:         entryTitle(entry),
		CaseName:      caseName(meta),
		Year:          meta.year,
		SourceURL:     linkURL(base, entry.Find("h3.gs_rt a")),
		CitationCount: citationCount(entry),
	}
}

// caseName joins the reporter citation and court segments. When a year was
// found the trailing ", <year>" is dropped from the result.
func caseName(meta metadata) string {
	n := len(meta.segments)
	if n > 2 {
		n = 2
	}
	name := strings.Join(meta.segments[:n], metadataSeparator)
	if meta.year != nil {
		name = strings.TrimSpace(reporterSuffix.ReplaceAllString(name, ""))
	}
	return name
}
