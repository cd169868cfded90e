package extract

import (
	"errors"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/scholar-crawler/internal/crawler"
)

// resultEntrySelector matches one listing entry on a search results page.
const resultEntrySelector = "div.gs_r.gs_or.gs_scl"

var errNoDocument = errors.New("page has no parsed document")

// ArticleExtractor reads article search results.
type ArticleExtractor struct{}

// NewArticleExtractor returns an ArticleExtractor.
func NewArticleExtractor() *ArticleExtractor {
	return &ArticleExtractor{}
}

// Extract implements crawler.Extractor.
func (x *ArticleExtractor) Extract(page crawler.ParsedPage) ([]crawler.Record, *url.URL, error) {
	if page.Doc == nil {
		return nil, nil, errNoDocument
	}
	var records []crawler.Record
	page.Doc.Find(resultEntrySelector).Each(func(_ int, entry *goquery.Selection) {
		records = append(records, x.article(page.URL, entry))
	})
	return records, footerNextPage(page), nil
}

func (x *ArticleExtractor) article(base *url.URL, entry *goquery.Selection) crawler.ArticleRecord {
	meta := parseMetadata(entry.Find("div.gs_a").First().Text())
	return crawler.ArticleRecord{
		Title:         entryTitle(entry),
		Authors:       meta.lead(),
		Year:          meta.year,
		SourceURL:     linkURL(base, entry.Find("h3.gs_rt a")),
		PaperURL:      linkURL(base, entry.Find("div.gs_or_ggsm a")),
		CitationCount: citationCount(entry),
	}
}
