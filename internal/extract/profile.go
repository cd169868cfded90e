package extract

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/scholar-crawler/internal/crawler"
)

// ProfilePageSize is the number of rows requested per profile page and the
// step applied to the cstart offset.
const ProfilePageSize = 100

// ProfileExtractor reads the publication table of an author profile.
type ProfileExtractor struct{}

// NewProfileExtractor returns a ProfileExtractor.
func NewProfileExtractor() *ProfileExtractor {
	return &ProfileExtractor{}
}

// Extract implements crawler.Extractor. The "Show more" button has no
// href, so the next page is derived by moving the cstart offset forward
// while the button is enabled.
func (x *ProfileExtractor) Extract(page crawler.ParsedPage) ([]crawler.Record, *url.URL, error) {
	if page.Doc == nil {
		return nil, nil, errNoDocument
	}
	var records []crawler.Record
	page.Doc.Find("tr.gsc_a_tr").Each(func(_ int, row *goquery.Selection) {
		if rec, ok := x.publication(page.URL, row); ok {
			records = append(records, rec)
		}
	})
	return records, x.nextPage(page), nil
}

func (x *ProfileExtractor) publication(base *url.URL, row *goquery.Selection) (crawler.ProfileRecord, bool) {
	link := row.Find("a.gsc_a_at").First()
	if link.Length() == 0 {
		link = row.Find("td.gsc_a_t a").First()
	}
	title := cleanText(link.Text())
	if title == "" {
		// Empty profiles render a single placeholder row.
		return crawler.ProfileRecord{}, false
	}

	rec := crawler.ProfileRecord{
		Title:     title,
		Authors:   cleanText(row.Find("div.gs_gray").First().Text()),
		SourceURL: linkURL(base, link),
	}

	yearText := cleanText(row.Find("span.gsc_a_h").First().Text())
	if yearText == "" {
		yearText = cleanText(row.Find("td.gsc_a_y").First().Text())
	}
	if tokens := yearToken.FindAllString(yearText, -1); len(tokens) > 0 {
		if year, ok := leadingInt(tokens[len(tokens)-1]); ok {
			rec.Year = &year
		}
	}
	if n, ok := leadingInt(cleanText(row.Find("a.gsc_a_ac").First().Text())); ok {
		rec.CitationCount = n
	}
	return rec, true
}

func (x *ProfileExtractor) nextPage(page crawler.ParsedPage) *url.URL {
	more := page.Doc.Find("button#gsc_bpf_more").First()
	if more.Length() == 0 {
		return nil
	}
	if _, disabled := more.Attr("disabled"); disabled {
		return nil
	}
	if page.URL == nil {
		return nil
	}
	return crawler.WithOffset(page.URL, "cstart", ProfilePageSize)
}
