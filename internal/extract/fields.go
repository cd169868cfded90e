package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/scholar-crawler/internal/crawler"
)

const (
	citedByLabel       = "Cited by "
	metadataSeparator  = " - "
	yearSearchSegments = 2

	// titleTagMarkers match the "[PDF]" / "[CITATION]" badges inside a heading.
	titleTagMarkers = "span.gs_ctc, span.gs_ctu, span.gs_ctg2"
)

var (
	yearToken      = regexp.MustCompile(`\b\d{4}\b`)
	digits         = regexp.MustCompile(`\d+`)
	whitespace     = regexp.MustCompile(`\s+`)
	reporterSuffix = regexp.MustCompile(`,\s*\d+$`)
)

// cleanText replaces non-breaking spaces, collapses runs of whitespace and
// trims the result.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// metadata is the parsed form of a result's "authors - venue, year - host" line.
type metadata struct {
	segments []string
	year     *int
}

func parseMetadata(raw string) metadata {
	text := cleanText(raw)
	if text == "" {
		return metadata{}
	}
	parts := strings.Split(text, metadataSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return metadata{segments: parts, year: findYear(parts)}
}

// lead returns segment 0, the authors or court.
func (m metadata) lead() string {
	if len(m.segments) == 0 {
		return ""
	}
	return m.segments[0]
}

// findYear scans the final segments from the end backward and returns the
// last four-digit token of the first segment holding one. Segment 0 is never
// searched because it holds names.
func findYear(segments []string) *int {
	lowest := len(segments) - yearSearchSegments
	if lowest < 1 {
		lowest = 1
	}
	for i := len(segments) - 1; i >= lowest; i-- {
		tokens := yearToken.FindAllString(segments[i], -1)
		if len(tokens) == 0 {
			continue
		}
		year, err := strconv.Atoi(tokens[len(tokens)-1])
		if err != nil {
			continue
		}
		return &year
	}
	return nil
}

// entryTitle prefers the anchor text of the result heading and falls back to
// the heading's own text for entries without an external link.
func entryTitle(entry *goquery.Selection) string {
	heading := entry.Find("h3.gs_rt").First()
	if heading.Length() == 0 {
		return ""
	}
	if anchor := heading.Find("a").First(); anchor.Length() > 0 {
		if title := cleanText(anchor.Text()); title != "" {
			return title
		}
	}
	bare := heading.Clone()
	bare.Find(titleTagMarkers).Remove()
	if title := cleanText(bare.Text()); title != "" {
		return title
	}
	return cleanText(heading.Find("span").Last().Text())
}

// href returns the trimmed href of the first node in sel. Missing and blank
// attributes both report ok=false.
func href(sel *goquery.Selection) (string, bool) {
	value, exists := sel.First().Attr("href")
	if !exists {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// linkURL resolves the href of sel against the origin of base.
func linkURL(base *url.URL, sel *goquery.Selection) *string {
	raw, ok := href(sel)
	if !ok {
		return nil
	}
	resolved, err := crawler.ResolveAgainstOrigin(base, raw)
	if err != nil {
		return nil
	}
	s := resolved.String()
	return &s
}

// citationCount finds the action link labelled "Cited by N". Entries
// without such a link have zero citations.
func citationCount(entry *goquery.Selection) int {
	links := entry.Find("div.gs_ri div.gs_fl a")
	if links.Length() == 0 {
		links = entry.Find("div.gs_fl a")
	}
	count := 0
	links.EachWithBreak(func(_ int, link *goquery.Selection) bool {
		rest, ok := strings.CutPrefix(cleanText(link.Text()), citedByLabel)
		if !ok {
			return true
		}
		if n, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil {
			count = n
		}
		return false
	})
	return count
}

// leadingInt parses the first run of digits in s.
func leadingInt(s string) (int, bool) {
	match := digits.FindString(s)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

// footerNextPage finds the "Next" link of a search results page.
func footerNextPage(page crawler.ParsedPage) *url.URL {
	link := page.Doc.Find(`#gs_n td[align="left"] a[href]`).First()
	if link.Length() == 0 {
		link = page.Doc.Find(".gs_ico_nav_next").Closest("a[href]")
	}
	raw, ok := href(link)
	if !ok {
		return nil
	}
	next, err := crawler.ResolveAgainstOrigin(page.URL, raw)
	if err != nil {
		return nil
	}
	return next
}
