package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/scholar-crawler/internal/crawler"
)

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }

func titles(records []crawler.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.(crawler.ArticleRecord).Title)
	}
	return out
}

func sampleArticles() []crawler.Record {
	return []crawler.Record{
		crawler.ArticleRecord{Title: "a", Year: intPtr(2001), CitationCount: 5},
		crawler.ArticleRecord{Title: "b", CitationCount: 50},
		crawler.ArticleRecord{Title: "c", Year: intPtr(2019), CitationCount: 5},
		crawler.ArticleRecord{Title: "d", Year: intPtr(2019), CitationCount: 0},
	}
}

func TestSortByCitations(t *testing.T) {
	t.Parallel()

	in := sampleArticles()
	got := Sort(in, SortCitations)
	if diff := cmp.Diff([]string{"b", "a", "c", "d"}, titles(got)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"a", "b", "c", "d"}, titles(in), "input must not be reordered")
}

func TestSortByYearPutsUndatedLast(t *testing.T) {
	t.Parallel()

	got := Sort(sampleArticles(), SortYear)
	if diff := cmp.Diff([]string{"c", "d", "a", "b"}, titles(got)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSortKey(t *testing.T) {
	t.Parallel()

	key, err := ParseSortKey("")
	require.NoError(t, err)
	require.Equal(t, SortCitations, key)

	key, err = ParseSortKey("Year")
	require.NoError(t, err)
	require.Equal(t, SortYear, key)

	_, err = ParseSortKey("title")
	var cfgErr *crawler.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	tests := map[string]Format{
		"out/results.csv": FormatCSV,
		"results.JSON":    FormatJSON,
		"report.html":     FormatHTML,
		"report.htm":      FormatHTML,
		"results.txt":     FormatText,
		"results":         FormatText,
	}
	for path, want := range tests {
		require.Equal(t, want, FormatFromPath(path), path)
	}
}

func TestWriteCSVQuotesCommas(t *testing.T) {
	t.Parallel()

	records := []crawler.Record{
		crawler.ArticleRecord{
			Title:         `Say "hello"`,
			Authors:       "J Smith, A Doe",
			Year:          intPtr(2019),
			SourceURL:     strPtr("https://example.org/1"),
			CitationCount: 42,
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	want := [][]string{
		{"Title", "Authors", "Year", "Source URL", "Paper URL", "Citations"},
		{`Say "hello"`, "J Smith, A Doe", "2019", "https://example.org/1", "", "42"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteJSONKeepsAbsentValuesNull(t *testing.T) {
	t.Parallel()

	records := []crawler.Record{
		crawler.CaseLawRecord{Title: "Roe v. Wade", CaseName: "410 US 113 - Supreme Court", CitationCount: 3},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, records))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	require.Nil(t, decoded[0]["year"])
	require.Nil(t, decoded[0]["source_url"])
	require.Equal(t, "410 US 113 - Supreme Court", decoded[0]["case_name"])

	buf.Reset()
	require.NoError(t, Write(&buf, FormatJSON, nil))
	require.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestWriteHTMLEscapesContent(t *testing.T) {
	t.Parallel()

	records := []crawler.Record{
		crawler.ProfileRecord{Title: "<script>x</script>", Authors: "A", CitationCount: 1},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatHTML, records))
	out := buf.String()
	require.Contains(t, out, "<table")
	require.NotContains(t, out, "<script>")
	require.Contains(t, out, "&lt;script&gt;")
}

func TestWriteTextTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Format("xlsx"), sampleArticles()))
	out := buf.String()
	require.Contains(t, strings.ToUpper(out), "CITATIONS")
	require.Contains(t, out, "2019")
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "results.csv")
	require.NoError(t, WriteFile(path, FormatFromPath(path), sampleArticles()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "Title,Authors,Year"))
	require.Equal(t, 5, strings.Count(string(data), "\n"))
}
