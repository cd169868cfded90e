package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/JakeFAU/scholar-crawler/internal/crawler"
)

// Format names an output encoding.
type Format string

// Supported formats. Anything unrecognized renders as FormatText.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
	FormatText Format = "text"
)

// ParseFormat maps a name to a Format, falling back to FormatText.
func ParseFormat(raw string) Format {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatCSV, FormatJSON, FormatHTML:
		return f
	case "htm":
		return FormatHTML
	default:
		return FormatText
	}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) Format {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// WriteFile writes records to path, creating parent directories as needed.
func WriteFile(path string, format Format, records []crawler.Record) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output file: %w", cerr)
		}
	}()
	return Write(f, format, records)
}

// Write encodes records to w. Columns follow the category of the first
// record; an empty slice writes nothing for the tabular formats.
func Write(w io.Writer, format Format, records []crawler.Record) error {
	if format == FormatJSON {
		return writeJSON(w, records)
	}
	if len(records) == 0 {
		return nil
	}
	header := columns(records[0].Category())
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, cells(rec))
	}

	switch format {
	case FormatCSV:
		return writeCSV(w, header, rows)
	case FormatHTML:
		t := newTable(header, rows)
		_, err := io.WriteString(w, t.RenderHTML()+"\n")
		return wrapWrite(err)
	default:
		t := newTable(header, rows)
		t.SetStyle(table.StyleRounded)
		_, err := io.WriteString(w, t.Render()+"\n")
		return wrapWrite(err)
	}
}

func writeJSON(w io.Writer, records []crawler.Record) error {
	if records == nil {
		records = []crawler.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

func newTable(header []string, rows [][]string) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(toRow(header))
	for _, r := range rows {
		t.AppendRow(toRow(r))
	}
	return t
}

func toRow(values []string) table.Row {
	row := make(table.Row, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}

func wrapWrite(err error) error {
	if err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

func columns(category crawler.Category) []string {
	switch category {
	case crawler.CaseLaw:
		return []string{"Title", "Case Name", "Year", "Source URL", "Citations"}
	case crawler.Profiles:
		return []string{"Title", "Authors", "Year", "Source URL", "Citations"}
	default:
		return []string{"Title", "Authors", "Year", "Source URL", "Paper URL", "Citations"}
	}
}

func cells(rec crawler.Record) []string {
	switch r := rec.(type) {
	case crawler.ArticleRecord:
		return []string{r.Title, r.Authors, year(r.Year), str(r.SourceURL), str(r.PaperURL), strconv.Itoa(r.CitationCount)}
	case crawler.CaseLawRecord:
		return []string{r.Title, r.CaseName, year(r.Year), str(r.SourceURL), strconv.Itoa(r.CitationCount)}
	case crawler.ProfileRecord:
		return []string{r.Title, r.Authors, year(r.Year), str(r.SourceURL), strconv.Itoa(r.CitationCount)}
	default:
		return make([]string, len(columns(rec.Category())))
	}
}

func year(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func str(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
