// Package ingest drives batch ingestion of link rows from CSV files.
// Rows are processed strictly in order, one at a time: the model
// backend is assumed to have little concurrent capacity, and all rows
// share the single store handle.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Row is one CSV record. URL is required; the remaining fields enable
// the pre-computed metadata path that skips extraction and
// classification entirely.
type Row struct {
	Line                int
	URL                 string
	Title               string
	Content             string
	Category            string
	Keyword             string
	CategoryExplanation string
	KeywordExplanation  string
}

// HasMetadata reports whether the row carries everything needed to
// skip the extraction and classification calls.
func (r Row) HasMetadata() bool {
	return r.Title != "" && r.Content != "" && r.Category != ""
}

// ReadCSV parses header-mapped rows. The header must contain a "url"
// column; unknown columns are ignored. Column order is free.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty CSV input")
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["url"]; !ok {
		return nil, fmt.Errorf(`CSV header is missing the required "url" column`)
	}

	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read CSV line %d: %w", line, err)
		}

		rows = append(rows, Row{
			Line:                line,
			URL:                 field(record, "url"),
			Title:               field(record, "title"),
			Content:             field(record, "content"),
			Category:            field(record, "category"),
			Keyword:             field(record, "keyword"),
			CategoryExplanation: field(record, "category_explanation"),
			KeywordExplanation:  field(record, "keyword_explanation"),
		})
	}

	return rows, nil
}
