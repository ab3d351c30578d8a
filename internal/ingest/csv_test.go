package ingest

import (
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"Title,URL,Category,Keyword",
		"Kuzu Docs,https://kuzudb.com/docs,Database,\"graph, embedded\"",
		",https://example.com,,",
		"Short Row,https://example.org",
	}, "\n")

	rows, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	first := rows[0]
	if first.Line != 2 {
		t.Errorf("line = %d, want 2", first.Line)
	}
	if first.URL != "https://kuzudb.com/docs" {
		t.Errorf("url = %q", first.URL)
	}
	if first.Title != "Kuzu Docs" || first.Category != "Database" {
		t.Errorf("row = %+v", first)
	}
	if first.Keyword != "graph, embedded" {
		t.Errorf("keyword = %q", first.Keyword)
	}

	if rows[1].Title != "" || rows[1].URL != "https://example.com" {
		t.Errorf("second row = %+v", rows[1])
	}

	// Short records leave absent columns empty instead of failing
	if rows[2].URL != "https://example.org" || rows[2].Category != "" {
		t.Errorf("third row = %+v", rows[2])
	}
}

func TestReadCSV_HeaderCaseAndOrder(t *testing.T) {
	input := "category, url \nNews,https://example.com\n"

	rows, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].URL != "https://example.com" || rows[0].Category != "News" {
		t.Errorf("row = %+v", rows[0])
	}
}

func TestReadCSV_MissingURLColumn(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("title,category\nA,News\n")); err == nil {
		t.Error("expected error for header without url column")
	}
}

func TestReadCSV_EmptyInput(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestRowHasMetadata(t *testing.T) {
	full := Row{Title: "T", Content: "C", Category: "News"}
	if !full.HasMetadata() {
		t.Error("row with title, content and category should have metadata")
	}

	for name, row := range map[string]Row{
		"no title":    {Content: "C", Category: "News"},
		"no content":  {Title: "T", Category: "News"},
		"no category": {Title: "T", Content: "C"},
	} {
		if row.HasMetadata() {
			t.Errorf("%s: HasMetadata should be false", name)
		}
	}
}
