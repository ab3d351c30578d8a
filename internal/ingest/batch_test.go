package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ppiankov/linkarium/internal/graph"
	"github.com/ppiankov/linkarium/internal/model"
	"github.com/ppiankov/linkarium/internal/pipeline"
)

// newTestIngestor builds an ingestor with classification disabled and
// throttling effectively off, backed by a temp-dir store.
func newTestIngestor(t *testing.T, limit int) (*Ingestor, *graph.Store) {
	t.Helper()

	cfg := model.DefaultConfig()
	cfg.LLM.Provider = ""
	cfg.Cache.Enabled = false
	cfg.RateLimit.RequestsPerSecond = 0
	cfg.Batch.Limit = limit

	store, err := graph.Open(filepath.Join(t.TempDir(), "ingest.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return New(pipeline.New(cfg, store), cfg), store
}

func TestRun_MixedBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Fetched Page</title></head><body><p>Some article text about databases and graphs.</p></body></html>`))
	}))
	defer server.Close()

	ing, store := newTestIngestor(t, 100)

	rows := []Row{
		{Line: 2, URL: server.URL + "/article"},
		{Line: 3, URL: ""},
		{Line: 4, URL: server.URL + "/article"}, // duplicate of row one
		{Line: 5, URL: "http://"},
		{Line: 6, URL: "https://example.org/doc", Title: "Example Doc", Content: "body text", Category: "Database", Keyword: "graph, embedded"},
	}

	summary := ing.Run(context.Background(), rows)

	if summary.Processed != 2 {
		t.Errorf("Processed = %d, want 2", summary.Processed)
	}
	if summary.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", summary.Skipped)
	}
	if summary.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", summary.Remaining)
	}
	if len(summary.Issues) != 3 {
		t.Fatalf("got %d issues, want 3: %+v", len(summary.Issues), summary.Issues)
	}

	reasons := map[int]string{}
	for _, issue := range summary.Issues {
		reasons[issue.Line] = issue.Reason
	}
	if reasons[3] != "empty URL" {
		t.Errorf("line 3 reason = %q", reasons[3])
	}
	if reasons[4] != "duplicate link" {
		t.Errorf("line 4 reason = %q", reasons[4])
	}
	if reasons[5] == "" {
		t.Error("line 5 should have an invalid URL reason")
	}

	links, err := store.ScanNodes(graph.LabelLink)
	if err != nil {
		t.Fatalf("ScanNodes: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("got %d stored links, want 2: %+v", len(links), links)
	}
}

func TestRun_MetadataRowSkipsFetching(t *testing.T) {
	ing, store := newTestIngestor(t, 100)

	row := Row{
		Line:                2,
		URL:                 "https://kuzudb.com/docs/",
		Title:               "Kuzu Docs",
		Content:             "Embedded graph database documentation.",
		Category:            "Database",
		Keyword:             "graph, embedded",
		CategoryExplanation: "hand curated",
	}

	summary := ing.Run(context.Background(), []Row{row})
	if summary.Processed != 1 || summary.Skipped != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	links, err := store.ScanNodes(graph.LabelLink)
	if err != nil {
		t.Fatalf("ScanNodes: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1", len(links))
	}

	// The URL is canonicalized before storage
	if links[0].Key != "https://kuzudb.com/docs" {
		t.Errorf("stored key = %q", links[0].Key)
	}
	if links[0].Attrs[graph.AttrTitle] != "Kuzu Docs" {
		t.Errorf("title = %q", links[0].Attrs[graph.AttrTitle])
	}
	if links[0].Attrs[graph.AttrKeywords] != "graph, embedded" {
		t.Errorf("keywords = %q", links[0].Attrs[graph.AttrKeywords])
	}
	if links[0].Attrs[graph.AttrCategoryExplanation] != "hand curated" {
		t.Errorf("explanation = %q", links[0].Attrs[graph.AttrCategoryExplanation])
	}

	edges, err := store.ScanEdges(graph.RelBelongsTo)
	if err != nil {
		t.Fatalf("ScanEdges: %v", err)
	}
	if len(edges) != 1 || edges[0].ToKey != "Database" {
		t.Errorf("category edges = %+v", edges)
	}
}

func TestRun_MetadataCategoryNormalized(t *testing.T) {
	ing, store := newTestIngestor(t, 100)

	// A category outside the catalog resolves to the default
	row := Row{
		Line:     2,
		URL:      "https://example.com/odd",
		Title:    "Odd Page",
		Content:  "text",
		Category: "Cryptozoology",
	}

	summary := ing.Run(context.Background(), []Row{row})
	if summary.Processed != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	edges, err := store.ScanEdges(graph.RelBelongsTo)
	if err != nil {
		t.Fatalf("ScanEdges: %v", err)
	}
	if len(edges) != 1 || edges[0].ToKey != model.DefaultCategory {
		t.Errorf("category edges = %+v", edges)
	}
}

func TestRun_LimitLeavesRemaining(t *testing.T) {
	ing, _ := newTestIngestor(t, 1)

	rows := []Row{
		{Line: 2, URL: "https://example.com/a", Title: "A", Content: "x", Category: "News"},
		{Line: 3, URL: "https://example.com/b", Title: "B", Content: "x", Category: "News"},
		{Line: 4, URL: "https://example.com/c", Title: "C", Content: "x", Category: "News"},
	}

	summary := ing.Run(context.Background(), rows)
	if summary.Processed != 1 {
		t.Errorf("Processed = %d, want 1", summary.Processed)
	}
	if summary.Remaining != 2 {
		t.Errorf("Remaining = %d, want 2", summary.Remaining)
	}
}

func TestHostLimiter_UnparseableHostPassesThrough(t *testing.T) {
	limiter := NewHostLimiter(0.0001, 1)
	if err := limiter.Wait(context.Background(), "not a url"); err != nil {
		t.Errorf("Wait: %v", err)
	}
}
