package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/linkarium/internal/graph"
	"github.com/ppiankov/linkarium/internal/llm"
	"github.com/ppiankov/linkarium/internal/model"
)

func testStore(t *testing.T) *graph.Store {
	t.Helper()

	store, err := graph.Open(filepath.Join(t.TempDir(), "pipeline.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.LLM.Provider = ""
	cfg.Cache.Enabled = false
	return cfg
}

// newOllamaMock serves /api/generate, answering the condensation and
// classification prompts differently.
func newOllamaMock(t *testing.T, condensed, classified string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		response := classified
		if strings.Contains(req.Prompt, "Extract up to") {
			response = condensed
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":    "llama3.2",
			"response": response,
			"done":     true,
		})
	}))
}

const pipelinePage = `<html>
<head><title>Kuzu Internals</title></head>
<body>
<p>Kuzu is an embedded graph database built for query speed. It stores
nodes and relationships in columnar form and executes Cypher queries
against them without a server process.</p>
</body>
</html>`

func TestIngestURL(t *testing.T) {
	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(pipelinePage))
	}))
	defer pages.Close()

	ollama := newOllamaMock(t,
		"An embedded graph database focused on query speed.",
		"Category: Database Keywords: graph, embedded.",
	)
	defer ollama.Close()

	cfg := testConfig()
	cfg.LLM.Provider = "ollama"
	cfg.LLM.Model = "llama3.2"
	cfg.LLM.BaseURL = ollama.URL

	store := testStore(t)
	pipe := New(cfg, store)

	outcome, err := pipe.IngestURL(context.Background(), pages.URL+"/kuzu")
	if err != nil {
		t.Fatalf("IngestURL: %v", err)
	}

	if outcome.FetchFallback || outcome.ClassifyFallback {
		t.Errorf("unexpected fallback flags: %+v", outcome)
	}
	if outcome.Category != "Database" {
		t.Errorf("category = %q", outcome.Category)
	}
	if outcome.Link.Title != "Kuzu Internals" {
		t.Errorf("title = %q", outcome.Link.Title)
	}
	if outcome.Link.CleanedContent != "An embedded graph database focused on query speed." {
		t.Errorf("cleaned content = %q", outcome.Link.CleanedContent)
	}
	if got := strings.Join(outcome.Link.Keywords, ","); got != "graph,embedded" {
		t.Errorf("keywords = %q", got)
	}

	links, err := store.ScanNodes(graph.LabelLink)
	if err != nil {
		t.Fatalf("ScanNodes: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1", len(links))
	}
	if links[0].Attrs[graph.AttrRawCategory] != "Category: Database Keywords: graph, embedded." {
		t.Errorf("raw category = %q", links[0].Attrs[graph.AttrRawCategory])
	}

	edges, err := store.ScanEdges(graph.RelBelongsTo)
	if err != nil {
		t.Fatalf("ScanEdges: %v", err)
	}
	if len(edges) != 1 || edges[0].ToKey != "Database" {
		t.Errorf("category edges = %+v", edges)
	}

	keywords, err := store.ScanNodes(graph.LabelKeyword)
	if err != nil {
		t.Fatalf("ScanNodes: %v", err)
	}
	if len(keywords) != 2 {
		t.Errorf("keyword nodes = %+v", keywords)
	}
}

func TestIngestURL_InvalidURL(t *testing.T) {
	pipe := New(testConfig(), testStore(t))

	if _, err := pipe.IngestURL(context.Background(), "http://"); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("err = %v, want ErrInvalidURL", err)
	}
}

func TestIngestURL_Duplicate(t *testing.T) {
	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(pipelinePage))
	}))
	defer pages.Close()

	pipe := New(testConfig(), testStore(t))

	if _, err := pipe.IngestURL(context.Background(), pages.URL); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	_, err := pipe.IngestURL(context.Background(), pages.URL)
	if !errors.Is(err, graph.ErrDuplicateLink) {
		t.Errorf("err = %v, want ErrDuplicateLink", err)
	}
}

func TestIngestURL_EverythingDownStillIngests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	// No page, no model: the link is still stored with sentinel values
	store := testStore(t)
	pipe := New(testConfig(), store)

	outcome, err := pipe.IngestURL(context.Background(), url)
	if err != nil {
		t.Fatalf("IngestURL: %v", err)
	}

	if !outcome.FetchFallback || !outcome.ClassifyFallback {
		t.Errorf("fallback flags = %+v", outcome)
	}
	if outcome.Category != model.DefaultCategory {
		t.Errorf("category = %q", outcome.Category)
	}
	if outcome.Link.Title != url {
		t.Errorf("title = %q, want the URL", outcome.Link.Title)
	}
	if outcome.Link.RawCategory != llm.FailureResponse {
		t.Errorf("raw category = %q, want failure sentinel", outcome.Link.RawCategory)
	}
	if got := strings.Join(outcome.Link.Keywords, ","); got != model.KeywordSentinel {
		t.Errorf("keywords = %q", got)
	}
	if outcome.Link.CategoryExplanation == "" || outcome.Link.KeywordExplanation == "" {
		t.Error("fallback ingestion should carry explanations")
	}

	links, err := store.ScanNodes(graph.LabelLink)
	if err != nil {
		t.Fatalf("ScanNodes: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1", len(links))
	}
	if links[0].Attrs[graph.AttrRawContent] != "Failed to fetch content" {
		t.Errorf("raw content = %q", links[0].Attrs[graph.AttrRawContent])
	}

	keywords, _ := store.ScanNodes(graph.LabelKeyword)
	if len(keywords) != 0 {
		t.Errorf("sentinel keywords must not create nodes: %+v", keywords)
	}
}
