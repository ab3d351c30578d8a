// Package pipeline drives the ingestion of a single link: canonical
// URL, content extraction, classification, response parsing and the
// graph upsert, in that order. Network and model failures never abort
// the chain; they degrade into documented fallback values so the store
// only ever sees well-formed records.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/linkarium/internal/cache"
	"github.com/ppiankov/linkarium/internal/extract"
	"github.com/ppiankov/linkarium/internal/graph"
	"github.com/ppiankov/linkarium/internal/llm"
	"github.com/ppiankov/linkarium/internal/model"
	"github.com/ppiankov/linkarium/internal/parse"
)

// Pipeline owns the per-link ingestion chain. The store handle is
// shared with the rest of the process; the pipeline never opens or
// closes it.
type Pipeline struct {
	extractor  *extract.Extractor
	classifier *llm.Classifier
	store      *graph.Store
	catalog    []string
}

// New builds a pipeline from configuration. A missing or misconfigured
// LLM provider downgrades classification to its fallback path instead
// of failing construction.
func New(cfg *model.Config, store *graph.Store) *Pipeline {
	var pages cache.Cache
	if cfg.Cache.Enabled {
		pages = cache.NewLayered(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
	}

	return &Pipeline{
		extractor:  extract.New(cfg.HTTP, pages),
		classifier: llm.NewClassifier(provider, cfg.LLM.Timeout, cfg.Catalog),
		store:      store,
		catalog:    cfg.Catalog,
	}
}

// Store exposes the shared graph handle for callers that need direct
// reads (list, export, delete).
func (p *Pipeline) Store() *graph.Store {
	return p.store
}

// Catalog returns the ordered category catalog the pipeline resolves against.
func (p *Pipeline) Catalog() []string {
	return p.catalog
}

// Outcome describes what one ingestion produced.
type Outcome struct {
	Link     model.Link
	Category string

	// FetchFallback and ClassifyFallback record which collaborators
	// failed and were replaced by sentinel values.
	FetchFallback    bool
	ClassifyFallback bool
}

// IngestURL runs the full chain for a raw URL and persists the result.
// It returns ErrInvalidURL for unparseable input and ErrDuplicateLink
// when the canonical URL is already stored; store failures propagate.
func (p *Pipeline) IngestURL(ctx context.Context, rawURL string) (*Outcome, error) {
	canonical, err := Canonicalize(rawURL)
	if err != nil {
		return nil, err
	}

	extraction := p.extractor.Extract(ctx, canonical)

	cleaned := p.classifier.Condense(ctx, extraction.Content)
	classification := p.classifier.Classify(ctx, extraction.Title, extraction.Content, cleaned)

	// A substituted failure response must not reach the parser's
	// matching heuristics; it takes the empty-input path instead.
	responseText := classification.Raw
	if classification.Fallback {
		responseText = ""
	}
	parsed := parse.Parse(responseText, p.catalog)

	link := model.Link{
		URL:               canonical,
		Title:             extraction.Title,
		RawCategory:       classification.Raw,
		SuggestedCategory: parsed.SuggestedCategory,
		RawContent:        extraction.Content,
		CleanedContent:    cleaned,
		Keywords:          parsed.Keywords,
	}
	if classification.Fallback {
		link.CategoryExplanation = "Classification unavailable; assigned " + model.DefaultCategory
		link.KeywordExplanation = "Classification unavailable; no keywords extracted"
	}

	if err := p.store.UpsertLink(link, parsed.Category); err != nil {
		return nil, err
	}

	return &Outcome{
		Link:             link,
		Category:         parsed.Category,
		FetchFallback:    extraction.Fallback,
		ClassifyFallback: classification.Fallback,
	}, nil
}
