package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/linkarium/internal/graph"
	"github.com/ppiankov/linkarium/internal/model"
	"github.com/ppiankov/linkarium/internal/parse"
	"github.com/ppiankov/linkarium/internal/pipeline"
)

// RowIssue records why a row was not ingested.
type RowIssue struct {
	Line   int
	URL    string
	Reason string
}

// Summary aggregates a batch run. A row is either processed, or
// skipped with a reason in Issues; rows beyond the batch limit stay
// untouched and are counted in Remaining for a subsequent call.
type Summary struct {
	Processed int
	Skipped   int
	Remaining int
	Issues    []RowIssue
}

// Ingestor applies the ingestion pipeline to a bounded sequence of
// rows, isolating each row's failures from the rest of the batch.
type Ingestor struct {
	pipe    *pipeline.Pipeline
	limiter *HostLimiter
	limit   int
}

// New creates a batch ingestor around an existing pipeline.
func New(pipe *pipeline.Pipeline, cfg *model.Config) *Ingestor {
	limit := cfg.Batch.Limit
	if limit <= 0 {
		limit = 100
	}
	return &Ingestor{
		pipe:    pipe,
		limiter: NewHostLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize),
		limit:   limit,
	}
}

// Run processes rows in order, up to the batch limit. A failure in one
// row is recorded against that row and never aborts the batch; only
// exhausting the limit or the input ends the run.
func (ing *Ingestor) Run(ctx context.Context, rows []Row) *Summary {
	summary := &Summary{}

	for i, row := range rows {
		if i >= ing.limit {
			summary.Remaining = len(rows) - i
			break
		}

		if reason := ing.processRow(ctx, row); reason != "" {
			summary.Skipped++
			summary.Issues = append(summary.Issues, RowIssue{
				Line:   row.Line,
				URL:    row.URL,
				Reason: reason,
			})
			continue
		}
		summary.Processed++
	}

	return summary
}

// processRow handles one row and returns a skip reason, or "" when the
// row was ingested. Panics from row processing are contained here so a
// poisoned row cannot take the batch down.
func (ing *Ingestor) processRow(ctx context.Context, row Row) (reason string) {
	defer func() {
		if r := recover(); r != nil {
			reason = fmt.Sprintf("row processing panic: %v", r)
		}
	}()

	if row.URL == "" {
		return "empty URL"
	}

	canonical, err := pipeline.Canonicalize(row.URL)
	if err != nil {
		return err.Error()
	}

	store := ing.pipe.Store()
	exists, err := store.NodeExists(graph.LabelLink, canonical)
	if err != nil {
		return err.Error()
	}
	if exists {
		return "duplicate link"
	}

	if row.HasMetadata() {
		return ing.ingestMetadata(store, canonical, row)
	}

	if err := ing.limiter.Wait(ctx, canonical); err != nil {
		return err.Error()
	}

	if _, err := ing.pipe.IngestURL(ctx, canonical); err != nil {
		if errors.Is(err, graph.ErrDuplicateLink) {
			return "duplicate link"
		}
		return err.Error()
	}
	return ""
}

// ingestMetadata persists a row that carries pre-computed fields,
// skipping extraction and classification. The raw category string is
// still normalized through the response parser so it lands on a
// catalog entry.
func (ing *Ingestor) ingestMetadata(store *graph.Store, canonical string, row Row) string {
	parsed := parse.Parse(row.Category, ing.pipe.Catalog())

	keywords := model.SplitKeywords(row.Keyword)
	if len(keywords) == 0 {
		keywords = parsed.Keywords
	}

	link := model.Link{
		URL:                 canonical,
		Title:               row.Title,
		RawCategory:         row.Category,
		SuggestedCategory:   parsed.SuggestedCategory,
		RawContent:          row.Content,
		Keywords:            keywords,
		CategoryExplanation: row.CategoryExplanation,
		KeywordExplanation:  row.KeywordExplanation,
	}

	if err := store.UpsertLink(link, parsed.Category); err != nil {
		if errors.Is(err, graph.ErrDuplicateLink) {
			return "duplicate link"
		}
		return err.Error()
	}
	return ""
}
