package graph

import (
	"errors"
	"fmt"

	"github.com/ppiankov/linkarium/internal/model"
)

// ErrDuplicateLink reports that a link with the same canonical URL is
// already stored. It is a skip, not a failure: existing links are never
// overwritten, so curated explanations survive re-ingestion.
var ErrDuplicateLink = errors.New("link already exists")

// Attribute names for Link nodes.
const (
	AttrTitle               = "title"
	AttrRawCategory         = "raw_category"
	AttrSuggestedCategory   = "suggested_category"
	AttrRawContent          = "raw_content"
	AttrCleanedContent      = "cleaned_content"
	AttrKeywords            = "keywords"
	AttrCategoryExplanation = "category_explanation"
	AttrKeywordExplanation  = "keyword_explanation"
)

// UpsertLink applies a fully parsed link record to the graph:
// the Link node is created unless its URL already exists (in which
// case ErrDuplicateLink is returned and nothing is written), the
// resolved category node and its BELONGS_TO edge are created if
// absent, and each non-sentinel keyword gets a node and a HAS_KEYWORD
// edge. Every ensure step is idempotent; repeating the call for an
// existing record is a no-op.
//
// The several writes are not wrapped in a transaction. A failure in
// the middle can leave a Link without its edges, which is harmless:
// it simply does not show up connected in the export.
func (s *Store) UpsertLink(link model.Link, category string) error {
	if link.URL == "" {
		return fmt.Errorf("upsert link: empty URL")
	}
	if category == "" {
		category = model.DefaultCategory
	}

	exists, err := s.NodeExists(LabelLink, link.URL)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDuplicateLink, link.URL)
	}

	keywords := model.RealKeywords(link.Keywords)

	attrs := map[string]string{
		AttrTitle:               link.Title,
		AttrRawCategory:         link.RawCategory,
		AttrSuggestedCategory:   link.SuggestedCategory,
		AttrRawContent:          truncate(link.RawContent, model.MaxRawContent),
		AttrCleanedContent:      truncate(link.CleanedContent, model.MaxCleanedContent),
		AttrKeywords:            model.JoinKeywords(keywords),
		AttrCategoryExplanation: defaultExplanation(link.CategoryExplanation),
		AttrKeywordExplanation:  defaultExplanation(link.KeywordExplanation),
	}

	if err := s.CreateNode(LabelLink, link.URL, attrs); err != nil {
		return err
	}

	if err := s.EnsureNode(LabelCategory, category, nil); err != nil {
		return err
	}
	if err := s.EnsureEdge(RelBelongsTo, LabelLink, link.URL, LabelCategory, category); err != nil {
		return err
	}

	for _, keyword := range keywords {
		if err := s.EnsureNode(LabelKeyword, keyword, nil); err != nil {
			return err
		}
		if err := s.EnsureEdge(RelHasKeyword, LabelLink, link.URL, LabelKeyword, keyword); err != nil {
			return err
		}
	}

	return nil
}

// DeleteLink removes a link and its relationship edges. Category and
// keyword nodes are left in place even when orphaned.
func (s *Store) DeleteLink(url string) (bool, error) {
	return s.DeleteNode(LabelLink, url)
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

func defaultExplanation(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
