package model

import "strings"

// KeywordSentinel is stored in a Link's keyword list when no keywords
// could be extracted.
const KeywordSentinel = "none"

// MaxKeywords caps how many keywords a single link may carry.
const MaxKeywords = 3

// MaxRawContent caps the raw extracted page text stored on a link.
const MaxRawContent = 5000

// MaxCleanedContent caps the condensed page text stored on a link.
const MaxCleanedContent = 500

// Link is a stored web link enriched with classification metadata.
// Identity is the canonical URL; re-ingesting the same URL is a no-op
// so manually curated explanations are never overwritten.
type Link struct {
	URL                 string   `json:"url"`
	Title               string   `json:"title"`
	RawCategory         string   `json:"raw_category"`         // verbatim model response
	SuggestedCategory   string   `json:"suggested_category"`   // category phrase extracted from the response
	RawContent          string   `json:"raw_content"`          // page text, capped at MaxRawContent
	CleanedContent      string   `json:"cleaned_content"`      // condensed text, capped at MaxCleanedContent, may be empty
	Keywords            []string `json:"keywords"`             // at most MaxKeywords entries, or the sentinel
	CategoryExplanation string   `json:"category_explanation"`
	KeywordExplanation  string   `json:"keyword_explanation"`
}

// Category is a node in the knowledge graph. Categories are created
// lazily when the first link resolves to them and are never deleted.
type Category struct {
	Name string `json:"name"`
}

// Keyword is a short phrase (at most two words) attached to links.
// Same lazy-create lifecycle as Category.
type Keyword struct {
	Name string `json:"name"`
}

// DefaultCategory is assigned when classification fails or the model
// response matches nothing in the catalog. It is intentionally not part
// of the catalog itself.
const DefaultCategory = "Uncategorized"

// JoinKeywords serializes a keyword list into the stored attribute form.
// An empty list serializes as the sentinel.
func JoinKeywords(keywords []string) string {
	if len(keywords) == 0 {
		return KeywordSentinel
	}
	return strings.Join(keywords, ", ")
}

// SplitKeywords parses the stored attribute form back into a list,
// dropping empties and capping at MaxKeywords. The sentinel yields nil.
func SplitKeywords(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == KeywordSentinel {
		return nil
	}
	var keywords []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		keywords = append(keywords, part)
		if len(keywords) == MaxKeywords {
			break
		}
	}
	return keywords
}

// RealKeywords filters the sentinel and empties out of a keyword list.
// These are the keywords that become graph nodes.
func RealKeywords(keywords []string) []string {
	var real []string
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" || strings.EqualFold(k, KeywordSentinel) {
			continue
		}
		real = append(real, k)
		if len(real) == MaxKeywords {
			break
		}
	}
	return real
}
