// Package parse turns free-form model responses into structured
// category and keyword records. The parser is pure: identical input
// text and catalog always produce identical output.
package parse

import (
	"regexp"
	"strings"

	"github.com/ppiankov/linkarium/internal/model"
)

// Result is the structured form of a classification response.
type Result struct {
	// Category is the resolved catalog entry, or model.DefaultCategory
	// when nothing in the catalog matches.
	Category string

	// SuggestedCategory is the verbatim category phrase the model
	// proposed, whether or not it resolved to a catalog entry.
	SuggestedCategory string

	// Keywords holds at most model.MaxKeywords entries. When no
	// keywords could be extracted it holds the single sentinel entry.
	Keywords []string
}

var (
	// Category phrase: letters, spaces and slashes after "Category:",
	// ending at "Keywords:" or end of response.
	categoryRe = regexp.MustCompile(`(?i)category:\s*([a-zA-Z\s/]+?)(?:keywords:|$)`)

	// Keyword clause: everything after "Keywords:" up to the next period.
	keywordsRe = regexp.MustCompile(`(?i)keywords:\s*([^.]+)`)

	// Fallback: capitalized phrases scattered through the response.
	capitalizedRe = regexp.MustCompile(`\b[A-Z][a-zA-Z\s-]+\b`)
)

// Parse maps a free-form model response onto the catalog. The catalog
// is an ordered list of known category names; earlier entries win when
// more than one matches. An empty response yields the default category
// and the keyword sentinel.
func Parse(response string, catalog []string) Result {
	result := Result{
		Category:          model.DefaultCategory,
		SuggestedCategory: model.DefaultCategory,
		Keywords:          []string{model.KeywordSentinel},
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return result
	}

	if m := categoryRe.FindStringSubmatch(response); m != nil {
		if suggested := strings.TrimSpace(m[1]); suggested != "" {
			result.SuggestedCategory = suggested
		}
	}

	result.Category = resolveCategory(response, result.SuggestedCategory, catalog)

	keywords := extractKeywords(response)
	if len(keywords) == 0 || isSentinelOnly(keywords) {
		keywords = fallbackKeywords(response, result.Category, result.SuggestedCategory)
	}
	if len(keywords) > 0 {
		result.Keywords = keywords
	}

	return result
}

// resolveCategory scans the catalog in order. The first entry that
// either equals the suggested phrase (case-insensitively) or appears
// anywhere in the response wins; there is no scoring.
func resolveCategory(response, suggested string, catalog []string) string {
	lowerResponse := strings.ToLower(response)
	for _, name := range catalog {
		if strings.EqualFold(name, suggested) {
			return name
		}
		if strings.Contains(lowerResponse, strings.ToLower(name)) {
			return name
		}
	}
	return model.DefaultCategory
}

// extractKeywords pulls the comma-separated keyword clause out of the
// response, trimming entries and capping at model.MaxKeywords.
func extractKeywords(response string) []string {
	m := keywordsRe.FindStringSubmatch(response)
	if m == nil {
		return nil
	}

	var keywords []string
	for _, part := range strings.Split(m[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		keywords = append(keywords, part)
		if len(keywords) == model.MaxKeywords {
			break
		}
	}
	return keywords
}

// fallbackKeywords scans the response for capitalized phrases of at
// most two words when no explicit keyword clause was found. Phrases
// that merely repeat the category are excluded.
func fallbackKeywords(response, category, suggested string) []string {
	lowerCategory := strings.ToLower(category)
	lowerSuggested := strings.ToLower(suggested)

	var keywords []string
	for _, match := range capitalizedRe.FindAllString(response, -1) {
		for _, phrase := range capitalizedRuns(match) {
			lower := strings.ToLower(phrase)
			if strings.Contains(lowerCategory, lower) || strings.Contains(lowerSuggested, lower) {
				continue
			}
			keywords = append(keywords, phrase)
			if len(keywords) == model.MaxKeywords {
				return keywords
			}
		}
	}
	return keywords
}

// capitalizedRuns splits a regex match into consecutive runs of
// capitalized words. The regex is greedy and will absorb lowercase
// words between capitals ("I think this is about Social Media"), so
// runs are what recovers the short phrases. Runs longer than two words
// and bare single letters are dropped, and the response-format labels
// "Category" and "Keywords" break runs without joining them.
func capitalizedRuns(match string) []string {
	var runs []string
	var current []string

	flush := func() {
		if n := len(current); n >= 1 && n <= 2 {
			phrase := strings.Join(current, " ")
			if len(phrase) > 1 {
				runs = append(runs, phrase)
			}
		}
		current = nil
	}

	for _, word := range strings.Fields(match) {
		if strings.EqualFold(word, "category") || strings.EqualFold(word, "keywords") {
			flush()
			continue
		}
		if word[0] >= 'A' && word[0] <= 'Z' {
			current = append(current, word)
			continue
		}
		flush()
	}
	flush()

	return runs
}

func isSentinelOnly(keywords []string) bool {
	return len(keywords) == 1 && strings.EqualFold(keywords[0], model.KeywordSentinel)
}
