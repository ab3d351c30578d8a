package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/linkarium/internal/model"
)

// FailureResponse is fed forward as a link's raw category when the
// model is unreachable or errors. It deliberately matches nothing in
// the catalog so the parser resolves it to the default category.
const FailureResponse = "Failed to connect to the language model"

// Condensation input/output bounds.
const (
	condenseMinInput = 100
	condenseMaxInput = 2000
	classifyMaxRaw   = 1000
)

// Classification is the raw model output for a link. Fallback marks
// responses substituted after a failed call; it is a value, not an
// error, so the pipeline treats the failure path as a normal branch.
type Classification struct {
	Raw      string
	Fallback bool
}

// Classifier orchestrates the two model calls per link: content
// condensation followed by category/keyword suggestion. Each call has
// its own timeout and is attempted exactly once.
type Classifier struct {
	provider Provider
	timeout  time.Duration
	catalog  []string
}

// NewClassifier wires a provider and catalog into a classifier.
// provider may be nil, in which case every call takes the fallback path.
func NewClassifier(provider Provider, timeout time.Duration, catalog []string) *Classifier {
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Classifier{
		provider: provider,
		timeout:  timeout,
		catalog:  catalog,
	}
}

// Enabled reports whether a provider is configured.
func (c *Classifier) Enabled() bool {
	return c != nil && c.provider != nil
}

// Condense asks the model to extract the main meaningful content from
// a page. Inputs shorter than the minimum are skipped, and any failure
// yields an empty string: the caller then classifies against the raw
// content directly.
func (c *Classifier) Condense(ctx context.Context, content string) string {
	if !c.Enabled() || len(content) < condenseMinInput {
		return ""
	}

	excerpt := content
	if len(excerpt) > condenseMaxInput {
		excerpt = excerpt[:condenseMaxInput]
	}

	prompt := fmt.Sprintf(
		"Extract up to %d characters of the main meaningful content from this web page text. Return only the extracted text.\n\n%s",
		model.MaxCleanedContent, excerpt,
	)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	response, err := c.provider.Generate(callCtx, prompt)
	if err != nil {
		return ""
	}

	response = strings.TrimSpace(response)
	if len(response) > model.MaxCleanedContent {
		response = response[:model.MaxCleanedContent]
	}
	return response
}

// Classify asks the model for a single category and up to three
// keywords, preferring the condensed content as the excerpt. On error
// the result carries the failure sentinel and the Fallback tag.
func (c *Classifier) Classify(ctx context.Context, title, rawContent, cleanedContent string) Classification {
	if !c.Enabled() {
		return Classification{Raw: FailureResponse, Fallback: true}
	}

	excerpt := cleanedContent
	if excerpt == "" {
		excerpt = rawContent
		if len(excerpt) > classifyMaxRaw {
			excerpt = excerpt[:classifyMaxRaw]
		}
	}

	prompt := fmt.Sprintf(
		"Categorize this web page.\n\nTitle: %s\n\nContent: %s\n\nPick exactly one category from this list: %s. Then suggest up to three keywords, each at most two words.\n\nAnswer in the form: Category: <category> Keywords: <keyword1>, <keyword2>, <keyword3>.",
		title, excerpt, strings.Join(c.catalog, ", "),
	)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	response, err := c.provider.Generate(callCtx, prompt)
	if err != nil {
		return Classification{Raw: FailureResponse, Fallback: true}
	}

	return Classification{Raw: strings.TrimSpace(response)}
}
