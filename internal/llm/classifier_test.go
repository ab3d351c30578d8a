package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/linkarium/internal/model"
)

// stubProvider returns a canned response and records the prompts it saw.
type stubProvider struct {
	response string
	err      error
	prompts  []string
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) IsAvailable(context.Context) bool { return s.err == nil }
func (s *stubProvider) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

var testCatalog = []string{"Technology", "Database", "News"}

func TestCondense_ShortInputSkipsModel(t *testing.T) {
	stub := &stubProvider{response: "should not be called"}
	c := NewClassifier(stub, time.Second, testCatalog)

	if got := c.Condense(context.Background(), "too short"); got != "" {
		t.Errorf("Condense = %q, want empty", got)
	}
	if len(stub.prompts) != 0 {
		t.Errorf("model was called %d times for short input", len(stub.prompts))
	}
}

func TestCondense_TrimsAndCaps(t *testing.T) {
	long := strings.Repeat("x", model.MaxCleanedContent+100)
	stub := &stubProvider{response: "  " + long + "  "}
	c := NewClassifier(stub, time.Second, testCatalog)

	got := c.Condense(context.Background(), strings.Repeat("page text ", 20))
	if len(got) != model.MaxCleanedContent {
		t.Errorf("len = %d, want %d", len(got), model.MaxCleanedContent)
	}
	if strings.HasPrefix(got, " ") {
		t.Error("response should be trimmed before capping")
	}
}

func TestCondense_TruncatesOversizedInput(t *testing.T) {
	stub := &stubProvider{response: "condensed"}
	c := NewClassifier(stub, time.Second, testCatalog)

	c.Condense(context.Background(), strings.Repeat("z", 5000))
	if len(stub.prompts) != 1 {
		t.Fatalf("model called %d times, want 1", len(stub.prompts))
	}
	if got := strings.Count(stub.prompts[0], "z"); got != condenseMaxInput {
		t.Errorf("prompt carries %d input characters, want %d", got, condenseMaxInput)
	}
}

func TestCondense_FailureYieldsEmpty(t *testing.T) {
	stub := &stubProvider{err: errors.New("model down")}
	c := NewClassifier(stub, time.Second, testCatalog)

	if got := c.Condense(context.Background(), strings.Repeat("page text ", 20)); got != "" {
		t.Errorf("Condense = %q, want empty on failure", got)
	}
}

func TestClassify_Success(t *testing.T) {
	stub := &stubProvider{response: "  Category: Database Keywords: graph, storage.  "}
	c := NewClassifier(stub, time.Second, testCatalog)

	got := c.Classify(context.Background(), "Kuzu Docs", "raw page text", "cleaned text")
	if got.Fallback {
		t.Error("successful call must not be tagged as fallback")
	}
	if got.Raw != "Category: Database Keywords: graph, storage." {
		t.Errorf("Raw = %q", got.Raw)
	}

	prompt := stub.prompts[0]
	if !strings.Contains(prompt, "Kuzu Docs") {
		t.Error("prompt should carry the title")
	}
	if !strings.Contains(prompt, "Technology, Database, News") {
		t.Error("prompt should list the catalog in order")
	}
	if !strings.Contains(prompt, "cleaned text") {
		t.Error("prompt should prefer the condensed content")
	}
	if strings.Contains(prompt, "raw page text") {
		t.Error("raw content should not appear when condensed content exists")
	}
}

func TestClassify_RawExcerptCapped(t *testing.T) {
	stub := &stubProvider{response: "Category: News Keywords: none."}
	c := NewClassifier(stub, time.Second, testCatalog)

	c.Classify(context.Background(), "T", strings.Repeat("z", 5000), "")
	if got := strings.Count(stub.prompts[0], "z"); got != classifyMaxRaw {
		t.Errorf("raw excerpt length = %d, want %d", got, classifyMaxRaw)
	}
}

func TestClassify_FailureSentinel(t *testing.T) {
	stub := &stubProvider{err: errors.New("model down")}
	c := NewClassifier(stub, time.Second, testCatalog)

	got := c.Classify(context.Background(), "T", "content", "")
	if !got.Fallback {
		t.Error("failed call must be tagged as fallback")
	}
	if got.Raw != FailureResponse {
		t.Errorf("Raw = %q, want failure sentinel", got.Raw)
	}
}

func TestClassify_NilProvider(t *testing.T) {
	c := NewClassifier(nil, time.Second, testCatalog)

	if c.Enabled() {
		t.Error("Enabled should be false without a provider")
	}
	got := c.Classify(context.Background(), "T", "content", "")
	if !got.Fallback || got.Raw != FailureResponse {
		t.Errorf("Classification = %+v, want fallback sentinel", got)
	}
	if out := c.Condense(context.Background(), strings.Repeat("page text ", 20)); out != "" {
		t.Errorf("Condense = %q, want empty without a provider", out)
	}
}
