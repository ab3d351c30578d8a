// Package extract obtains a title and plain text for a canonical URL.
// Extraction never fails the pipeline: any network or parse problem is
// converted into a fallback result so ingestion can continue with
// whatever is known (the URL itself and a failure sentinel).
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/ppiankov/linkarium/internal/cache"
	"github.com/ppiankov/linkarium/internal/model"
	"github.com/ppiankov/linkarium/internal/util"
)

// FailureContent is stored as a link's raw content when the page could
// not be fetched or parsed.
const FailureContent = "Failed to fetch content"

// Result is what extraction produced for a URL. Fallback marks results
// where fetching failed and sentinel values were substituted; it is a
// normal value, not an error.
type Result struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Fallback bool   `json:"-"`
}

// Extractor fetches pages and reduces them to title plus plain text.
type Extractor struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsGate
	pages      cache.Cache
}

// New creates an extractor from the HTTP configuration. pages may be
// nil to disable caching of successful extractions.
func New(cfg model.HTTPConfig, pages cache.Cache) *Extractor {
	var robots *util.RobotsGate
	if cfg.RespectRobots {
		robots = util.NewRobotsGate(cfg.UserAgent, cfg.Timeout)
	}

	return &Extractor{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		robots:    robots,
		pages:     pages,
	}
}

// Extract returns the page title and plain text for a canonical URL.
// The text is the readable article content (headings and paragraphs),
// truncated to the stored content cap. On any failure the title falls
// back to the URL and the content to the failure sentinel.
func (e *Extractor) Extract(ctx context.Context, canonicalURL string) Result {
	if e.pages != nil {
		if data, ok := e.pages.Get(cache.Key(canonicalURL)); ok {
			var cached Result
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached
			}
		}
	}

	result, err := e.extract(ctx, canonicalURL)
	if err != nil {
		return Result{Title: canonicalURL, Content: FailureContent, Fallback: true}
	}

	if e.pages != nil {
		if data, err := json.Marshal(result); err == nil {
			_ = e.pages.Set(cache.Key(canonicalURL), data, 0)
		}
	}

	return result
}

func (e *Extractor) extract(ctx context.Context, canonicalURL string) (Result, error) {
	if e.robots != nil && !e.robots.Allowed(ctx, canonicalURL) {
		return Result{}, fmt.Errorf("disallowed by robots.txt: %s", canonicalURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, canonicalURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return Result{}, fmt.Errorf("read body: %w", err)
	}

	title, content := parsePage(body, canonicalURL)
	if title == "" {
		title = canonicalURL
	}

	return Result{
		Title:   title,
		Content: truncate(content, model.MaxRawContent),
	}, nil
}

// parsePage reduces an HTML document to a title and plain text,
// preferring readability's article extraction and falling back to a
// plain walk over title, heading and paragraph nodes.
func parsePage(body []byte, canonicalURL string) (title, content string) {
	parsedURL, _ := url.Parse(canonicalURL)

	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err == nil {
		title = strings.TrimSpace(article.Title)
		content = collapseSpace(article.TextContent)
	}

	if title == "" || content == "" {
		fallbackTitle, fallbackContent := walkPage(body)
		if title == "" {
			title = fallbackTitle
		}
		if content == "" {
			content = fallbackContent
		}
	}

	return title, content
}

// walkPage concatenates the text of title, heading and paragraph nodes.
func walkPage(body []byte) (title, content string) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", ""
	}

	var texts []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			case "title":
				if title == "" {
					title = strings.TrimSpace(nodeText(n))
				}
				return
			case "h1", "h2", "h3", "h4", "h5", "h6", "p":
				if text := strings.TrimSpace(nodeText(n)); text != "" {
					texts = append(texts, text)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return title, strings.Join(texts, " ")
}

func nodeText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
