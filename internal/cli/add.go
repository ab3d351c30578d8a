package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/linkarium/internal/graph"
	"github.com/ppiankov/linkarium/internal/pipeline"
)

var (
	addTimeout  time.Duration
	userAgent   string
	noCache     bool
	withRobots  bool
	llmProvider string
	llmModel    string
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Ingest a single link into the graph",
	Long: `Add canonicalizes a URL, extracts the page title and text, asks the
configured model for a category and keywords, and stores the result:
- the Link node with its enrichment attributes
- the resolved Category node and a BELONGS_TO edge
- up to three Keyword nodes with HAS_KEYWORD edges

Fetch and model failures never block the add: fallback values are
stored instead ("Uncategorized", no keywords). Re-adding an existing
URL is a no-op skip.

Example:
  linkarium add kuzudb.com
  linkarium add https://example.com/article --llm-provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().DurationVar(&addTimeout, "timeout", 2*time.Minute, "overall timeout for the add")
	addCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent override")
	addCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the page cache (force fresh fetch)")
	addCmd.Flags().BoolVar(&withRobots, "robots", false, "honor robots.txt before fetching")
	addCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider override (ollama, openai)")
	addCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model override")
}

func runAdd(cmd *cobra.Command, args []string) error {
	rawURL := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), addTimeout)
	defer cancel()

	cfg := loadConfig()
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if withRobots {
		cfg.HTTP.RespectRobots = true
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if err := applyLLMEnv(cfg); err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	p := pipeline.New(cfg, store)

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Adding: %s\n", rawURL)
		fmt.Fprintf(os.Stderr, "Store:  %s\n", cfg.Store.Path)
		fmt.Fprintln(os.Stderr)
	}

	outcome, err := p.IngestURL(ctx, rawURL)
	if errors.Is(err, graph.ErrDuplicateLink) {
		fmt.Printf("Skipped: %v\n", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("add failed: %w", err)
	}

	if outcome.FetchFallback {
		fmt.Fprintf(os.Stderr, "Warning: could not fetch page content, stored fallback values\n")
	}
	if outcome.ClassifyFallback {
		fmt.Fprintf(os.Stderr, "Warning: classification unavailable, stored %q\n", outcome.Category)
	}

	fmt.Printf("✓ %s\n", outcome.Link.URL)
	fmt.Printf("  Title:    %s\n", outcome.Link.Title)
	fmt.Printf("  Category: %s\n", outcome.Category)
	fmt.Printf("  Keywords: %s\n", strings.Join(outcome.Link.Keywords, ", "))

	return nil
}
