package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/linkarium/internal/ingest"
	"github.com/ppiankov/linkarium/internal/pipeline"
)

var (
	batchLimit   int
	batchTimeout time.Duration
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Ingest links from a CSV file",
	Long: `Import reads header-mapped CSV rows and runs the ingestion pipeline
over each, strictly in order. The "url" column is required; rows that
also carry title, content and category skip extraction and
classification and store the supplied metadata directly (the raw
category string is still normalized against the catalog).

A failing row is recorded and skipped; it never aborts the batch.
Rows beyond --limit are left for a subsequent run.

Example:
  linkarium import links.csv
  linkarium import links.csv --limit 50 --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().IntVar(&batchLimit, "limit", 0, "max rows to process this run (default from config)")
	importCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
	importCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider override (ollama, openai)")
	importCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model override")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	if batchLimit > 0 {
		cfg.Batch.Limit = batchLimit
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

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open CSV: %w", err)
	}
	rows, err := ingest.ReadCSV(file)
	_ = file.Close()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Linkarium CSV Import\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:  %s\n", path)
	fmt.Fprintf(os.Stderr, "  Rows:        %d\n", len(rows))
	fmt.Fprintf(os.Stderr, "  Limit:       %d\n", cfg.Batch.Limit)
	fmt.Fprintf(os.Stderr, "  Store:       %s\n", cfg.Store.Path)
	fmt.Fprintf(os.Stderr, "\n")

	ingestor := ingest.New(pipeline.New(cfg, store), cfg)
	summary := ingestor.Run(ctx, rows)

	for _, issue := range summary.Issues {
		fmt.Fprintf(os.Stderr, "✗ line %d (%s): %s\n", issue.Line, issue.URL, issue.Reason)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Import Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Processed:  %d\n", summary.Processed)
	fmt.Fprintf(os.Stderr, "  Skipped:    %d\n", summary.Skipped)
	if summary.Remaining > 0 {
		fmt.Fprintf(os.Stderr, "  Remaining:  %d (past --limit, rerun to continue)\n", summary.Remaining)
	}
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
