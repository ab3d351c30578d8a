package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var exportOut string

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the graph as a node/edge JSON view",
	Long: `Export emits the whole graph as {"nodes": [...], "edges": [...]} for
visualization frontends. Node ids are namespaced by entity type
("Link:", "Category:", "Keyword:") so a category and a keyword sharing
a name never collide. Duplicate ids, should they ever appear, are
reported as a warning without failing the export.

Example:
  linkarium export
  linkarium export --out graph.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	export, collisions, err := store.Export()
	if err != nil {
		return err
	}

	if len(collisions) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: duplicate node ids in export: %s\n", strings.Join(collisions, ", "))
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	data = append(data, '\n')

	if exportOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(exportOut, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote %d nodes, %d edges to %s\n", len(export.Nodes), len(export.Edges), exportOut)
	}
	return nil
}
