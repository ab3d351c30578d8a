package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/linkarium/internal/graph"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored links with their categories and keywords",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	links, err := store.ScanNodes(graph.LabelLink)
	if err != nil {
		return err
	}

	categories, err := store.ScanEdges(graph.RelBelongsTo)
	if err != nil {
		return err
	}
	categoryOf := make(map[string]string, len(categories))
	for _, e := range categories {
		categoryOf[e.FromKey] = e.ToKey
	}

	if len(links) == 0 {
		fmt.Println("No links stored yet. Use 'linkarium add <url>' to ingest one.")
		return nil
	}

	for _, link := range links {
		title := link.Attrs[graph.AttrTitle]
		if title == "" {
			title = link.Key
		}
		category := categoryOf[link.Key]
		if category == "" {
			category = "(no category edge)"
		}

		fmt.Printf("%s\n", title)
		fmt.Printf("  URL:      %s\n", link.Key)
		fmt.Printf("  Category: %s\n", category)
		fmt.Printf("  Keywords: %s\n", link.Attrs[graph.AttrKeywords])
		fmt.Println()
	}

	fmt.Printf("%d link(s)\n", len(links))
	return nil
}
