package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/linkarium/internal/pipeline"
)

// removeCmd represents the remove command
var removeCmd = &cobra.Command{
	Use:   "remove <url>",
	Short: "Delete a link and its relationship edges",
	Long: `Remove deletes a link by its canonical URL, cascading the BELONGS_TO
and HAS_KEYWORD edges. Category and keyword nodes stay, even when the
removed link was their last reference.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	canonical, err := pipeline.Canonicalize(args[0])
	if err != nil {
		return err
	}

	cfg := loadConfig()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	removed, err := store.DeleteLink(canonical)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("no stored link matches %s", canonical)
	}

	fmt.Printf("✓ Removed %s\n", canonical)
	return nil
}
