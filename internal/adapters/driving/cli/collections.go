package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

var collectionsJSON bool

var collectionsCmd = &cobra.Command{
	Use:     "collections",
	Aliases: []string{"collection"},
	Short:   "Manage indexed collections",
	RunE:    runCollectionsList,
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed collections",
	Args:  cobra.NoArgs,
	RunE:  runCollectionsList,
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionsDelete,
}

func init() {
	collectionsCmd.PersistentFlags().BoolVar(&collectionsJSON, "json", false, "output as JSON")
	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsDeleteCmd)
	rootCmd.AddCommand(collectionsCmd)
}

func runCollectionsList(cmd *cobra.Command, _ []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	list := collectionService.List(cmd.Context())
	if collectionsJSON {
		if list == nil {
			list = []domain.CollectionSummary{}
		}
		return printJSON(cmd, map[string]any{"collections": list, "count": len(list)})
	}

	if len(list) == 0 {
		cmd.Println("No collections indexed.")
		return nil
	}

	cmd.Printf("%-24s %6s %6s %8s  %s\n", "NAME", "DOCS", "PAGES", "SIZE MB", "CREATED")
	for _, c := range list {
		cmd.Printf("%-24s %6d %6d %8.2f  %s\n",
			truncate(c.Name, 24), c.DocumentCount, c.TotalPages, c.SizeEstimate,
			c.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runCollectionsDelete(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	name := args[0]
	if !collectionService.Delete(cmd.Context(), name) {
		return fmt.Errorf("%w: collection %q", domain.ErrNotFound, name)
	}
	cmd.Printf("Deleted collection %q\n", name)
	return nil
}
