package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui"
)

var tuiCollection string

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for pagelens.

Ask questions about a collection and browse the pages each answer was
drawn from, or pick and delete collections.

Controls:
  Enter    - Ask / Select
  ↑/k, ↓/j - Navigate pages and collections
  n        - New question
  c        - Toggle context pages
  d        - Delete collection
  Esc      - Back
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiCollection, "collection", "c", "", "collection to ask against")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports := tui.NewPorts(ragService, collectionService)
	ports.Stats = statsService

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())
	if tuiCollection != "" {
		app.SelectCollection(tuiCollection)
	}

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
