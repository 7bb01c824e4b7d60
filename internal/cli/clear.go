package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the vector index and all ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearYes {
		cmd.Print("Are you sure you want to clear all indexed documents? (yes/no): ")
		scanner := bufio.NewScanner(cmd.InOrStdin())
		if !scanner.Scan() || strings.ToLower(strings.TrimSpace(scanner.Text())) != "yes" {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	if err := pipeline.ClearIndex(cmd.Context()); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}
	cmd.Println("Index cleared.")
	return nil
}
