package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestRecreate bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [directory]",
	Short: "Ingest documents from a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestRecreate, "recreate", false, "delete and recreate the index before ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	count, err := pipeline.Ingest(cmd.Context(), args[0], ingestRecreate)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if count == 0 {
		cmd.Println("No documents found to ingest.")
		return nil
	}
	cmd.Printf("Success! Ingested %d chunks.\n", count)
	return nil
}
