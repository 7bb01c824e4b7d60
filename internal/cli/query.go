package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"studyrag/internal/document"
)

var queryTopK int

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question against the ingested documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().IntVar(&queryTopK, "top-k", 0, "number of chunks to retrieve (default from configuration)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	resp, err := pipeline.Query(cmd.Context(), args[0], queryTopK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	printResponse(cmd, resp)
	return nil
}

func printResponse(cmd *cobra.Command, resp *document.Response) {
	divider := strings.Repeat("=", 60)

	cmd.Println()
	cmd.Println(divider)
	cmd.Println("ANSWER")
	cmd.Println(divider)
	cmd.Println(resp.Answer)
	cmd.Println()
	cmd.Println(strings.Repeat("-", 60))
	cmd.Printf("Sources (%d chunks retrieved):\n", resp.RetrievedChunks)
	for i, src := range resp.Sources {
		cmd.Printf("  [%d] %s (similarity: %.3f)\n", i+1, src.Source, src.Similarity)
	}
	cmd.Println(divider)
	cmd.Println()
}
