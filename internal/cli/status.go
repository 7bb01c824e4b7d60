package cli

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	stats := pipeline.Stats(cmd.Context())

	divider := strings.Repeat("=", 40)
	cmd.Println()
	cmd.Println(divider)
	cmd.Println("INDEX STATUS")
	cmd.Println(divider)
	if cfg != nil {
		cmd.Printf("Host: %s://%s\n", cfg.WeaviateScheme, cfg.WeaviateHost)
	}
	cmd.Printf("Backend: %s\n", pipeline.Backend())

	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Printf("%s: %v\n", k, stats[k])
	}
	cmd.Println(divider)
	cmd.Println()
	return nil
}
