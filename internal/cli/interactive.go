package cli

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Interactive question-and-answer session",
	Args:  cobra.NoArgs,
	RunE:  runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	divider := strings.Repeat("=", 60)
	cmd.Println()
	cmd.Println(divider)
	cmd.Println("INTERACTIVE MODE")
	cmd.Println(divider)
	cmd.Println("Ask questions about your ingested documents.")
	cmd.Println("Type 'exit' or 'quit' to end the session.")
	cmd.Println("Type 'help' for available commands.")
	cmd.Println(divider)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("\nYour question: ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}

		switch strings.ToLower(question) {
		case "exit", "quit", "q":
			cmd.Println("Goodbye!")
			return nil
		case "help":
			cmd.Println("\nCommands:")
			cmd.Println("  exit/quit/q - Exit interactive mode")
			cmd.Println("  help        - Show this help message")
			cmd.Println("\nOr just type your question!")
			continue
		}

		resp, err := pipeline.Query(cmd.Context(), question, 0)
		if err != nil {
			cmd.Printf("\nError: %v\n", err)
			continue
		}
		printResponse(cmd, resp)
	}
}
