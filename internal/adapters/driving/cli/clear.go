package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the index and cached answers",
	Long: `Removes every indexed chunk from the vector and keyword indexes and
deletes all cached answers. The source PDFs are not touched.`,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}

	if !clearYes {
		cmd.Print("This deletes the entire index and answer cache. Continue? [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		input, _ := reader.ReadString('\n') //nolint:errcheck // CLI prompt, empty input cancels
		if !strings.EqualFold(strings.TrimSpace(input), "y") {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := ingestService.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}

	if answerCache != nil {
		if err := answerCache.Clear(); err != nil {
			cmd.PrintErrf("Warning: failed to clear answer cache: %v\n", err)
		}
	}

	cmd.Println("Index and answer cache cleared.")
	return nil
}
