package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/athena-labs/athena-cli/internal/core/domain"
	"github.com/athena-labs/athena-cli/internal/core/ports/driving"
)

var (
	askCloud   bool
	askJSON    bool
	askLimit   int
	askSubject string
	askModule  string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Long: `Retrieves the most relevant excerpts for the question and generates
an answer with the configured LLM. Answers are cached by question and
retrieved context, so repeating a question is instant.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askCloud, "cloud", false, "prefer the cloud provider for this question")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the full result as JSON")
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 0, "number of context chunks to retrieve (default from config)")
	askCmd.Flags().StringVar(&askSubject, "subject", "", "restrict retrieval to a subject")
	askCmd.Flags().StringVar(&askModule, "module", "", "restrict retrieval to a module")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}

	question := args[0]
	opts := driving.AskOptions{
		UseCloud: askCloud,
		Limit:    askLimit,
		Filters: domain.SearchFilters{
			Subject: askSubject,
			Module:  askModule,
		},
	}

	result, err := queryService.Ask(cmd.Context(), question, opts)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	outputQueryResult(cmd, result)
	return nil
}

func outputQueryResult(cmd *cobra.Command, result *domain.QueryResult) {
	cmd.Println(result.Answer)

	if len(result.Sources) > 0 {
		cmd.Println("\nSources:")
		for i, src := range result.Sources {
			cmd.Printf("  [%d] %s p.%d (%s / %s)\n",
				i+1, src.FileName, src.PageNumber, src.Subject, src.Module)
		}
	}

	if result.Cached {
		cmd.Println("\n(answer served from cache)")
	} else if result.Mode != domain.ModeNone {
		cmd.Printf("\n(generated via %s provider)\n", result.Mode)
	}
}
