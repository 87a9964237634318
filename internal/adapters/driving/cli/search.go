package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/athena-labs/athena-cli/internal/core/domain"
)

var (
	searchLimit   int
	searchJSON    bool
	searchSubject string
	searchModule  string
	searchWeight  float64
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Performs hybrid search across all indexed documents.
Combines keyword (BM25) and semantic (vector) search for best results.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchResults, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchSubject, "subject", "", "restrict results to a subject")
	searchCmd.Flags().StringVar(&searchModule, "module", "", "restrict results to a module")
	searchCmd.Flags().Float64VarP(&searchWeight, "weight", "w", 0, "semantic weight in [0,1] (default from config)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}

	query := args[0]
	opts := domain.SearchOptions{
		Limit: searchLimit,
		Filters: domain.SearchFilters{
			Subject: searchSubject,
			Module:  searchModule,
		},
		SemanticWeight: searchWeight,
		// An explicit --weight must win even at 0, which the zero
		// value would otherwise turn back into the default.
		ForceWeight: cmd.Flags().Changed("weight"),
	}

	response, err := searchService.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, response)
	}

	return outputSearchTable(cmd, response)
}

func outputSearchJSON(cmd *cobra.Command, response *domain.SearchResponse) error {
	data, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, response *domain.SearchResponse) error {
	if response.TotalResults == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results for %q:\n\n", response.Query)
	for i := range response.Results {
		r := &response.Results[i]
		cmd.Printf("  [%d] %s p.%d (%.3f)\n", i+1, r.Meta.FileName, r.Meta.PageNumber, r.Score)
		cmd.Printf("      %s / %s  sem=%.3f bm25=%.3f\n",
			r.Meta.Subject, r.Meta.Module, r.SemanticScore, r.BM25Score)
		cmd.Printf("      %s\n", snippet(r.Document, 160))
		cmd.Println()
	}

	return nil
}

// snippet truncates text for single-line table output.
func snippet(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars]) + "..."
}
