package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/athena-labs/athena-cli/internal/core/domain"
)

var ingestDir string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index PDF documents",
	Long: `Walks the data directory, extracts and chunks every PDF, embeds the
chunks, and stores them in the vector and keyword indexes. Files that
fail to process are skipped and reported; the batch always completes.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestDir, "dir", "d", "", "data directory to ingest (default from config)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}

	dir := ingestDir
	if dir == "" {
		dir = settings.DataDir
	}

	cmd.Printf("Ingesting PDFs from %s...\n", dir)

	report, err := ingestService.IngestDirectory(cmd.Context(), dir)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	outputIngestReport(cmd, report)
	return nil
}

func outputIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	cmd.Println()
	cmd.Printf("Files processed: %d\n", report.TotalFiles)
	cmd.Printf("Chunks indexed:  %d\n", report.TotalChunks)
	if report.FailedFiles > 0 {
		cmd.Printf("Files failed:    %d\n", report.FailedFiles)
	}

	if len(report.BySubject) == 0 {
		return
	}

	cmd.Println("\nBy subject:")
	for _, subject := range sortedReportKeys(report.BySubject) {
		stats := report.BySubject[subject]
		cmd.Printf("  %-24s %d files, %d chunks\n", subject, stats.Files, stats.Chunks)
	}
}

func sortedReportKeys(m map[string]*domain.IngestStats) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
