package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runStats,
}

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Show the subject/module layout of the data directory",
	RunE:  runStructure,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(structureCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}

	stats, err := ingestService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	cmd.Println("Index Statistics")
	cmd.Println("================")
	cmd.Printf("  Chunks:   %d\n", stats.TotalChunks)
	cmd.Printf("  Subjects: %s\n", joinOrNone(stats.Subjects))
	cmd.Printf("  Modules:  %s\n", joinOrNone(stats.Modules))
	if stats.EmbeddingModel != "" {
		cmd.Printf("  Model:    %s\n", stats.EmbeddingModel)
	}

	return nil
}

func runStructure(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}

	structure, err := documentSource.Structure(settings.DataDir)
	if err != nil {
		return fmt.Errorf("failed to scan data directory: %w", err)
	}

	if len(structure) == 0 {
		cmd.Printf("No PDF files found under %s\n", settings.DataDir)
		return nil
	}

	subjects := make([]string, 0, len(structure))
	for subject := range structure {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	for _, subject := range subjects {
		cmd.Printf("%s/\n", subject)
		modules := make([]string, 0, len(structure[subject]))
		for module := range structure[subject] {
			modules = append(modules, module)
		}
		sort.Strings(modules)
		for _, module := range modules {
			cmd.Printf("  %s/\n", module)
			files := structure[subject][module]
			sort.Strings(files)
			for _, file := range files {
				cmd.Printf("    %s\n", file)
			}
		}
	}

	return nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
