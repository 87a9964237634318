package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/athena-labs/athena-cli/internal/core/domain"
	"github.com/athena-labs/athena-cli/internal/core/ports/driving"
)

var (
	solveOut     string
	solveCloud   bool
	solveSubject string
	solveModule  string
	solveLimit   int
	solveMax     int
	solveAnalyze bool
	solveYes     bool
)

var solveCmd = &cobra.Command{
	Use:   "solve [paper.pdf | directory]",
	Short: "Answer every question in a question paper",
	Long: `Scans a question-paper PDF, extracts the questions it contains, and
answers each one from your indexed library. The answers are written to
a solution sheet next to the paper. Given a directory, every PDF in it
is solved in turn.`,
	Args: cobra.ExactArgs(1),
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVarP(&solveOut, "out", "o", "", "solution sheet path (default <paper>_solutions.txt)")
	solveCmd.Flags().BoolVar(&solveCloud, "cloud", false, "prefer the cloud provider for every question")
	solveCmd.Flags().StringVar(&solveSubject, "subject", "", "restrict retrieval to a subject")
	solveCmd.Flags().StringVar(&solveModule, "module", "", "restrict retrieval to a module")
	solveCmd.Flags().IntVarP(&solveLimit, "limit", "n", 0, "context chunks per question (default from config)")
	solveCmd.Flags().IntVar(&solveMax, "max-questions", 0, "answer at most this many questions (0 = all)")
	solveCmd.Flags().BoolVar(&solveAnalyze, "analyze", false, "list the extracted questions without answering them")
	solveCmd.Flags().BoolVarP(&solveYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	if info.IsDir() {
		return solveBatch(cmd, path)
	}
	return solvePaper(cmd, path, solveOut)
}

// solveBatch solves every PDF directly inside dir, writing one solution
// sheet per paper. A failing paper does not stop the batch.
func solveBatch(cmd *cobra.Command, dir string) error {
	papers, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return fmt.Errorf("scan %s: %w", dir, err)
	}
	if len(papers) == 0 {
		cmd.Printf("No PDF files found in %s\n", dir)
		return nil
	}
	sort.Strings(papers)

	cmd.Printf("Found %d paper(s) in %s\n", len(papers), dir)
	failed := 0
	for _, paper := range papers {
		cmd.Printf("\n=== %s ===\n", filepath.Base(paper))
		if err := solvePaper(cmd, paper, ""); err != nil {
			cmd.PrintErrf("Warning: %s: %v\n", filepath.Base(paper), err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d paper(s) failed", failed, len(papers))
	}
	return nil
}

func solvePaper(cmd *cobra.Command, path, out string) error {
	analysis, err := solverService.Analyze(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("analyze paper: %w", err)
	}

	outputAnalysis(cmd, analysis)
	if len(analysis.Questions) == 0 {
		cmd.Println("No questions recognized, nothing to solve.")
		return nil
	}
	if solveAnalyze {
		return nil
	}

	if !solveYes {
		cmd.Printf("Answer %d question(s)? [y/N]: ", len(analysis.Questions))
		reader := bufio.NewReader(os.Stdin)
		input, _ := reader.ReadString('\n') //nolint:errcheck // CLI prompt, empty input cancels
		if !strings.EqualFold(strings.TrimSpace(input), "y") {
			cmd.Println("Aborted.")
			return nil
		}
	}

	opts := driving.SolveOptions{
		UseCloud: solveCloud,
		Filters: domain.SearchFilters{
			Subject: solveSubject,
			Module:  solveModule,
		},
		Limit:        solveLimit,
		MaxQuestions: solveMax,
	}

	report, err := solverService.Solve(cmd.Context(), *analysis, opts)
	if err != nil {
		return fmt.Errorf("solve paper: %w", err)
	}

	if out == "" {
		out = solutionSheetPath(path)
	}
	if err := os.WriteFile(out, []byte(formatSolutionSheet(report)), 0o644); err != nil {
		return fmt.Errorf("write solution sheet: %w", err)
	}

	cmd.Printf("Answered %d question(s), %d failed.\n", report.SolvedCount, report.FailedCount)
	cmd.Printf("Solution sheet: %s\n", out)
	return nil
}

func outputAnalysis(cmd *cobra.Command, analysis *domain.PaperAnalysis) {
	cmd.Printf("%s: %d page(s), %d question(s)\n",
		analysis.FileName, analysis.TotalPages, len(analysis.Questions))
	if analysis.DetectedSubject != "" {
		cmd.Printf("Detected subject: %s\n", analysis.DetectedSubject)
	}
	for _, key := range sortedMetadataKeys(analysis.Metadata) {
		cmd.Printf("%s: %s\n", strings.ReplaceAll(key, "_", " "), analysis.Metadata[key])
	}
	for i, q := range analysis.Questions {
		cmd.Printf("  [%d] %s\n", i+1, snippet(q.Text, 100))
	}
}

// solutionSheetPath derives the default output path from the paper.
func solutionSheetPath(paper string) string {
	base := strings.TrimSuffix(paper, filepath.Ext(paper))
	return base + "_solutions.txt"
}

func sortedMetadataKeys(meta map[string]string) []string {
	keys := make([]string, 0, len(meta))
	for key := range meta {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// formatSolutionSheet renders the report as a plain-text sheet.
func formatSolutionSheet(report *domain.SolveReport) string {
	rule := strings.Repeat("=", 80)
	thin := strings.Repeat("-", 80)

	var sb strings.Builder
	sb.WriteString(rule + "\n")
	sb.WriteString("SOLVED QUESTION PAPER: " + report.Analysis.FileName + "\n")
	sb.WriteString(rule + "\n")
	if report.Analysis.DetectedSubject != "" {
		sb.WriteString("Detected subject: " + report.Analysis.DetectedSubject + "\n")
	}
	for _, key := range sortedMetadataKeys(report.Analysis.Metadata) {
		sb.WriteString(fmt.Sprintf("%s: %s\n",
			strings.ReplaceAll(key, "_", " "), report.Analysis.Metadata[key]))
	}
	sb.WriteString(fmt.Sprintf("Questions answered: %d of %d\n",
		report.SolvedCount, len(report.Solved)))

	for i, solved := range report.Solved {
		sb.WriteString("\n" + thin + "\n")
		sb.WriteString(fmt.Sprintf("QUESTION %d (%s, confidence %.2f)\n",
			i+1, solved.Question.Method, solved.Question.Confidence))
		sb.WriteString(thin + "\n")
		sb.WriteString(solved.Question.Text + "\n")

		if solved.Failed() {
			sb.WriteString("\nFAILED: " + solved.Err + "\n")
			continue
		}

		sb.WriteString("\nANSWER:\n" + solved.Result.Answer + "\n")
		if len(solved.Result.Sources) > 0 {
			refs := make([]string, len(solved.Result.Sources))
			for j, src := range solved.Result.Sources {
				refs[j] = fmt.Sprintf("%s p.%d", src.FileName, src.PageNumber)
			}
			sb.WriteString("Sources: " + strings.Join(refs, ", ") + "\n")
		}
	}
	return sb.String()
}
