package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/athena-labs/athena-cli/internal/core/domain"
	"github.com/athena-labs/athena-cli/internal/core/ports/driven"
	"github.com/athena-labs/athena-cli/internal/core/ports/driving"
	"github.com/athena-labs/athena-cli/internal/logger"
)

// Ensure SolverService implements the interface.
var _ driving.SolverService = (*SolverService)(nil)

// previewLen bounds the paper preview carried in the analysis.
const previewLen = 300

// SolverService scans question papers and answers every question they
// contain through the regular question flow. One bad question never
// aborts the batch.
type SolverService struct {
	source    driven.DocumentSource
	query     driving.QueryService
	extractor *QuestionExtractor
}

// NewSolverService creates a solver over the document source and the
// query service.
func NewSolverService(source driven.DocumentSource, query driving.QueryService) *SolverService {
	return &SolverService{
		source:    source,
		query:     query,
		extractor: NewQuestionExtractor(),
	}
}

// Analyze extracts questions and metadata from one paper without
// answering anything.
func (s *SolverService) Analyze(ctx context.Context, path string) (*domain.PaperAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Section("Analyze paper")
	logger.Debug("Paper: %s", path)

	pages, err := s.source.ExtractPages(path)
	if err != nil {
		return nil, fmt.Errorf("extract paper: %w", err)
	}

	var sb strings.Builder
	for _, page := range pages {
		sb.WriteString(page.Text)
		sb.WriteString("\n")
	}
	text := sb.String()

	fileName := filepath.Base(path)
	analysis := &domain.PaperAnalysis{
		FilePath:        path,
		FileName:        fileName,
		TotalPages:      len(pages),
		Questions:       s.extractor.Extract(text),
		DetectedSubject: detectSubject(text),
		Metadata:        extractPaperMetadata(fileName, text),
		Preview:         paperPreview(text),
	}

	logger.Info("Found %d question(s) in %s", len(analysis.Questions), fileName)
	return analysis, nil
}

// Solve answers every question in a previously analyzed paper.
func (s *SolverService) Solve(ctx context.Context, analysis domain.PaperAnalysis, opts driving.SolveOptions) (*domain.SolveReport, error) {
	questions := analysis.Questions
	if opts.MaxQuestions > 0 && opts.MaxQuestions < len(questions) {
		questions = questions[:opts.MaxQuestions]
	}

	logger.Section("Solve paper")
	report := &domain.SolveReport{Analysis: analysis}

	askOpts := driving.AskOptions{
		UseCloud: opts.UseCloud,
		Filters:  opts.Filters,
		Limit:    opts.Limit,
	}

	for i, question := range questions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Info("Solving question %d/%d", i+1, len(questions))

		result, err := s.query.Ask(ctx, question.Text, askOpts)
		if err != nil {
			logger.Warn("Question %d failed: %v", i+1, err)
			report.Solved = append(report.Solved, domain.SolvedQuestion{
				Question: question,
				Err:      err.Error(),
			})
			report.FailedCount++
			continue
		}

		report.Solved = append(report.Solved, domain.SolvedQuestion{
			Question: question,
			Result:   result,
		})
		report.SolvedCount++
	}

	logger.Info("Solved %d, failed %d", report.SolvedCount, report.FailedCount)
	return report, nil
}

func paperPreview(text string) string {
	text = strings.TrimSpace(spaceRunRe.ReplaceAllString(text, " "))
	runes := []rune(text)
	if len(runes) <= previewLen {
		return text
	}
	return string(runes[:previewLen])
}
