package cli

import (
	"context"
	"errors"

	"github.com/athena-labs/athena-cli/internal/core/domain"
	"github.com/athena-labs/athena-cli/internal/core/ports/driving"
)

// setupTestServices installs mock services and returns a cleanup
// function restoring the previous wiring.
func setupTestServices() func() {
	oldSettings := settings
	oldSearch := searchService
	oldIngest := ingestService
	oldQuery := queryService
	oldSolver := solverService
	oldSource := documentSource

	settings = domain.DefaultSettings()
	searchService = &mockSearchService{}
	ingestService = &mockIngestService{}
	queryService = &mockQueryService{}
	solverService = &mockSolverService{}
	documentSource = &mockDocumentSource{}

	return func() {
		settings = oldSettings
		searchService = oldSearch
		ingestService = oldIngest
		queryService = oldQuery
		solverService = oldSolver
		documentSource = oldSource
	}
}

type mockSearchService struct {
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	results := []domain.SearchResult{
		{
			Document: "Climb milling cuts with the rotation of the cutter.",
			Meta: domain.ChunkMeta{
				FileName:    "milling.pdf",
				Subject:     "Machining",
				Module:      "Milling",
				PageNumber:  3,
				ChunkNumber: 1,
			},
			Score:         0.91,
			SemanticScore: 0.95,
			BM25Score:     0.82,
		},
	}
	limit := opts.Limit
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return &domain.SearchResponse{
		Query:        query,
		Results:      results,
		TotalResults: len(results),
	}, nil
}

type mockSearchServiceError struct{}

func (m *mockSearchServiceError) Search(context.Context, string, domain.SearchOptions) (*domain.SearchResponse, error) {
	return nil, errors.New("index unavailable")
}

type mockIngestService struct {
	report   *domain.IngestReport
	stats    *domain.CollectionStats
	cleared  bool
	statsErr error
}

func (m *mockIngestService) IngestDirectory(context.Context, string) (*domain.IngestReport, error) {
	if m.report != nil {
		return m.report, nil
	}
	return &domain.IngestReport{
		TotalFiles:  2,
		TotalChunks: 14,
		BySubject: map[string]*domain.IngestStats{
			"Machining": {Files: 2, Chunks: 14},
		},
		ByModule: map[string]*domain.IngestStats{
			"Machining/Milling": {Files: 2, Chunks: 14},
		},
	}, nil
}

func (m *mockIngestService) IngestFile(context.Context, domain.FileInfo, bool) (int, error) {
	return 7, nil
}

func (m *mockIngestService) Stats(context.Context) (*domain.CollectionStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	if m.stats != nil {
		return m.stats, nil
	}
	return &domain.CollectionStats{
		TotalChunks:    14,
		Subjects:       []string{"Machining"},
		Modules:        []string{"Milling"},
		EmbeddingModel: "nomic-embed-text",
	}, nil
}

func (m *mockIngestService) Clear(context.Context) error {
	m.cleared = true
	return nil
}

type mockQueryService struct {
	result   *domain.QueryResult
	err      error
	lastOpts driving.AskOptions
}

func (m *mockQueryService) Ask(_ context.Context, question string, opts driving.AskOptions) (*domain.QueryResult, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.QueryResult{
		Question: question,
		Answer:   "Climb milling cuts with the cutter rotation.",
		Sources: []domain.SourceDocument{
			{FileName: "milling.pdf", Subject: "Machining", Module: "Milling", PageNumber: 3, ChunkNumber: 1},
		},
		Mode:         domain.ModeLocal,
		TotalSources: 1,
	}, nil
}

type mockSolverService struct {
	analysis   *domain.PaperAnalysis
	analyzeErr error
	report     *domain.SolveReport
	solveErr   error
	lastOpts   driving.SolveOptions
}

func (m *mockSolverService) Analyze(_ context.Context, path string) (*domain.PaperAnalysis, error) {
	if m.analyzeErr != nil {
		return nil, m.analyzeErr
	}
	if m.analysis != nil {
		return m.analysis, nil
	}
	return &domain.PaperAnalysis{
		FilePath:   path,
		FileName:   "endsem.pdf",
		TotalPages: 2,
		Questions: []domain.ExtractedQuestion{
			{Text: "Explain the difference between up milling and down milling.", Number: 1, Method: "q-marker", Confidence: 0.95},
		},
		DetectedSubject: "engineering",
		Metadata:        map[string]string{"year": "2023"},
	}, nil
}

func (m *mockSolverService) Solve(ctx context.Context, analysis domain.PaperAnalysis, opts driving.SolveOptions) (*domain.SolveReport, error) {
	m.lastOpts = opts
	if m.solveErr != nil {
		return nil, m.solveErr
	}
	if m.report != nil {
		return m.report, nil
	}
	solved := make([]domain.SolvedQuestion, 0, len(analysis.Questions))
	for _, q := range analysis.Questions {
		solved = append(solved, domain.SolvedQuestion{
			Question: q,
			Result: &domain.QueryResult{
				Question: q.Text,
				Answer:   "Up milling cuts against the feed, down milling with it.",
				Sources: []domain.SourceDocument{
					{FileName: "milling.pdf", PageNumber: 3, ChunkNumber: 1},
				},
				Mode:         domain.ModeLocal,
				TotalSources: 1,
			},
		})
	}
	return &domain.SolveReport{
		Analysis:    analysis,
		Solved:      solved,
		SolvedCount: len(solved),
	}, nil
}

type mockDocumentSource struct {
	structure map[string]map[string][]string
}

func (m *mockDocumentSource) ListFiles(string) ([]domain.FileInfo, error) {
	return nil, nil
}

func (m *mockDocumentSource) ExtractPages(string) ([]domain.PageRecord, error) {
	return nil, nil
}

func (m *mockDocumentSource) Structure(string) (map[string]map[string][]string, error) {
	if m.structure != nil {
		return m.structure, nil
	}
	return map[string]map[string][]string{
		"Machining": {
			"Milling": {"milling.pdf", "speeds_feeds.pdf"},
		},
	}, nil
}
