// Package driving provides interfaces for application entry points (primary/inbound ports).
package driving

import (
	"context"

	"github.com/athena-labs/athena-cli/internal/core/domain"
)

// SearchService answers retrieval queries against the hybrid index.
type SearchService interface {
	// Search runs the hybrid ranking algorithm and returns the ranked
	// result set. An empty corpus yields TotalResults == 0, not an
	// error; a broken index yields a *domain.RetrievalError.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error)
}

// IngestService maintains the indexes. Ingestion is an administrative,
// blocking operation serialized against queries.
type IngestService interface {
	// IngestDirectory processes every PDF under dir. Per-file
	// failures are isolated and aggregated into the report.
	IngestDirectory(ctx context.Context, dir string) (*domain.IngestReport, error)

	// IngestFile processes a single PDF and returns its chunk count.
	// The lexical index is rebuilt afterwards unless deferred by the
	// caller via rebuild=false during a batch.
	IngestFile(ctx context.Context, file domain.FileInfo, rebuild bool) (int, error)

	// Stats reports corpus totals and distinct subjects/modules.
	Stats(ctx context.Context) (*domain.CollectionStats, error)

	// Clear resets the vector store and drops the lexical index.
	Clear(ctx context.Context) error
}

// QueryService runs the complete question flow: search, cache check,
// generate, cache save.
type QueryService interface {
	// Ask answers a question from the indexed corpus.
	Ask(ctx context.Context, question string, opts AskOptions) (*domain.QueryResult, error)
}

// SolverService scans question papers and batch-answers the questions
// they contain.
type SolverService interface {
	// Analyze extracts questions and metadata from one paper without
	// answering anything.
	Analyze(ctx context.Context, path string) (*domain.PaperAnalysis, error)

	// Solve answers every question in a previously analyzed paper.
	// Per-question failures are isolated and recorded in the report.
	Solve(ctx context.Context, analysis domain.PaperAnalysis, opts SolveOptions) (*domain.SolveReport, error)
}

// SolveOptions configures one batch-solving run.
type SolveOptions struct {
	// UseCloud prefers the cloud provider for every question.
	UseCloud bool

	// Filters restricts retrieval by subject/module.
	Filters domain.SearchFilters

	// Limit overrides the configured context size per question when > 0.
	Limit int

	// MaxQuestions caps how many questions are attempted when > 0.
	MaxQuestions int
}

// AskOptions configures one question.
type AskOptions struct {
	// UseCloud prefers the cloud provider for this question.
	UseCloud bool

	// Filters restricts retrieval by subject/module.
	Filters domain.SearchFilters

	// Limit overrides the configured result count when > 0.
	Limit int
}
