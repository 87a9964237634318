package domain

// DefaultSemanticWeight is the fusion weight applied to the semantic
// score; the lexical score receives the complement.
const DefaultSemanticWeight = 0.7

// DefaultSearchResults is the default result count for a query.
const DefaultSearchResults = 8

// SearchFilters restricts a query to chunks whose metadata matches
// every non-empty field exactly.
type SearchFilters struct {
	// Subject filters by organizational subject.
	Subject string

	// Module filters by organizational module.
	Module string
}

// Matches reports whether the metadata satisfies all non-empty filters.
func (f SearchFilters) Matches(m ChunkMeta) bool {
	if f.Subject != "" && m.Subject != f.Subject {
		return false
	}
	if f.Module != "" && m.Module != f.Module {
		return false
	}
	return true
}

// SearchOptions configures a hybrid search query.
type SearchOptions struct {
	// Limit is the maximum number of results (defaults to
	// DefaultSearchResults when <= 0).
	Limit int

	// Filters restricts the candidate set by metadata equality.
	Filters SearchFilters

	// SemanticWeight is the fusion weight in [0,1]. Zero value means
	// "use the default"; callers wanting pure BM25 set ForceWeight.
	SemanticWeight float64

	// ForceWeight makes SemanticWeight authoritative even when zero.
	ForceWeight bool
}

// Weight resolves the effective semantic weight.
func (o SearchOptions) Weight() float64 {
	if o.ForceWeight {
		return o.SemanticWeight
	}
	if o.SemanticWeight <= 0 {
		return DefaultSemanticWeight
	}
	return o.SemanticWeight
}

// SearchResult is one ranked hit returned to the caller.
type SearchResult struct {
	// Document is the chunk text.
	Document string `json:"document"`

	// Meta is the chunk metadata.
	Meta ChunkMeta `json:"metadata"`

	// Score is the hybrid score.
	Score float64 `json:"score"`

	// SemanticScore is the semantic contribution before weighting.
	SemanticScore float64 `json:"semantic_score"`

	// BM25Score is the lexical contribution before weighting.
	BM25Score float64 `json:"bm25_score"`
}

// SearchResponse is the ordered result set for one query. Order is the
// primary output contract.
type SearchResponse struct {
	// Query is the original query text.
	Query string `json:"query"`

	// Results are the ranked hits, best first.
	Results []SearchResult `json:"results"`

	// TotalResults is len(Results); zero distinguishes "no matches"
	// from a retrieval failure, which is reported as an error instead.
	TotalResults int `json:"total_results"`
}

// CollectionStats summarizes the indexed corpus.
type CollectionStats struct {
	// TotalChunks is the number of indexed chunks.
	TotalChunks int `json:"total_chunks"`

	// Subjects are the distinct subjects present.
	Subjects []string `json:"subjects"`

	// Modules are the distinct modules present.
	Modules []string `json:"modules"`

	// EmbeddingModel is the model backing the vectors.
	EmbeddingModel string `json:"embedding_model,omitempty"`
}

// IngestStats counts files and chunks for one subject or module.
type IngestStats struct {
	// Files is the number of files processed.
	Files int `json:"files"`

	// Chunks is the number of chunks produced.
	Chunks int `json:"chunks"`
}

// IngestReport aggregates a directory ingestion batch. Per-file
// failures are counted, never aborting the batch.
type IngestReport struct {
	// TotalFiles is the number of files attempted.
	TotalFiles int `json:"total_files"`

	// TotalChunks is the number of chunks stored.
	TotalChunks int `json:"total_chunks"`

	// FailedFiles is the number of files that could not be ingested.
	FailedFiles int `json:"failed_files"`

	// BySubject breaks the batch down per subject.
	BySubject map[string]*IngestStats `json:"by_subject"`

	// ByModule breaks the batch down per subject/module pair.
	ByModule map[string]*IngestStats `json:"by_module"`
}
