package domain

import "fmt"

// Answer modes recorded on cache entries and query results.
const (
	ModeLocal = "local"
	ModeCloud = "cloud"
	ModeNone  = "none"
)

// GenerateResult is the tagged result every LLM adapter must produce,
// regardless of the provider's native response shape. Exactly one of
// Text or Err is meaningful.
type GenerateResult struct {
	// Text is the generated answer text.
	Text string `json:"text"`

	// Err describes the failure when generation did not succeed.
	Err string `json:"error,omitempty"`

	// Meta carries provider-specific details (duration, token counts).
	Meta map[string]any `json:"meta,omitempty"`
}

// Failed reports whether the generation produced an error.
func (r GenerateResult) Failed() bool {
	return r.Err != ""
}

// SourceDocument is one retrieved chunk presented as answer context.
type SourceDocument struct {
	// Text is the chunk content.
	Text string `json:"text"`

	// FileName is the base name of the source file.
	FileName string `json:"file_name"`

	// FilePath is the full path of the source file.
	FilePath string `json:"file_path"`

	// Subject is the organizational subject.
	Subject string `json:"subject,omitempty"`

	// Module is the organizational module.
	Module string `json:"module,omitempty"`

	// PageNumber is the 1-based source page.
	PageNumber int `json:"page"`

	// ChunkNumber is the chunk position within the page.
	ChunkNumber int `json:"chunk_number"`

	// Score is the hybrid relevance score.
	Score float64 `json:"score"`
}

// ContextID identifies the source inside a cache key. Context order
// affects prompt framing, so the IDs are order-sensitive.
func (s SourceDocument) ContextID() string {
	return fmt.Sprintf("%s:%d:%d", s.FileName, s.PageNumber, s.ChunkNumber)
}

// CacheEntry is a previously computed answer, keyed by the hash of
// (question, ordered context identifiers). Entries are never mutated,
// only overwritten by a fresh save with the same key.
type CacheEntry struct {
	// Answer is the generated answer text.
	Answer string `json:"answer"`

	// Sources are the context documents the answer was built from.
	Sources []SourceDocument `json:"sources"`

	// Mode records which provider class produced the answer.
	Mode string `json:"mode"`
}

// QueryResult is the complete outcome of one question.
type QueryResult struct {
	// Question is the user's question.
	Question string `json:"question"`

	// Answer is the generated or cached answer.
	Answer string `json:"answer"`

	// Sources are the retrieved context documents.
	Sources []SourceDocument `json:"sources"`

	// Cached is true when the answer came from the cache.
	Cached bool `json:"cached"`

	// Mode records which provider class produced the answer.
	Mode string `json:"mode"`

	// TotalSources is len(Sources).
	TotalSources int `json:"total_sources"`
}
