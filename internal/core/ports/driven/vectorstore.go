// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/athena-labs/athena-cli/internal/core/domain"
)

// VectorRecord is the persisted form of a chunk inside the vector
// store: chunk text, metadata, and the embedding vector.
type VectorRecord struct {
	// ID is the deterministic chunk identifier.
	ID string

	// Document is the chunk text.
	Document string

	// Meta is the chunk metadata.
	Meta domain.ChunkMeta

	// Embedding is the dense vector for the chunk text.
	Embedding []float32
}

// VectorHit is one nearest-neighbour result.
type VectorHit struct {
	// Document is the chunk text.
	Document string

	// Meta is the chunk metadata.
	Meta domain.ChunkMeta

	// Distance is the raw vector distance; smaller means more
	// similar. The ranker normalizes metric-specific scale away.
	Distance float64
}

// VectorStore is the persistent index of (id, vector, document,
// metadata) records supporting filtered similarity queries. It owns
// the indexed documents exclusively; the lexical index rebuilds its
// read-only copy from All.
type VectorStore interface {
	// Upsert inserts or replaces records by ID and persists them.
	Upsert(ctx context.Context, records []VectorRecord) error

	// Query returns up to k nearest neighbours to the embedding,
	// restricted to records matching the equality filters. A broken
	// or uninitialized store yields a *domain.RetrievalError.
	Query(ctx context.Context, embedding []float32, k int, filters domain.SearchFilters) ([]VectorHit, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// All returns every stored document with its metadata, in
	// insertion order. Used for lexical rebuilds and stats.
	All(ctx context.Context) ([]string, []domain.ChunkMeta, error)

	// Clear removes every record. Used for reindexing.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}
