package driven

import "github.com/athena-labs/athena-cli/internal/core/domain"

// LexicalIndex is the in-memory BM25 index over the corpus. It is
// always rebuilt from scratch after an ingestion batch, never updated
// incrementally, and holds a read-only tokenized copy of the vector
// store's documents.
type LexicalIndex interface {
	// Build tokenizes the documents (lowercase, whitespace split) and
	// constructs the ranking structure. An empty corpus leaves the
	// index unready; lexical scoring then degrades to zero
	// contribution rather than failing queries.
	Build(documents []string, metas []domain.ChunkMeta)

	// Scores returns one raw BM25 score per indexed document, in
	// corpus order. Higher is more relevant; scores are unbounded
	// above.
	Scores(queryTokens []string) []float64

	// Corpus returns the indexed documents and their metadata, in
	// corpus order.
	Corpus() ([]string, []domain.ChunkMeta)

	// Ready reports whether the index holds a non-empty corpus.
	Ready() bool
}
