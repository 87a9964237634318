package driven

import "context"

// EmbeddingService converts text to fixed-length dense vectors.
// Embedding is a pure per-text function: batch boundaries must not
// affect output values.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local inference servers with an OpenAI-compatible API
type EmbeddingService interface {
	// Embed generates a vector embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, same length
	// and order as the input. Implementations process the input in
	// fixed-size batches to bound peak memory.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Ping validates the backend is reachable. Failure at startup is
	// fatal: there is no degraded mode without embeddings.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
