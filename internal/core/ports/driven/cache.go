package driven

import "github.com/athena-labs/athena-cli/internal/core/domain"

// AnswerCache is a content-addressed store mapping (question, ordered
// context identifiers) to a previously computed answer. No TTL, no
// eviction; growth is bounded only by distinct question/context pairs.
//
// Read and write failures are non-fatal: callers log them and proceed
// as if the cache were empty.
type AnswerCache interface {
	// Key derives the deterministic, order-sensitive digest for a
	// question and its context identifiers.
	Key(question string, contextIDs []string) string

	// Load returns the entry for the key, or (nil, nil) when absent.
	// Failures are reported as *domain.CacheError.
	Load(key string) (*domain.CacheEntry, error)

	// Save writes the entry, unconditionally overwriting any existing
	// entry with the same key.
	Save(key string, entry domain.CacheEntry) error
}
