package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates no LLM provider is configured.
	// Answer generation is disabled; search still works.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// reachable. Ingestion and semantic search are disabled.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// IngestionError marks an extraction or embedding failure for one
// file. Directory ingestion skips the file, continues the batch, and
// reports the failure count.
type IngestionError struct {
	// File is the path of the file that failed.
	File string

	// Err is the underlying cause.
	Err error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.File, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// RetrievalError marks an unavailable or corrupted index. It fails the
// single query; callers treat it as retryable once the store is
// re-initialized, and can distinguish it from an empty result set.
type RetrievalError struct {
	// Op is the operation that failed (e.g. "query", "rebuild").
	Op string

	// Err is the underlying cause.
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval %s: %v", e.Op, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// CacheError marks an answer cache read or write failure. It is always
// swallowed by the query flow after logging; the flow proceeds as if
// the cache were empty.
type CacheError struct {
	// Op is the operation that failed ("load" or "save").
	Op string

	// Key is the cache key involved.
	Key string

	// Err is the underlying cause.
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
