// Package domain defines the core business entities for Athena.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A searchable unit of extracted PDF text
//   - ChunkMeta: Stored metadata locating a chunk in the library
//   - SearchResult: A ranked hit from the hybrid ranker
//   - QueryResult: The complete outcome of one question
//   - Settings: Explicit application configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
