package domain

import (
	"fmt"
	"path/filepath"
)

// PageRecord is one page of extracted text from a source document.
// Produced by the PDF extractor before chunking.
type PageRecord struct {
	// Text is the cleaned page text.
	Text string

	// PageNumber is the 1-based page index.
	PageNumber int

	// FileName is the base name of the source file.
	FileName string

	// FilePath is the full path of the source file.
	FilePath string

	// TotalPages is the page count of the source document.
	TotalPages int
}

// FileInfo describes one PDF discovered under the data directory.
// Subject and Module come from the first two path segments relative
// to the data directory.
type FileInfo struct {
	// FullPath is the absolute or data-dir-relative path of the file.
	FullPath string

	// FileName is the base name of the file.
	FileName string

	// Subject is the top-level folder under the data directory.
	Subject string

	// Module is the second-level folder under the data directory.
	Module string

	// RelativePath is the path relative to the data directory.
	RelativePath string
}

// Chunk is a bounded, semantically coherent segment of a document page.
// Chunks are immutable once stored and identified by a deterministic ID,
// so re-ingesting an unchanged file reproduces the same IDs.
type Chunk struct {
	// Text is the chunk content.
	Text string

	// FileName is the base name of the source file.
	FileName string

	// FilePath is the full path of the source file.
	FilePath string

	// Subject is the organizational subject of the source file.
	Subject string

	// Module is the organizational module of the source file.
	Module string

	// PageNumber is the 1-based page the chunk came from.
	PageNumber int

	// ChunkNumber is the 1-based position of the chunk within its page.
	ChunkNumber int

	// TotalChunks is how many chunks the page produced.
	TotalChunks int

	// TotalPages is the page count of the source document.
	TotalPages int
}

// ID derives the deterministic chunk identifier from
// (subject, module, file basename, page, chunk). It avoids path
// separators so it is safe as a storage key.
func (c Chunk) ID() string {
	subject := c.Subject
	if subject == "" {
		subject = "unknown"
	}
	module := c.Module
	if module == "" {
		module = "unknown"
	}
	return fmt.Sprintf("%s|%s|%s|p%d|c%d",
		subject, module, filepath.Base(c.FileName), c.PageNumber, c.ChunkNumber)
}

// Meta returns the chunk's metadata without the text payload.
func (c Chunk) Meta() ChunkMeta {
	return ChunkMeta{
		FileName:    c.FileName,
		FilePath:    c.FilePath,
		Subject:     c.Subject,
		Module:      c.Module,
		PageNumber:  c.PageNumber,
		ChunkNumber: c.ChunkNumber,
		TotalPages:  c.TotalPages,
	}
}

// ChunkMeta is the metadata persisted alongside an indexed chunk.
// The lexical index holds a read-only copy of these, rebuilt on demand
// from the vector store.
type ChunkMeta struct {
	// FileName is the base name of the source file.
	FileName string `json:"file_name"`

	// FilePath is the full path of the source file.
	FilePath string `json:"file_path"`

	// Subject is the organizational subject.
	Subject string `json:"subject"`

	// Module is the organizational module.
	Module string `json:"module"`

	// PageNumber is the 1-based source page.
	PageNumber int `json:"page_number"`

	// ChunkNumber is the 1-based chunk position within the page.
	ChunkNumber int `json:"chunk_number"`

	// TotalPages is the page count of the source document.
	TotalPages int `json:"total_pages"`
}

// FusionKey identifies a chunk across the semantic and lexical result
// sets so that candidates from both can be merged.
func (m ChunkMeta) FusionKey() string {
	name := m.FileName
	if name == "" {
		name = "unk"
	}
	return fmt.Sprintf("%s_p%d_c%d", name, m.PageNumber, m.ChunkNumber)
}
