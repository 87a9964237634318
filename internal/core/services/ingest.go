package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/athena-labs/athena-cli/internal/chunker"
	"github.com/athena-labs/athena-cli/internal/core/domain"
	"github.com/athena-labs/athena-cli/internal/core/ports/driven"
	"github.com/athena-labs/athena-cli/internal/core/ports/driving"
	"github.com/athena-labs/athena-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService pushes PDFs through extraction, chunking, embedding and
// storage, then rebuilds the lexical index. Ingestion is serialized by
// an exclusive lock; it never interleaves with another ingestion.
type IngestService struct {
	mu sync.Mutex

	source      driven.DocumentSource
	chunker     *chunker.Chunker
	embedder    driven.EmbeddingService
	vectorStore driven.VectorStore
	lexical     driven.LexicalIndex

	minChunkChars int
}

// NewIngestService creates an ingestion service. The lexical index is
// optional; when nil, only the vector store is maintained.
func NewIngestService(
	source driven.DocumentSource,
	ch *chunker.Chunker,
	embedder driven.EmbeddingService,
	vectorStore driven.VectorStore,
	lexical driven.LexicalIndex,
	minChunkChars int,
) *IngestService {
	return &IngestService{
		source:        source,
		chunker:       ch,
		embedder:      embedder,
		vectorStore:   vectorStore,
		lexical:       lexical,
		minChunkChars: minChunkChars,
	}
}

// IngestDirectory processes every PDF under dir. Failures are isolated
// per file and counted in the report; the lexical index is rebuilt once
// after the whole batch.
func (s *IngestService) IngestDirectory(ctx context.Context, dir string) (*domain.IngestReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Section("Ingestion")
	files, err := s.source.ListFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	logger.Info("Found %d PDF files in %s", len(files), dir)

	report := &domain.IngestReport{
		BySubject: make(map[string]*domain.IngestStats),
		ByModule:  make(map[string]*domain.IngestStats),
	}

	for _, file := range files {
		report.TotalFiles++
		chunks, err := s.ingestFile(ctx, file)
		if err != nil {
			report.FailedFiles++
			logger.Warn("Skipping %s: %v", file.FileName, err)
			continue
		}
		report.TotalChunks += chunks
		addStats(report.BySubject, file.Subject, chunks)
		addStats(report.ByModule, file.Subject+"/"+file.Module, chunks)
	}

	if err := s.rebuildLexical(ctx); err != nil {
		return report, err
	}

	logger.Info("Ingested %d/%d files, %d chunks, %d failures",
		report.TotalFiles-report.FailedFiles, report.TotalFiles,
		report.TotalChunks, report.FailedFiles)
	return report, nil
}

// IngestFile processes a single PDF. When rebuild is true, the lexical
// index is rebuilt afterwards; batch callers defer the rebuild to once
// per batch.
func (s *IngestService) IngestFile(ctx context.Context, file domain.FileInfo, rebuild bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chunks, err := s.ingestFile(ctx, file)
	if err != nil {
		return 0, err
	}
	if rebuild {
		if err := s.rebuildLexical(ctx); err != nil {
			return chunks, err
		}
	}
	return chunks, nil
}

// ingestFile runs extraction, chunking, embedding and upsert for one
// file. Caller holds the lock.
func (s *IngestService) ingestFile(ctx context.Context, file domain.FileInfo) (int, error) {
	logger.Debug("Ingesting %s (%s/%s)", file.FileName, file.Subject, file.Module)

	pages, err := s.source.ExtractPages(file.FullPath)
	if err != nil {
		return 0, &domain.IngestionError{File: file.FileName, Err: err}
	}

	chunks := s.chunkPages(file, pages)
	if len(chunks) == 0 {
		logger.Debug("%s produced no meaningful chunks", file.FileName)
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, &domain.IngestionError{File: file.FileName, Err: fmt.Errorf("embed: %w", err)}
	}

	records := make([]driven.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = driven.VectorRecord{
			ID:        c.ID(),
			Document:  c.Text,
			Meta:      c.Meta(),
			Embedding: embeddings[i],
		}
	}
	if err := s.vectorStore.Upsert(ctx, records); err != nil {
		return 0, &domain.IngestionError{File: file.FileName, Err: fmt.Errorf("upsert: %w", err)}
	}

	logger.Debug("%s: %d chunks stored", file.FileName, len(chunks))
	return len(chunks), nil
}

// chunkPages splits each page and keeps the meaningful chunks. Chunk
// numbers count every split segment, including the short ones that are
// dropped, so numbering stays stable regardless of the length filter.
func (s *IngestService) chunkPages(file domain.FileInfo, pages []domain.PageRecord) []domain.Chunk {
	var chunks []domain.Chunk
	for _, page := range pages {
		segments := s.chunker.Split(page.Text)
		for i, segment := range segments {
			if len(segment) <= s.minChunkChars {
				continue
			}
			chunks = append(chunks, domain.Chunk{
				Text:        segment,
				FileName:    page.FileName,
				FilePath:    page.FilePath,
				Subject:     file.Subject,
				Module:      file.Module,
				PageNumber:  page.PageNumber,
				ChunkNumber: i + 1,
				TotalChunks: len(segments),
				TotalPages:  page.TotalPages,
			})
		}
	}
	return chunks
}

// rebuildLexical reconstructs the BM25 index from the vector store's
// documents. The two indexes hold the same document set afterwards.
func (s *IngestService) rebuildLexical(ctx context.Context) error {
	if s.lexical == nil {
		return nil
	}
	documents, metas, err := s.vectorStore.All(ctx)
	if err != nil {
		return fmt.Errorf("rebuild lexical index: %w", err)
	}
	s.lexical.Build(documents, metas)
	logger.Debug("Lexical index rebuilt over %d documents", len(documents))
	return nil
}

// Stats reports corpus totals and the distinct subjects and modules.
func (s *IngestService) Stats(ctx context.Context) (*domain.CollectionStats, error) {
	count, err := s.vectorStore.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}

	_, metas, err := s.vectorStore.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect metadata: %w", err)
	}

	subjects := make(map[string]struct{})
	modules := make(map[string]struct{})
	for _, m := range metas {
		if m.Subject != "" {
			subjects[m.Subject] = struct{}{}
		}
		if m.Module != "" {
			modules[m.Module] = struct{}{}
		}
	}

	stats := &domain.CollectionStats{
		TotalChunks:    count,
		Subjects:       sortedKeys(subjects),
		Modules:        sortedKeys(modules),
		EmbeddingModel: s.embedder.ModelName(),
	}
	return stats, nil
}

// Clear resets the vector store and drops the lexical index.
func (s *IngestService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.vectorStore.Clear(ctx); err != nil {
		return fmt.Errorf("clear vector store: %w", err)
	}
	if s.lexical != nil {
		s.lexical.Build(nil, nil)
	}
	logger.Info("Index cleared")
	return nil
}

func addStats(m map[string]*domain.IngestStats, key string, chunks int) {
	stats, ok := m[key]
	if !ok {
		stats = &domain.IngestStats{}
		m[key] = stats
	}
	stats.Files++
	stats.Chunks += chunks
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
