package services

import (
	"context"
	"fmt"
	"time"

	"github.com/athena-labs/athena-cli/internal/core/domain"
	"github.com/athena-labs/athena-cli/internal/core/ports/driven"
	"github.com/athena-labs/athena-cli/internal/core/ports/driving"
)

// --- Mock implementations shared by the service tests ---

// mockVectorStore implements driven.VectorStore over an in-memory map.
type mockVectorStore struct {
	records  []driven.VectorRecord
	byID     map[string]int
	queryErr error
	allErr   error
}

func newMockVectorStore() *mockVectorStore {
	return &mockVectorStore{byID: make(map[string]int)}
}

func (m *mockVectorStore) Upsert(_ context.Context, records []driven.VectorRecord) error {
	for _, r := range records {
		if idx, ok := m.byID[r.ID]; ok {
			m.records[idx] = r
			continue
		}
		m.byID[r.ID] = len(m.records)
		m.records = append(m.records, r)
	}
	return nil
}

// Query returns hits in insertion order with the stored embedding's
// first component as the distance, truncated to k. Tests control
// ordering by choosing those components.
func (m *mockVectorStore) Query(_ context.Context, _ []float32, k int, filters domain.SearchFilters) ([]driven.VectorHit, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	var hits []driven.VectorHit
	for _, r := range m.records {
		if !filters.Matches(r.Meta) {
			continue
		}
		distance := 0.0
		if len(r.Embedding) > 0 {
			distance = float64(r.Embedding[0])
		}
		hits = append(hits, driven.VectorHit{Document: r.Document, Meta: r.Meta, Distance: distance})
	}
	// Insertion order doubles as distance order in these tests.
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *mockVectorStore) Count(_ context.Context) (int, error) {
	return len(m.records), nil
}

func (m *mockVectorStore) All(_ context.Context) ([]string, []domain.ChunkMeta, error) {
	if m.allErr != nil {
		return nil, nil, m.allErr
	}
	documents := make([]string, len(m.records))
	metas := make([]domain.ChunkMeta, len(m.records))
	for i, r := range m.records {
		documents[i] = r.Document
		metas[i] = r.Meta
	}
	return documents, metas, nil
}

func (m *mockVectorStore) Clear(_ context.Context) error {
	m.records = nil
	m.byID = make(map[string]int)
	return nil
}

func (m *mockVectorStore) Close() error { return nil }

// mockLexical implements driven.LexicalIndex with scripted scores.
type mockLexical struct {
	documents []string
	metas     []domain.ChunkMeta
	scores    []float64
	built     int
}

func (m *mockLexical) Build(documents []string, metas []domain.ChunkMeta) {
	m.documents = documents
	m.metas = metas
	m.built++
}

func (m *mockLexical) Scores(_ []string) []float64 {
	if m.scores != nil {
		return m.scores
	}
	return make([]float64, len(m.documents))
}

func (m *mockLexical) Corpus() ([]string, []domain.ChunkMeta) {
	return m.documents, m.metas
}

func (m *mockLexical) Ready() bool { return len(m.documents) > 0 }

// mockEmbedding implements driven.EmbeddingService deterministically.
type mockEmbedding struct {
	embedErr error
}

func (m *mockEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return []float32{float32(len(text)), 1}, nil
}

func (m *mockEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i, text := range texts {
		result[i] = []float32{float32(len(text)), 1}
	}
	return result, nil
}

func (m *mockEmbedding) Dimensions() int { return 2 }

func (m *mockEmbedding) ModelName() string { return "mock-embed" }

func (m *mockEmbedding) Ping(_ context.Context) error { return nil }

func (m *mockEmbedding) Close() error { return nil }

// mockSource implements driven.DocumentSource with scripted pages.
type mockSource struct {
	files      []domain.FileInfo
	pages      map[string][]domain.PageRecord
	extractErr map[string]error
}

func (m *mockSource) ListFiles(_ string) ([]domain.FileInfo, error) {
	return m.files, nil
}

func (m *mockSource) ExtractPages(path string) ([]domain.PageRecord, error) {
	if err := m.extractErr[path]; err != nil {
		return nil, err
	}
	return m.pages[path], nil
}

func (m *mockSource) Structure(_ string) (map[string]map[string][]string, error) {
	return nil, nil
}

// mockCache implements driven.AnswerCache over a map.
type mockCache struct {
	entries map[string]domain.CacheEntry
	loadErr error
	saveErr error
	saves   int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]domain.CacheEntry)}
}

func (m *mockCache) Key(question string, contextIDs []string) string {
	key := question
	for _, id := range contextIDs {
		key += "|" + id
	}
	return key
}

func (m *mockCache) Load(key string) (*domain.CacheEntry, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	entry, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (m *mockCache) Save(key string, entry domain.CacheEntry) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries[key] = entry
	return nil
}

// mockLLM implements driven.LLMService with a scripted result.
type mockLLM struct {
	result  domain.GenerateResult
	err     error
	prompts []string
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ time.Duration) (domain.GenerateResult, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return domain.GenerateResult{}, m.err
	}
	return m.result, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }

func (m *mockLLM) Ping(_ context.Context) error { return nil }

func (m *mockLLM) Close() error { return nil }

// mockSearcher implements driving.SearchService with a scripted
// response, for query flow tests that do not exercise ranking.
type mockSearcher struct {
	response *domain.SearchResponse
	err      error
}

func (m *mockSearcher) Search(_ context.Context, query string, _ domain.SearchOptions) (*domain.SearchResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.response == nil {
		return &domain.SearchResponse{Query: query, Results: []domain.SearchResult{}}, nil
	}
	return m.response, nil
}

// chunkMeta builds metadata for one test chunk.
func chunkMeta(file string, page, chunk int, subject, module string) domain.ChunkMeta {
	return domain.ChunkMeta{
		FileName:    file,
		FilePath:    "/data/" + file,
		Subject:     subject,
		Module:      module,
		PageNumber:  page,
		ChunkNumber: chunk,
		TotalPages:  10,
	}
}

// record builds an indexed vector record whose query distance is the
// given value.
func record(id, document string, meta domain.ChunkMeta, distance float64) driven.VectorRecord {
	return driven.VectorRecord{
		ID:        id,
		Document:  document,
		Meta:      meta,
		Embedding: []float32{float32(distance), 0},
	}
}

// sequentialRecords creates n records with increasing distances.
func sequentialRecords(n int) []driven.VectorRecord {
	records := make([]driven.VectorRecord, n)
	for i := 0; i < n; i++ {
		meta := chunkMeta(fmt.Sprintf("doc%d.pdf", i), 1, 1, "Subject", "Module")
		records[i] = record(fmt.Sprintf("id%d", i), fmt.Sprintf("document %d text", i), meta, float64(i))
	}
	return records
}

// mockAsker implements driving.QueryService with per-question scripted
// failures, for batch-solving tests.
type mockAsker struct {
	asked   []string
	opts    []driving.AskOptions
	failOn  map[string]error
	answers map[string]string
}

func (m *mockAsker) Ask(_ context.Context, question string, opts driving.AskOptions) (*domain.QueryResult, error) {
	m.asked = append(m.asked, question)
	m.opts = append(m.opts, opts)
	if err := m.failOn[question]; err != nil {
		return nil, err
	}
	answer := m.answers[question]
	if answer == "" {
		answer = "answer to: " + question
	}
	return &domain.QueryResult{
		Question: question,
		Answer:   answer,
		Sources: []domain.SourceDocument{
			{FileName: "milling.pdf", PageNumber: 3, ChunkNumber: 1, Subject: "Machining", Module: "Milling"},
		},
		Mode:         domain.ModeLocal,
		TotalSources: 1,
	}, nil
}
