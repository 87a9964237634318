package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athena-labs/athena-cli/internal/core/domain"
	"github.com/athena-labs/athena-cli/internal/core/ports/driven"
)

func TestNormalizeSimilarities_Bounds(t *testing.T) {
	sims := normalizeSimilarities([]float64{0.1, 0.9, 0.5, 1.7})
	for _, s := range sims {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
	// Smallest distance maps to 1, largest to 0.
	assert.Equal(t, 1.0, sims[0])
	assert.Equal(t, 0.0, sims[3])
}

func TestNormalizeSimilarities_AllEqual(t *testing.T) {
	sims := normalizeSimilarities([]float64{0.4, 0.4, 0.4})
	assert.Equal(t, []float64{1, 1, 1}, sims)
}

func TestNormalizeSimilarities_NonFinite(t *testing.T) {
	sims := normalizeSimilarities([]float64{0.2, math.NaN(), math.Inf(1), 0.8})
	assert.Equal(t, 0.0, sims[1])
	assert.Equal(t, 0.0, sims[2])
	assert.Equal(t, 1.0, sims[0])
}

func TestNormalizeSimilarities_Empty(t *testing.T) {
	assert.Empty(t, normalizeSimilarities(nil))
}

func TestSearch_EmptyCorpus(t *testing.T) {
	svc := NewSearchService(newMockVectorStore(), &mockLexical{}, &mockEmbedding{})

	response, err := svc.Search(context.Background(), "anything", domain.SearchOptions{Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 0, response.TotalResults)
	assert.Empty(t, response.Results)
}

func TestSearch_EmptyQuery(t *testing.T) {
	store := newMockVectorStore()
	require.NoError(t, store.Upsert(context.Background(), sequentialRecords(3)))
	svc := NewSearchService(store, nil, &mockEmbedding{})

	response, err := svc.Search(context.Background(), "   ", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, response.TotalResults)
}

func TestSearch_PureSemanticOrder(t *testing.T) {
	ctx := context.Background()
	store := newMockVectorStore()
	require.NoError(t, store.Upsert(ctx, []driven.VectorRecord{
		record("a", "alpha text", chunkMeta("a.pdf", 1, 1, "S", "M"), 0.1),
		record("b", "beta text", chunkMeta("b.pdf", 1, 1, "S", "M"), 0.5),
		record("c", "gamma text", chunkMeta("c.pdf", 1, 1, "S", "M"), 0.9),
	}))

	// Lexical order deliberately inverted; weight 1.0 must ignore it.
	lexical := &mockLexical{
		documents: []string{"alpha text", "beta text", "gamma text"},
		metas: []domain.ChunkMeta{
			chunkMeta("a.pdf", 1, 1, "S", "M"),
			chunkMeta("b.pdf", 1, 1, "S", "M"),
			chunkMeta("c.pdf", 1, 1, "S", "M"),
		},
		scores: []float64{0.1, 0.5, 5.0},
	}

	svc := NewSearchService(store, lexical, &mockEmbedding{})
	response, err := svc.Search(ctx, "query", domain.SearchOptions{Limit: 3, SemanticWeight: 1.0})
	require.NoError(t, err)

	require.Equal(t, 3, response.TotalResults)
	assert.Equal(t, "a.pdf", response.Results[0].Meta.FileName)
	assert.Equal(t, "b.pdf", response.Results[1].Meta.FileName)
	assert.Equal(t, "c.pdf", response.Results[2].Meta.FileName)
}

func TestSearch_PureLexicalOrder(t *testing.T) {
	ctx := context.Background()
	store := newMockVectorStore()
	require.NoError(t, store.Upsert(ctx, []driven.VectorRecord{
		record("a", "alpha text", chunkMeta("a.pdf", 1, 1, "S", "M"), 0.1),
		record("b", "beta text", chunkMeta("b.pdf", 1, 1, "S", "M"), 0.5),
		record("c", "gamma text", chunkMeta("c.pdf", 1, 1, "S", "M"), 0.9),
	}))

	lexical := &mockLexical{
		documents: []string{"alpha text", "beta text", "gamma text"},
		metas: []domain.ChunkMeta{
			chunkMeta("a.pdf", 1, 1, "S", "M"),
			chunkMeta("b.pdf", 1, 1, "S", "M"),
			chunkMeta("c.pdf", 1, 1, "S", "M"),
		},
		scores: []float64{0.5, 5.0, 2.0},
	}

	svc := NewSearchService(store, lexical, &mockEmbedding{})
	response, err := svc.Search(ctx, "query", domain.SearchOptions{
		Limit: 3, SemanticWeight: 0.0, ForceWeight: true,
	})
	require.NoError(t, err)

	require.Equal(t, 3, response.TotalResults)
	assert.Equal(t, "b.pdf", response.Results[0].Meta.FileName)
	assert.Equal(t, "c.pdf", response.Results[1].Meta.FileName)
	assert.Equal(t, "a.pdf", response.Results[2].Meta.FileName)
}

func TestSearch_FusionMonotonicity(t *testing.T) {
	// Two candidates with identical lexical scores: the one with the
	// higher semantic score must rank at least as high when the
	// semantic weight exceeds 0.5.
	ctx := context.Background()
	store := newMockVectorStore()
	require.NoError(t, store.Upsert(ctx, []driven.VectorRecord{
		record("far", "far text", chunkMeta("far.pdf", 1, 1, "S", "M"), 0.9),
		record("near", "near text", chunkMeta("near.pdf", 1, 1, "S", "M"), 0.1),
	}))

	lexical := &mockLexical{
		documents: []string{"far text", "near text"},
		metas: []domain.ChunkMeta{
			chunkMeta("far.pdf", 1, 1, "S", "M"),
			chunkMeta("near.pdf", 1, 1, "S", "M"),
		},
		scores: []float64{3.0, 3.0},
	}

	svc := NewSearchService(store, lexical, &mockEmbedding{})
	response, err := svc.Search(ctx, "query", domain.SearchOptions{Limit: 2, SemanticWeight: 0.7})
	require.NoError(t, err)

	require.Equal(t, 2, response.TotalResults)
	assert.Equal(t, "near.pdf", response.Results[0].Meta.FileName)
}

func TestSearch_MergesBothSignals(t *testing.T) {
	ctx := context.Background()
	store := newMockVectorStore()
	require.NoError(t, store.Upsert(ctx, []driven.VectorRecord{
		record("a", "alpha text", chunkMeta("a.pdf", 2, 1, "S", "M"), 0.2),
		record("b", "beta text", chunkMeta("b.pdf", 3, 1, "S", "M"), 0.8),
	}))

	lexical := &mockLexical{
		documents: []string{"alpha text", "beta text"},
		metas: []domain.ChunkMeta{
			chunkMeta("a.pdf", 2, 1, "S", "M"),
			chunkMeta("b.pdf", 3, 1, "S", "M"),
		},
		scores: []float64{1.0, 4.0},
	}

	svc := NewSearchService(store, lexical, &mockEmbedding{})
	response, err := svc.Search(ctx, "query", domain.SearchOptions{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 2, response.TotalResults)

	for _, r := range response.Results {
		if r.Meta.FileName == "a.pdf" {
			assert.Equal(t, 1.0, r.SemanticScore)
			assert.Equal(t, 0.25, r.BM25Score)
		}
		if r.Meta.FileName == "b.pdf" {
			assert.Equal(t, 0.0, r.SemanticScore)
			assert.Equal(t, 1.0, r.BM25Score)
		}
	}
}

func TestSearch_OverFetchHardCutoff(t *testing.T) {
	// Limit 1 means each signal contributes at most 3 candidates. A
	// document beyond both windows never surfaces, no matter its raw
	// scores elsewhere in the corpus.
	ctx := context.Background()
	store := newMockVectorStore()
	records := sequentialRecords(10)
	require.NoError(t, store.Upsert(ctx, records))

	documents, metas, err := store.All(ctx)
	require.NoError(t, err)

	// doc9 sits at semantic rank 10; give it a middling lexical score
	// that keeps it outside the lexical top 3 as well.
	scores := []float64{9, 8, 7, 1, 1, 1, 1, 1, 1, 2}
	lexical := &mockLexical{documents: documents, metas: metas, scores: scores}

	svc := NewSearchService(store, lexical, &mockEmbedding{})
	response, err := svc.Search(ctx, "query", domain.SearchOptions{Limit: 1})
	require.NoError(t, err)

	require.Equal(t, 1, response.TotalResults)
	for _, r := range response.Results {
		assert.NotEqual(t, "doc9.pdf", r.Meta.FileName)
	}
}

func TestSearch_LexicalOnlyCandidateSurfaces(t *testing.T) {
	// A document outside the semantic window but inside the lexical
	// top set enters the fusion with semantic score 0.
	ctx := context.Background()
	store := newMockVectorStore()
	records := sequentialRecords(10)
	require.NoError(t, store.Upsert(ctx, records))

	documents, metas, err := store.All(ctx)
	require.NoError(t, err)

	// doc9 is semantic rank 10 (outside 3*1=3) but lexical rank 1.
	scores := []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 5}
	lexical := &mockLexical{documents: documents, metas: metas, scores: scores}

	svc := NewSearchService(store, lexical, &mockEmbedding{})
	response, err := svc.Search(ctx, "query", domain.SearchOptions{
		Limit: 1, SemanticWeight: 0.0, ForceWeight: true,
	})
	require.NoError(t, err)

	require.Equal(t, 1, response.TotalResults)
	assert.Equal(t, "doc9.pdf", response.Results[0].Meta.FileName)
}

func TestSearch_FiltersRestrictBothSignals(t *testing.T) {
	ctx := context.Background()
	store := newMockVectorStore()
	require.NoError(t, store.Upsert(ctx, []driven.VectorRecord{
		record("a", "alpha text", chunkMeta("a.pdf", 1, 1, "CAD", "M1"), 0.1),
		record("b", "beta text", chunkMeta("b.pdf", 1, 1, "CAM", "M2"), 0.2),
	}))

	lexical := &mockLexical{
		documents: []string{"alpha text", "beta text"},
		metas: []domain.ChunkMeta{
			chunkMeta("a.pdf", 1, 1, "CAD", "M1"),
			chunkMeta("b.pdf", 1, 1, "CAM", "M2"),
		},
		scores: []float64{1.0, 9.0},
	}

	svc := NewSearchService(store, lexical, &mockEmbedding{})
	response, err := svc.Search(ctx, "query", domain.SearchOptions{
		Limit:   5,
		Filters: domain.SearchFilters{Subject: "CAD"},
	})
	require.NoError(t, err)

	require.Equal(t, 1, response.TotalResults)
	assert.Equal(t, "a.pdf", response.Results[0].Meta.FileName)
}

func TestSearch_NoLexicalIndexDegradesToSemantic(t *testing.T) {
	ctx := context.Background()
	store := newMockVectorStore()
	require.NoError(t, store.Upsert(ctx, sequentialRecords(3)))

	svc := NewSearchService(store, nil, &mockEmbedding{})
	response, err := svc.Search(ctx, "query", domain.SearchOptions{Limit: 3})
	require.NoError(t, err)

	require.Equal(t, 3, response.TotalResults)
	for _, r := range response.Results {
		assert.Equal(t, 0.0, r.BM25Score)
	}
	assert.Equal(t, "doc0.pdf", response.Results[0].Meta.FileName)
}

func TestSearch_VectorStoreFailureSurfaces(t *testing.T) {
	store := newMockVectorStore()
	store.queryErr = &domain.RetrievalError{Op: "query", Err: assert.AnError}

	svc := NewSearchService(store, nil, &mockEmbedding{})
	_, err := svc.Search(context.Background(), "query", domain.SearchOptions{})
	require.Error(t, err)

	var retrievalErr *domain.RetrievalError
	assert.ErrorAs(t, err, &retrievalErr)
}

func TestSearch_TruncatesToLimit(t *testing.T) {
	ctx := context.Background()
	store := newMockVectorStore()
	require.NoError(t, store.Upsert(ctx, sequentialRecords(9)))

	svc := NewSearchService(store, nil, &mockEmbedding{})
	response, err := svc.Search(ctx, "query", domain.SearchOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, response.TotalResults)
}
