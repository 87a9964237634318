package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/athena-labs/athena-cli/internal/core/domain"
	"github.com/athena-labs/athena-cli/internal/core/ports/driven"
	"github.com/athena-labs/athena-cli/internal/core/ports/driving"
	"github.com/athena-labs/athena-cli/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// overFetchFactor is how many times the requested count each signal
// retrieves before fusion. Over-fetching keeps a candidate that ranks
// highly on one signal but poorly on the other inside the fusion
// window.
const overFetchFactor = 3

// candidate accumulates both signal scores for one chunk during fusion.
type candidate struct {
	document string
	meta     domain.ChunkMeta
	semantic float64
	bm25     float64
	// rank is the first-seen position, semantic hits first. It breaks
	// hybrid-score ties deterministically.
	rank int
}

// SearchService runs the hybrid ranking algorithm: semantic and lexical
// retrieval, per-batch score normalization, weighted fusion.
type SearchService struct {
	vectorStore driven.VectorStore
	lexical     driven.LexicalIndex
	embedder    driven.EmbeddingService
}

// NewSearchService creates a search service. The lexical index is
// optional; when nil, ranking reduces to pure semantic order.
func NewSearchService(
	vectorStore driven.VectorStore,
	lexical driven.LexicalIndex,
	embedder driven.EmbeddingService,
) *SearchService {
	return &SearchService{
		vectorStore: vectorStore,
		lexical:     lexical,
		embedder:    embedder,
	}
}

// Search embeds the query, fetches over-sized candidate sets from both
// indexes, normalizes each signal over its own batch, fuses them with
// the semantic weight, and returns the top results.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) (*domain.SearchResponse, error) {
	logger.Section("Hybrid Search")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	response := &domain.SearchResponse{Query: query, Results: []domain.SearchResult{}}
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return response, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchResults
	}
	weight := opts.Weight()
	overFetch := limit * overFetchFactor
	logger.Debug("Limit: %d, over-fetch: %d, semantic weight: %.2f", limit, overFetch, weight)

	semantic, err := s.semanticCandidates(ctx, query, overFetch, opts.Filters)
	if err != nil {
		return nil, err
	}
	logger.Debug("Semantic candidates: %d", len(semantic))

	lexical := s.lexicalCandidates(query, overFetch, opts.Filters)
	logger.Debug("Lexical candidates: %d", len(lexical))

	fused := fuse(semantic, lexical, weight)
	if len(fused) > limit {
		fused = fused[:limit]
	}

	for _, c := range fused {
		response.Results = append(response.Results, domain.SearchResult{
			Document:      c.document,
			Meta:          c.meta,
			Score:         weight*c.semantic + (1-weight)*c.bm25,
			SemanticScore: c.semantic,
			BM25Score:     c.bm25,
		})
	}
	response.TotalResults = len(response.Results)
	logger.Info("Search %q: %d results", query, response.TotalResults)
	return response, nil
}

// semanticCandidates embeds the query and returns the nearest chunks
// with distances normalized to similarities over this batch.
func (s *SearchService) semanticCandidates(
	ctx context.Context, query string, k int, filters domain.SearchFilters,
) ([]candidate, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	hits, err := s.vectorStore.Query(ctx, embedding, k, filters)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	distances := make([]float64, len(hits))
	for i, hit := range hits {
		distances[i] = hit.Distance
	}
	similarities := normalizeSimilarities(distances)

	candidates := make([]candidate, len(hits))
	for i, hit := range hits {
		candidates[i] = candidate{
			document: hit.Document,
			meta:     hit.Meta,
			semantic: similarities[i],
		}
	}
	return candidates, nil
}

// normalizeSimilarities converts raw distances to similarities in [0,1]
// via min-max inversion over this batch only, not a global constant.
// When every distance is equal the whole batch maps to 1.0. Non-finite
// distances map to 0.
func normalizeSimilarities(distances []float64) []float64 {
	similarities := make([]float64, len(distances))
	if len(distances) == 0 {
		return similarities
	}

	minD, maxD := math.Inf(1), math.Inf(-1)
	finite := false
	for _, d := range distances {
		if !isFinite(d) {
			continue
		}
		finite = true
		minD = math.Min(minD, d)
		maxD = math.Max(maxD, d)
	}
	if !finite {
		return similarities
	}

	span := maxD - minD
	for i, d := range distances {
		if !isFinite(d) {
			continue
		}
		if span == 0 {
			similarities[i] = 1.0
			continue
		}
		sim := 1 - (d-minD)/span
		similarities[i] = clamp01(sim)
	}
	return similarities
}

// lexicalCandidates scores the whole corpus against the query tokens,
// applies the filters, keeps the top k by raw BM25 score, and
// max-normalizes that filtered set. BM25 scores are lower-bounded near
// zero and unbounded above, so min-max would distort small scores.
func (s *SearchService) lexicalCandidates(query string, k int, filters domain.SearchFilters) []candidate {
	if s.lexical == nil || !s.lexical.Ready() {
		logger.Debug("Lexical index absent, zero contribution")
		return nil
	}

	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return nil
	}

	scores := s.lexical.Scores(tokens)
	documents, metas := s.lexical.Corpus()

	var candidates []candidate
	for i, score := range scores {
		if score <= 0 || !filters.Matches(metas[i]) {
			continue
		}
		candidates = append(candidates, candidate{
			document: documents[i],
			meta:     metas[i],
			bm25:     score,
		})
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].bm25 > candidates[j].bm25
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	maxScore := candidates[0].bm25
	for i := range candidates {
		candidates[i].bm25 /= maxScore
	}
	return candidates
}

// fuse merges the two candidate sets by chunk identity. A candidate
// present in both keeps both scores; a candidate in only one set has
// the other score at zero. Results come back sorted by hybrid score
// descending, ties broken by first-seen order (semantic hits first).
func fuse(semantic, lexical []candidate, weight float64) []candidate {
	merged := make(map[string]*candidate, len(semantic)+len(lexical))
	order := make([]string, 0, len(semantic)+len(lexical))

	for _, c := range semantic {
		key := c.meta.FusionKey()
		if _, ok := merged[key]; ok {
			continue
		}
		c.rank = len(order)
		merged[key] = &c
		order = append(order, key)
	}
	for _, c := range lexical {
		key := c.meta.FusionKey()
		if existing, ok := merged[key]; ok {
			existing.bm25 = c.bm25
			continue
		}
		c.rank = len(order)
		merged[key] = &c
		order = append(order, key)
	}

	fused := make([]candidate, 0, len(order))
	for _, key := range order {
		fused = append(fused, *merged[key])
	}

	sort.SliceStable(fused, func(i, j int) bool {
		hi := weight*fused[i].semantic + (1-weight)*fused[i].bm25
		hj := weight*fused[j].semantic + (1-weight)*fused[j].bm25
		if hi != hj {
			return hi > hj
		}
		return fused[i].rank < fused[j].rank
	})
	return fused
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
