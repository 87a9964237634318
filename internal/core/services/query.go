package services

import (
	"context"
	"fmt"

	"github.com/athena-labs/athena-cli/internal/core/domain"
	"github.com/athena-labs/athena-cli/internal/core/ports/driven"
	"github.com/athena-labs/athena-cli/internal/core/ports/driving"
	"github.com/athena-labs/athena-cli/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// noResultsAnswer is returned when retrieval finds nothing; no provider
// is invoked and nothing is cached.
const noResultsAnswer = "No relevant information found in your documents."

// QueryService runs the complete question flow: search, cache check,
// generate, cache save. Cache failures degrade to cache-miss behaviour
// and never abort the flow.
type QueryService struct {
	search    driving.SearchService
	cache     driven.AnswerCache
	providers []driven.LLMProvider
	prompts   *PromptBuilder
	settings  domain.Settings
}

// NewQueryService creates a query service over a prioritized provider
// list. An empty list degrades answers to retrieval-only output.
func NewQueryService(
	search driving.SearchService,
	cache driven.AnswerCache,
	providers []driven.LLMProvider,
	prompts *PromptBuilder,
	settings domain.Settings,
) *QueryService {
	return &QueryService{
		search:    search,
		cache:     cache,
		providers: providers,
		prompts:   prompts,
		settings:  settings,
	}
}

// Ask answers a question from the indexed corpus.
func (s *QueryService) Ask(ctx context.Context, question string, opts driving.AskOptions) (*domain.QueryResult, error) {
	logger.Section("Query")
	logger.Debug("Question: %q", question)

	limit := opts.Limit
	if limit <= 0 {
		limit = s.settings.SearchResults
	}

	response, err := s.search.Search(ctx, question, domain.SearchOptions{
		Limit:          limit,
		Filters:        opts.Filters,
		SemanticWeight: s.settings.SemanticWeight,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	if response.TotalResults == 0 {
		logger.Info("No relevant documents found")
		return &domain.QueryResult{
			Question: question,
			Answer:   noResultsAnswer,
			Sources:  []domain.SourceDocument{},
			Mode:     domain.ModeNone,
		}, nil
	}

	sources := toSourceDocuments(response.Results)

	key := s.cacheKey(question, sources)
	if cached := s.loadCached(key); cached != nil {
		logger.Info("Cache hit %s", key[:16])
		return &domain.QueryResult{
			Question:     question,
			Answer:       cached.Answer,
			Sources:      cachedSources(cached, sources),
			Cached:       true,
			Mode:         cached.Mode,
			TotalSources: len(sources),
		}, nil
	}

	provider, ok := s.selectProvider(opts.UseCloud)
	if !ok {
		logger.Warn("No LLM provider available, returning retrieval-only answer")
		return &domain.QueryResult{
			Question:     question,
			Answer:       AssembleContext(sources),
			Sources:      sources,
			Mode:         domain.ModeNone,
			TotalSources: len(sources),
		}, nil
	}

	logger.Info("Generating answer via %s (%s)", provider.Name, provider.Mode)
	prompt := s.prompts.Build(question, sources, provider.Mode)

	result, err := provider.Service.Generate(ctx, prompt, s.settings.LLMTimeout)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if result.Failed() {
		return nil, fmt.Errorf("generate via %s: %s", provider.Name, result.Err)
	}

	s.saveCached(key, domain.CacheEntry{
		Answer:  result.Text,
		Sources: sources,
		Mode:    provider.Mode,
	})

	return &domain.QueryResult{
		Question:     question,
		Answer:       result.Text,
		Sources:      sources,
		Mode:         provider.Mode,
		TotalSources: len(sources),
	}, nil
}

// selectProvider picks the first provider matching the requested mode,
// falling back to the head of the prioritized list.
func (s *QueryService) selectProvider(useCloud bool) (driven.LLMProvider, bool) {
	preferred := domain.ModeLocal
	if useCloud {
		preferred = domain.ModeCloud
	}
	for _, p := range s.providers {
		if p.Mode == preferred {
			return p, true
		}
	}
	if len(s.providers) > 0 {
		return s.providers[0], true
	}
	return driven.LLMProvider{}, false
}

func (s *QueryService) cacheKey(question string, sources []domain.SourceDocument) string {
	ids := make([]string, len(sources))
	for i, source := range sources {
		ids[i] = source.ContextID()
	}
	return s.cache.Key(question, ids)
}

// loadCached reads the cache entry, swallowing read failures.
func (s *QueryService) loadCached(key string) *domain.CacheEntry {
	entry, err := s.cache.Load(key)
	if err != nil {
		logger.Warn("Cache read failed, treating as miss: %v", err)
		return nil
	}
	return entry
}

// saveCached writes the cache entry, swallowing write failures.
func (s *QueryService) saveCached(key string, entry domain.CacheEntry) {
	if err := s.cache.Save(key, entry); err != nil {
		logger.Warn("Cache write failed: %v", err)
		return
	}
	logger.Debug("Saved to cache: %s", key[:16])
}

// cachedSources prefers the source details recorded with the entry and
// falls back to the freshly retrieved ones for old entries without them.
func cachedSources(entry *domain.CacheEntry, current []domain.SourceDocument) []domain.SourceDocument {
	if len(entry.Sources) == 0 {
		return current
	}
	return entry.Sources
}

func toSourceDocuments(results []domain.SearchResult) []domain.SourceDocument {
	sources := make([]domain.SourceDocument, len(results))
	for i, r := range results {
		sources[i] = domain.SourceDocument{
			Text:        r.Document,
			FileName:    r.Meta.FileName,
			FilePath:    r.Meta.FilePath,
			Subject:     r.Meta.Subject,
			Module:      r.Meta.Module,
			PageNumber:  r.Meta.PageNumber,
			ChunkNumber: r.Meta.ChunkNumber,
			Score:       r.Score,
		}
	}
	return sources
}
