// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/athena-labs/athena-cli/internal/adapters/driven/embedding/ollama"
	geminillm "github.com/athena-labs/athena-cli/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/athena-labs/athena-cli/internal/adapters/driven/llm/ollama"
	"github.com/athena-labs/athena-cli/internal/core/domain"
	"github.com/athena-labs/athena-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation. Provider
// construction never fails the whole process: unreachable providers are
// dropped from the list with a warning, and an empty list degrades
// queries to retrieval-only answers.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	Providers        []driven.LLMProvider // Prioritized, most preferred first.
	Warnings         []string             // Non-fatal issues that dropped a provider.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	for _, p := range r.Providers {
		p.Service.Close()
	}
}

// Initialise builds the embedding service and the prioritized LLM
// provider list from settings. The local provider ranks first unless
// UseCloudByDefault is set and a cloud key is present.
func Initialise(settings domain.Settings) (*InitResult, error) {
	result := &InitResult{}

	embed, err := CreateAndValidateEmbeddingService(settings)
	if err != nil {
		return nil, err
	}
	result.EmbeddingService = embed

	local := createOllamaLLM(settings)
	cloud, cloudErr := createGeminiLLM(settings)

	candidates := []driven.LLMProvider{
		{Name: "ollama", Mode: domain.ModeLocal, Service: local},
	}
	if cloud != nil {
		candidates = append(candidates, driven.LLMProvider{
			Name: "gemini", Mode: domain.ModeCloud, Service: cloud,
		})
	} else if cloudErr != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("cloud provider unavailable: %v", cloudErr))
	}
	if settings.UseCloudByDefault {
		reverse(candidates)
	}

	for _, candidate := range candidates {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		err := candidate.Service.Ping(ctx)
		cancel()
		if err != nil {
			candidate.Service.Close()
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s unreachable, skipping: %v", candidate.Name, err))
			continue
		}
		result.Providers = append(result.Providers, candidate)
	}

	return result, nil
}

// CreateAndValidateEmbeddingService creates the embedding service and
// validates connectivity. Unlike LLM providers, a missing embedding
// backend is fatal: nothing can be indexed or searched without it.
func CreateAndValidateEmbeddingService(settings domain.Settings) (driven.EmbeddingService, error) {
	svc := ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:   settings.EmbeddingBaseURL,
		Model:     settings.EmbeddingModel,
		BatchSize: settings.EmbedBatchSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Is Ollama running?",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// createOllamaLLM creates the local Ollama LLM service.
func createOllamaLLM(settings domain.Settings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL:     settings.OllamaBaseURL,
		Model:       settings.OllamaModel,
		Timeout:     settings.LLMTimeout,
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
	})
}

// createGeminiLLM creates the cloud Gemini LLM service. Returns nil
// without error when no API key is configured.
func createGeminiLLM(settings domain.Settings) (driven.LLMService, error) {
	if settings.GeminiAPIKey == "" {
		return nil, nil
	}
	return geminillm.NewLLMService(geminillm.Config{
		APIKey:      settings.GeminiAPIKey,
		Model:       settings.GeminiModel,
		Timeout:     settings.LLMTimeout,
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
	})
}

func reverse(providers []driven.LLMProvider) {
	for i, j := 0, len(providers)-1; i < j; i, j = i+1, j-1 {
		providers[i], providers[j] = providers[j], providers[i]
	}
}
