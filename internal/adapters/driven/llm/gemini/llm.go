// Package gemini provides the cloud LLM service adapter using the
// Google Generative Language API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/athena-labs/athena-cli/internal/core/domain"
	"github.com/athena-labs/athena-cli/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-pro"
	DefaultTimeout = 240 * time.Second

	// defaultRequestsPerMinute matches the free-tier quota for the
	// pro models. Bursting past it returns 429s that count against
	// the daily quota anyway.
	defaultRequestsPerMinute = 2
)

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Google API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://generativelanguage.googleapis.com).
	BaseURL string

	// Model is the generation model to use (default: gemini-1.5-pro).
	Model string

	// Timeout is the default request timeout (default: 240s).
	Timeout time.Duration

	// MaxTokens caps the generated answer length.
	MaxTokens int

	// Temperature controls generation randomness.
	Temperature float64

	// RequestsPerMinute throttles API calls (default: 2).
	RequestsPerMinute int
}

// LLMService provides text generation using the Gemini API.
type LLMService struct {
	client      *http.Client
	limiter     *rate.Limiter
	baseURL     string
	apiKey      string
	model       string
	timeout     time.Duration
	maxTokens   int
	temperature float64
}

// generateContentRequest is the generateContent request format.
type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

// generateContentResponse is the generateContent response format.
type generateContentResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRequestsPerMinute
	}

	return &LLMService{
		client:      &http.Client{},
		limiter:     rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Generate produces a completion for the prompt. Provider failures are
// reported inside the returned result; the error return is reserved for
// context cancellation.
func (s *LLMService) Generate(ctx context.Context, prompt string, timeout time.Duration) (domain.GenerateResult, error) {
	if timeout == 0 {
		timeout = s.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	text, usage, err := s.generateContent(ctx, prompt)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return domain.GenerateResult{}, ctx.Err()
		}
		return domain.GenerateResult{
			Err: err.Error(),
			Meta: map[string]any{
				"provider": "gemini",
				"model":    s.model,
			},
		}, nil
	}

	return domain.GenerateResult{
		Text: strings.TrimSpace(text),
		Meta: map[string]any{
			"provider":      "gemini",
			"model":         s.model,
			"duration_ms":   elapsed.Milliseconds(),
			"prompt_tokens": usage.PromptTokenCount,
			"output_tokens": usage.CandidatesTokenCount,
		},
	}, nil
}

type usageMetadata struct {
	PromptTokenCount     int
	CandidatesTokenCount int
}

func (s *LLMService) generateContent(ctx context.Context, prompt string) (string, usageMetadata, error) {
	var usage usageMetadata

	if err := s.limiter.Wait(ctx); err != nil {
		return "", usage, fmt.Errorf("rate limit wait: %w", err)
	}

	reqBody := generateContentRequest{
		Contents: []content{
			{Parts: []part{{Text: prompt}}},
		},
	}
	if s.maxTokens > 0 || s.temperature > 0 {
		reqBody.GenerationConfig = &generationConfig{
			MaxOutputTokens: s.maxTokens,
			Temperature:     s.temperature,
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", usage, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", s.baseURL, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", usage, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", usage, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", usage, fmt.Errorf("gemini error (status %d): failed to read response", resp.StatusCode)
		}
		var errResp generateContentResponse
		if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && errResp.Error != nil {
			return "", usage, fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return "", usage, fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", usage, fmt.Errorf("decode response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", usage, fmt.Errorf("gemini returned no candidates")
	}

	usage.PromptTokenCount = genResp.UsageMetadata.PromptTokenCount
	usage.CandidatesTokenCount = genResp.UsageMetadata.CandidatesTokenCount

	var sb strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), usage, nil
}

// ModelName returns the name of the generation model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models. The call is free and
// does not consume generation quota.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1beta/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("gemini: failed to create ping request: %w", err)
	}
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gemini: API returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
