package driven

import (
	"context"
	"time"

	"github.com/athena-labs/athena-cli/internal/core/domain"
)

// LLMService produces answer text from a prompt. Every adapter maps
// its provider's native response shape into the single tagged
// domain.GenerateResult, decoupling the query flow from any SDK.
type LLMService interface {
	// Generate produces a completion for the prompt. Provider
	// failures are reported inside the result, not as an error
	// return; the error return is reserved for context cancellation.
	Generate(ctx context.Context, prompt string, timeout time.Duration) (domain.GenerateResult, error)

	// ModelName returns the name of the generation model.
	ModelName() string

	// Ping validates the provider is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// LLMProvider pairs a service with its selection metadata. Providers
// are constructed once at startup into a prioritized list; selection
// never raises.
type LLMProvider struct {
	// Name identifies the provider ("ollama", "gemini").
	Name string

	// Mode is domain.ModeLocal or domain.ModeCloud.
	Mode string

	// Service is the usable adapter.
	Service LLMService
}
