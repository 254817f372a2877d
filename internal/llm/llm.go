package llm

import (
	"context"
	"fmt"

	"github.com/fmuoria/ezekia-report-agent/internal/config"
)

// Request is one single-turn completion
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Completer produces text for a prompt
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Close() error
}

// Error carries the provider's message for a failed completion
type Error struct {
	Provider string
	Message  string
	Err      error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// New picks the backend named by cfg.CompletionProvider. apiKey is the
// completion key and is ignored by providers that authenticate otherwise.
func New(ctx context.Context, cfg *config.Config, apiKey string) (Completer, error) {
	switch cfg.CompletionProvider {
	case "", config.ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("%w: %s", config.ErrMissingCredential, config.KeyCompletion)
		}
		return NewOpenAIClient(apiKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), nil
	case config.ProviderVertexAI:
		return NewVertexAIClient(ctx, cfg.GoogleCloudProject, cfg.GoogleCloudLocation, cfg.GoogleCredentialsPath)
	default:
		return nil, fmt.Errorf("unknown completion provider: %q", cfg.CompletionProvider)
	}
}
