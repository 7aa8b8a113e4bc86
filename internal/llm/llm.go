// Package llm provides the language-model collaborator that turns design
// requests into patch text.
package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/rcliao/cad-agent/internal/config"
)

// ErrNoChoices is returned when the model answers without any completion.
var ErrNoChoices = errors.New("model returned no choices")

// Chat is a stateful conversation with a language model.
type Chat interface {
	// Send appends message to the conversation and returns the reply.
	// On error the conversation is left as it was.
	Send(ctx context.Context, message string) (string, error)

	// Reset discards the conversation, keeping the system prompt.
	Reset()

	// Model names the backing model.
	Model() string
}

// NewFromConfig creates an xAI chat from configuration.
// It fails with config.ErrMissingAPIKey when no key is set.
func NewFromConfig(cfg *config.Config, systemPrompt string) (*XAIChat, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewXAIChat(XAIOptions{
		BaseURL:      cfg.LLM.BaseURL,
		APIKey:       cfg.LLM.APIKey,
		Model:        cfg.LLM.Model,
		SystemPrompt: systemPrompt,
		Temperature:  cfg.LLM.Temperature,
		HTTPClient:   &http.Client{Timeout: cfg.Timeout()},
	}), nil
}
