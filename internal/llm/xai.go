package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// XAIOptions configures an XAIChat.
type XAIOptions struct {
	BaseURL      string // OpenAI-compatible endpoint, e.g. https://api.x.ai/v1
	APIKey       string
	Model        string
	SystemPrompt string
	Temperature  *float32
	HTTPClient   *http.Client
}

// XAIChat talks to xAI (or any OpenAI-compatible API) through go-openai.
type XAIChat struct {
	client      *openai.Client
	model       string
	system      string
	temperature *float32
	history     []openai.ChatCompletionMessage
}

// NewXAIChat creates a chat with an empty conversation.
func NewXAIChat(opts XAIOptions) *XAIChat {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	slog.Debug("initializing chat client", "model", opts.Model, "base_url", cfg.BaseURL)
	return &XAIChat{
		client:      openai.NewClientWithConfig(cfg),
		model:       opts.Model,
		system:      opts.SystemPrompt,
		temperature: opts.Temperature,
	}
}

func (c *XAIChat) Send(ctx context.Context, message string) (string, error) {
	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message}

	msgs := make([]openai.ChatCompletionMessage, 0, len(c.history)+2)
	if c.system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: c.system})
	}
	msgs = append(msgs, c.history...)
	msgs = append(msgs, user)

	req := openai.ChatCompletionRequest{Model: c.model, Messages: msgs}
	if c.temperature != nil {
		req.Temperature = *c.temperature
	}

	slog.Debug("sending chat request", "model", c.model, "messages", len(msgs))
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Error("chat completion failed", "model", c.model, "error", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	reply := resp.Choices[0].Message
	slog.Debug("received chat response", "finish_reason", resp.Choices[0].FinishReason)

	c.history = append(c.history, user, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: reply.Content,
	})
	return reply.Content, nil
}

func (c *XAIChat) Reset() {
	c.history = nil
}

func (c *XAIChat) Model() string { return c.model }

// Len returns the number of messages in the conversation, excluding the system prompt.
func (c *XAIChat) Len() int { return len(c.history) }
