// Package openai talks to OpenAI-compatible chat completion endpoints
// such as Groq.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"docqa/internal/domain"
	"docqa/internal/generator"
)

// Backend is a generator.Backend over the chat completions API.
type Backend struct {
	client    *goopenai.Client
	maxTokens int
}

// New returns a backend for apiKey. An empty baseURL means the SDK default.
func New(apiKey, baseURL string, maxTokens int) *Backend {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Backend{client: goopenai.NewClientWithConfig(cfg), maxTokens: maxTokens}
}

func (b *Backend) Name() string { return "openai" }

func (b *Backend) Complete(ctx context.Context, model string, turns []domain.Turn) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model:     model,
		Messages:  make([]goopenai.ChatCompletionMessage, 0, len(turns)),
		MaxTokens: b.maxTokens,
	}
	for _, t := range turns {
		role := goopenai.ChatMessageRoleUser
		if t.Role == domain.RoleSystem {
			role = goopenai.ChatMessageRoleSystem
		}
		req.Messages = append(req.Messages, goopenai.ChatCompletionMessage{Role: role, Content: t.Content})
	}

	rsp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(rsp.Choices) == 0 || len(rsp.Choices[0].Message.Content) == 0 {
		return "", fmt.Errorf("%w: no choices in response", generator.ErrInvalidResponse)
	}
	return rsp.Choices[0].Message.Content, nil
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", generator.ErrTimeout, err)
	}
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusRequestTimeout {
		return fmt.Errorf("%w: %v", generator.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", generator.ErrUnavailable, err)
}
