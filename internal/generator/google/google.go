// Package google talks to the Gemini API.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"docqa/internal/domain"
	"docqa/internal/generator"
)

// Backend is a generator.Backend over Gemini content generation.
type Backend struct {
	client    *genai.Client
	maxTokens int32
}

// New dials the Gemini service. Close releases the connection.
func New(ctx context.Context, apiKey string, maxTokens int) (*Backend, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Backend{client: client, maxTokens: int32(maxTokens)}, nil
}

func (b *Backend) Name() string { return "google" }

func (b *Backend) Close() error { return b.client.Close() }

func (b *Backend) Complete(ctx context.Context, model string, turns []domain.Turn) (string, error) {
	m := b.client.GenerativeModel(model)
	if b.maxTokens > 0 {
		m.SetMaxOutputTokens(b.maxTokens)
	}
	system, parts := split(turns)
	if len(system) > 0 {
		m.SystemInstruction = &genai.Content{Parts: system}
	}

	rsp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", generator.ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", generator.ErrUnavailable, err)
	}
	if len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: no candidates in response", generator.ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

func split(turns []domain.Turn) (system, user []genai.Part) {
	for _, t := range turns {
		if t.Role == domain.RoleSystem {
			system = append(system, genai.Text(t.Content))
		} else {
			user = append(user, genai.Text(t.Content))
		}
	}
	return system, user
}
