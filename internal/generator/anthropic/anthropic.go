// Package anthropic talks to the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"docqa/internal/domain"
	"docqa/internal/generator"
)

// Backend is a generator.Backend over the Messages API.
type Backend struct {
	client    sdk.Client
	maxTokens int64
}

// New returns a backend for apiKey. SDK retries are disabled; the
// generation client owns retry policy.
func New(apiKey, baseURL string, maxTokens int) *Backend {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Backend{client: sdk.NewClient(opts...), maxTokens: int64(maxTokens)}
}

func (b *Backend) Name() string { return "anthropic" }

func (b *Backend) Complete(ctx context.Context, model string, turns []domain.Turn) (string, error) {
	req := sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: b.maxTokens,
	}
	for _, t := range turns {
		if t.Role == domain.RoleSystem {
			req.System = append(req.System, sdk.TextBlockParam{Text: t.Content})
			continue
		}
		req.Messages = append(req.Messages, sdk.NewUserMessage(sdk.NewTextBlock(t.Content)))
	}

	rsp, err := b.client.Messages.New(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", generator.ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", generator.ErrUnavailable, err)
	}

	var sb strings.Builder
	for _, block := range rsp.Content {
		if text, ok := block.AsAny().(sdk.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: no text blocks in response", generator.ErrInvalidResponse)
	}
	return sb.String(), nil
}
