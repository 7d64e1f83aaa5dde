// Package provider builds the generation client selected by configuration.
package provider

import (
	"context"
	"fmt"

	"github.com/kart-io/logger/core"

	"docqa/internal/config"
	"docqa/internal/generator"
	"docqa/internal/generator/anthropic"
	"docqa/internal/generator/google"
	"docqa/internal/generator/openai"
)

// New returns a client for cfg together with a release func. Without a
// credential the client has no backend and runs in fallback mode.
func New(ctx context.Context, cfg config.GeneratorConfig, log core.Logger) (*generator.Client, func() error, error) {
	opts := generator.Options{
		Models:        cfg.Models,
		Timeout:       cfg.Timeout(),
		Backoff:       cfg.Backoff(),
		FallbackChars: cfg.FallbackChars,
	}
	release := func() error { return nil }

	key := cfg.APIKey()
	if key == "" {
		log.Infow("no generation credential configured, using fallback", "env", cfg.APIKeyEnv)
		return generator.NewClient(nil, opts, log), release, nil
	}

	var backend generator.Backend
	switch cfg.Provider {
	case "openai":
		backend = openai.New(key, cfg.BaseURL, cfg.MaxTokens)
	case "anthropic":
		backend = anthropic.New(key, cfg.BaseURL, cfg.MaxTokens)
	case "google":
		g, err := google.New(ctx, key, cfg.MaxTokens)
		if err != nil {
			return nil, nil, err
		}
		backend, release = g, g.Close
	default:
		return nil, nil, fmt.Errorf("unknown generator provider: %q", cfg.Provider)
	}
	log.Infow("generation backend ready", "provider", cfg.Provider, "models", cfg.Models)
	return generator.NewClient(backend, opts, log), release, nil
}
