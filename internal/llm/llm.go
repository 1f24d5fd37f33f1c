// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps the hosted language models behind a single Backend
// interface so that every generation agent issues exactly one templated call
// and decodes a JSON reply. Gemini and OpenAI backends are provided; tests
// supply scripted mocks.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/content-engine/pkg/types"
)

// ErrEmptyResponse is returned when a provider answers without text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Backend sends one system and user prompt pair and returns the raw text
// of the reply. Implementations ask the provider for JSON output.
type Backend interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

// Generate calls f.
func (f BackendFunc) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f(ctx, systemPrompt, userPrompt)
}

const (
	defaultGeminiModel = "gemini-2.5-flash"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultTimeout     = 2 * time.Minute
)

// New builds the backend selected by cfg.Provider. An empty provider means
// Gemini.
func New(ctx context.Context, cfg types.AIConfig) (Backend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: no API key configured for provider %q", cfg.Provider)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	switch cfg.Provider {
	case types.ProviderGemini, "":
		if cfg.Model == "" {
			cfg.Model = defaultGeminiModel
		}
		return NewGeminiBackend(ctx, cfg)
	case types.ProviderOpenAI:
		if cfg.Model == "" {
			cfg.Model = defaultOpenAIModel
		}
		return NewOpenAIBackend(cfg), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
