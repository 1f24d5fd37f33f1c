// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"
)

// backoffBase controls the base duration for exponential backoff between
// attempts. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// SetBackoffBase replaces the backoff base and returns a function restoring
// the previous value. Intended for tests in other packages.
func SetBackoffBase(d time.Duration) (restore func()) {
	old := backoffBase
	backoffBase = d
	return func() { backoffBase = old }
}

const defaultMaxRetries = 3

// Agent is one prompt-templated call with a JSON contract.
type Agent struct {
	// Name identifies the agent in errors and logs.
	Name string

	// System is the system prompt.
	System string

	// Prompt renders the user prompt from the call data.
	Prompt *template.Template
}

// Call renders the prompt with data, sends it through backend and decodes
// the JSON reply into out. Transport and decode failures are retried.
func (a Agent) Call(ctx context.Context, backend Backend, data any, out any, maxRetries int) error {
	prompt, err := Render(a.Prompt, data)
	if err != nil {
		return fmt.Errorf("%s: rendering prompt: %w", a.Name, err)
	}
	if err := CallJSON(ctx, backend, a.System, prompt, out, maxRetries); err != nil {
		return fmt.Errorf("%s: %w", a.Name, err)
	}
	return nil
}

// Render executes t with data.
func Render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// CallJSON sends the prompt pair and decodes the JSON object in the reply
// into out, retrying with exponential backoff when the call fails or the
// reply does not decode. maxRetries <= 0 uses the default (3).
func CallJSON(ctx context.Context, backend Backend, systemPrompt, userPrompt string, out any, maxRetries int) error {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := backend.Generate(ctx, systemPrompt, userPrompt)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}

		if err := json.Unmarshal([]byte(ExtractJSON(text)), out); err != nil {
			lastErr = fmt.Errorf("parsing AI response JSON: %w", err)
			continue
		}
		return nil
	}
	return fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// ExtractJSON returns the JSON value embedded in a model reply. It strips
// Markdown code fences and any prose around the outermost object or array.
// Text with no JSON delimiters is returned trimmed.
func ExtractJSON(text string) string {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return s
	}
	return s[start : end+1]
}
