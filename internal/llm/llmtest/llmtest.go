// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llmtest provides a scripted llm.Backend for agent tests.
package llmtest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Backend replies to prompts by routing on a marker substring of the system
// prompt. Each route holds a queue of replies; the last reply repeats once
// the queue is drained.
type Backend struct {
	mu      sync.Mutex
	order   []string
	replies map[string][]string
	errs    map[string]error
	calls   map[string]int
	prompts map[string][]string
}

// New returns an empty scripted backend.
func New() *Backend {
	return &Backend{
		replies: make(map[string][]string),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
		prompts: make(map[string][]string),
	}
}

// On queues raw text replies for system prompts containing marker.
func (b *Backend) On(marker string, replies ...string) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.replies[marker]; !ok {
		b.order = append(b.order, marker)
	}
	b.replies[marker] = append(b.replies[marker], replies...)
	return b
}

// OnJSON queues values marshaled as JSON replies.
func (b *Backend) OnJSON(marker string, values ...any) *Backend {
	replies := make([]string, len(values))
	for i, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			panic(fmt.Sprintf("llmtest: marshal reply: %v", err))
		}
		replies[i] = string(data)
	}
	return b.On(marker, replies...)
}

// Fail makes every call routed to marker return err.
func (b *Backend) Fail(marker string, err error) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.replies[marker]; !ok {
		b.order = append(b.order, marker)
		b.replies[marker] = nil
	}
	b.errs[marker] = err
	return b
}

// Calls returns how many calls were routed to marker.
func (b *Backend) Calls(marker string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[marker]
}

// Prompts returns the user prompts routed to marker, in call order.
func (b *Backend) Prompts(marker string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.prompts[marker]...)
}

// Generate implements llm.Backend.
func (b *Backend) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, marker := range b.order {
		if !strings.Contains(systemPrompt, marker) {
			continue
		}
		n := b.calls[marker]
		b.calls[marker] = n + 1
		b.prompts[marker] = append(b.prompts[marker], userPrompt)

		if err := b.errs[marker]; err != nil {
			return "", err
		}
		queue := b.replies[marker]
		if len(queue) == 0 {
			return "", fmt.Errorf("llmtest: no reply scripted for %q", marker)
		}
		if n >= len(queue) {
			n = len(queue) - 1
		}
		return queue[n], nil
	}
	return "", fmt.Errorf("llmtest: no route for system prompt %.60q", systemPrompt)
}
