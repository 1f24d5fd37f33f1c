// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/content-engine/internal/llm"
	"github.com/pdiddy/content-engine/pkg/types"
)

// Research is the Researcher's structured notes on a topic.
type Research struct {
	Summary        string   `json:"summary"`
	KeyConcepts    []string `json:"key_concepts"`
	Facts          []string `json:"facts"`
	Misconceptions []string `json:"misconceptions"`
	Outline        []string `json:"outline"`
	Sources        []string `json:"sources"`
}

// Draft is a Writer output awaiting verification.
type Draft struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Sections     []types.Section `json:"sections"`
	KeyTakeaways []string        `json:"key_takeaways"`
}

func (d *Draft) validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return errors.New("draft has no title")
	}
	if len(d.Sections) == 0 {
		return errors.New("draft has no sections")
	}
	return nil
}

// Verdict is the Verifier's judgement of a draft.
type Verdict struct {
	Score             int      `json:"score"`
	IsApproved        bool     `json:"is_approved"`
	Feedback          string   `json:"feedback"`
	RequiredRevisions []string `json:"required_revisions"`
}

// Researcher gathers source notes for a request.
type Researcher struct {
	backend    llm.Backend
	maxRetries int
	agent      llm.Agent
}

// NewResearcher returns a Researcher calling backend.
func NewResearcher(backend llm.Backend, maxRetries int) *Researcher {
	return &Researcher{
		backend:    backend,
		maxRetries: maxRetries,
		agent:      llm.Agent{Name: "researcher", System: researcherSystem, Prompt: researchPromptTmpl},
	}
}

// Research returns notes on req's topic.
func (r *Researcher) Research(ctx context.Context, req Request) (*Research, error) {
	var out Research
	if err := r.agent.Call(ctx, r.backend, req, &out, r.maxRetries); err != nil {
		return nil, err
	}
	return &out, nil
}

// Writer drafts content from research and revises drafts against a verdict.
type Writer struct {
	backend    llm.Backend
	maxRetries int
	write      llm.Agent
	revise     llm.Agent
}

// NewWriter returns a Writer calling backend.
func NewWriter(backend llm.Backend, maxRetries int) *Writer {
	return &Writer{
		backend:    backend,
		maxRetries: maxRetries,
		write:      llm.Agent{Name: "writer", System: writerSystem, Prompt: writePromptTmpl},
		revise:     llm.Agent{Name: "reviser", System: reviserSystem, Prompt: revisePromptTmpl},
	}
}

// Write produces the first draft.
func (w *Writer) Write(ctx context.Context, req Request, research *Research) (*Draft, error) {
	data := struct {
		Request  Request
		Research *Research
	}{req, research}

	var out Draft
	if err := w.write.Call(ctx, w.backend, data, &out, w.maxRetries); err != nil {
		return nil, err
	}
	if err := out.validate(); err != nil {
		return nil, fmt.Errorf("writer: %w", err)
	}
	return &out, nil
}

// Revise rewrites draft to address verdict.
func (w *Writer) Revise(ctx context.Context, req Request, draft *Draft, verdict *Verdict) (*Draft, error) {
	draftJSON, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("reviser: encoding draft: %w", err)
	}
	data := struct {
		Request   Request
		Verdict   *Verdict
		DraftJSON string
	}{req, verdict, string(draftJSON)}

	var out Draft
	if err := w.revise.Call(ctx, w.backend, data, &out, w.maxRetries); err != nil {
		return nil, err
	}
	if err := out.validate(); err != nil {
		return nil, fmt.Errorf("reviser: %w", err)
	}
	return &out, nil
}

// Verifier scores drafts against an approval threshold.
type Verifier struct {
	backend    llm.Backend
	maxRetries int
	threshold  int
	agent      llm.Agent
}

// NewVerifier returns a Verifier approving scores at or above threshold.
func NewVerifier(backend llm.Backend, threshold, maxRetries int) *Verifier {
	return &Verifier{
		backend:    backend,
		maxRetries: maxRetries,
		threshold:  threshold,
		agent:      llm.Agent{Name: "verifier", System: verifierSystem, Prompt: verifyPromptTmpl},
	}
}

// Verify scores draft. The returned verdict is normalized: the score lies in
// [0, 100], approval follows the threshold rather than the model's own flag,
// and a rejected draft always carries at least one required revision.
func (v *Verifier) Verify(ctx context.Context, req Request, draft *Draft) (*Verdict, error) {
	draftJSON, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("verifier: encoding draft: %w", err)
	}
	data := struct {
		Request   Request
		Threshold int
		DraftJSON string
	}{req, v.threshold, string(draftJSON)}

	var out Verdict
	if err := v.agent.Call(ctx, v.backend, data, &out, v.maxRetries); err != nil {
		return nil, err
	}
	normalize(&out, v.threshold)
	return &out, nil
}

func normalize(v *Verdict, threshold int) {
	v.Score = max(0, min(100, v.Score))
	v.IsApproved = v.Score >= threshold

	kept := v.RequiredRevisions[:0]
	for _, r := range v.RequiredRevisions {
		if r = strings.TrimSpace(r); r != "" {
			kept = append(kept, r)
		}
	}
	v.RequiredRevisions = kept

	if !v.IsApproved && len(v.RequiredRevisions) == 0 {
		fb := strings.TrimSpace(v.Feedback)
		if fb == "" {
			fb = fmt.Sprintf("Improve the draft to reach a quality score of at least %d.", threshold)
		}
		v.RequiredRevisions = []string{fb}
	}
}
