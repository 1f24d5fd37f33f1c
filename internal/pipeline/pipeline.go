// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline generates educational articles through a chain of LLM
// agents: a Researcher gathers notes, a Writer drafts, and a Verifier scores
// the draft. Rejected drafts go back to the Writer for a bounded number of
// revisions; only approved drafts are persisted.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/content-engine/internal/llm"
	"github.com/pdiddy/content-engine/pkg/types"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultApprovalThreshold = 80
	DefaultMaxRevisions      = 2
	DefaultAudience          = "general learners"
)

// ErrNotApproved is returned when the final draft still scores below the
// approval threshold after every revision. Nothing is persisted.
var ErrNotApproved = errors.New("draft not approved")

// ErrInvalidRequest marks requests rejected before any agent runs.
var ErrInvalidRequest = errors.New("invalid generation request")

// Request describes one piece of content to generate.
type Request struct {
	Topic       string             `json:"topic" validate:"required"`
	Category    string             `json:"category" validate:"required"`
	Subcategory string             `json:"subcategory,omitempty"`
	Kind        types.ArtifactKind `json:"kind,omitempty" validate:"omitempty,oneof=article lesson textbook"`
	Audience    string             `json:"audience,omitempty"`
}

// normalized trims fields and fills defaults, or reports why req is unusable.
func (req Request) normalized() (Request, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	req.Category = strings.TrimSpace(req.Category)
	req.Subcategory = strings.TrimSpace(req.Subcategory)
	req.Audience = strings.TrimSpace(req.Audience)

	if req.Topic == "" {
		return req, fmt.Errorf("%w: topic is required", ErrInvalidRequest)
	}
	if req.Category == "" {
		return req, fmt.Errorf("%w: category is required", ErrInvalidRequest)
	}
	if req.Kind == "" {
		req.Kind = types.KindArticle
	}
	if !req.Kind.Valid() {
		return req, fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, req.Kind)
	}
	if req.Audience == "" {
		req.Audience = DefaultAudience
	}
	return req, nil
}

// ArticleSaver persists approved articles.
type ArticleSaver interface {
	SaveArticle(ctx context.Context, a *types.Article) error
}

// Options configures a Pipeline.
type Options struct {
	// ApprovalThreshold is the minimum verifier score for approval.
	ApprovalThreshold int

	// MaxRevisions bounds the revise-and-reverify cycles after the first
	// verification.
	MaxRevisions int

	// MaxRetries is passed to every agent call.
	MaxRetries int

	Logger *zap.Logger
}

// Pipeline runs the Researcher, Writer and Verifier for one request at a time.
// It is safe for concurrent use when its backend and saver are.
type Pipeline struct {
	researcher   *Researcher
	writer       *Writer
	verifier     *Verifier
	saver        ArticleSaver
	maxRevisions int
	threshold    int
	logger       *zap.Logger

	now   func() time.Time
	newID func() string
}

// New builds a Pipeline. A nil saver skips persistence.
func New(backend llm.Backend, saver ArticleSaver, opts Options) *Pipeline {
	if opts.ApprovalThreshold <= 0 {
		opts.ApprovalThreshold = DefaultApprovalThreshold
	}
	if opts.MaxRevisions <= 0 {
		opts.MaxRevisions = DefaultMaxRevisions
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Pipeline{
		researcher:   NewResearcher(backend, opts.MaxRetries),
		writer:       NewWriter(backend, opts.MaxRetries),
		verifier:     NewVerifier(backend, opts.ApprovalThreshold, opts.MaxRetries),
		saver:        saver,
		maxRevisions: opts.MaxRevisions,
		threshold:    opts.ApprovalThreshold,
		logger:       opts.Logger.Named("pipeline"),
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
}

// Generate researches, drafts, and verifies content for req, revising up to
// MaxRevisions times. It returns the persisted article, or ErrNotApproved
// when the last verdict is still below the threshold.
func (p *Pipeline) Generate(ctx context.Context, req Request) (*types.Article, error) {
	req, err := req.normalized()
	if err != nil {
		return nil, err
	}
	log := p.logger.With(
		zap.String("topic", req.Topic),
		zap.String("category", req.Category),
		zap.String("kind", string(req.Kind)),
	)
	start := time.Now()

	log.Info("researching")
	research, err := p.researcher.Research(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("research: %w", err)
	}

	log.Info("writing draft", zap.Int("concepts", len(research.KeyConcepts)))
	draft, err := p.writer.Write(ctx, req, research)
	if err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	verdict, err := p.verifier.Verify(ctx, req, draft)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	log.Info("verified", zap.Int("score", verdict.Score), zap.Bool("approved", verdict.IsApproved))

	revisions := 0
	for !verdict.IsApproved && revisions < p.maxRevisions {
		revisions++
		log.Info("revising",
			zap.Int("revision", revisions),
			zap.Strings("required", verdict.RequiredRevisions),
		)
		draft, err = p.writer.Revise(ctx, req, draft, verdict)
		if err != nil {
			return nil, fmt.Errorf("revise %d: %w", revisions, err)
		}
		verdict, err = p.verifier.Verify(ctx, req, draft)
		if err != nil {
			return nil, fmt.Errorf("verify revision %d: %w", revisions, err)
		}
		log.Info("verified",
			zap.Int("revision", revisions),
			zap.Int("score", verdict.Score),
			zap.Bool("approved", verdict.IsApproved),
		)
	}

	if !verdict.IsApproved {
		log.Warn("draft rejected",
			zap.Int("score", verdict.Score),
			zap.Int("threshold", p.threshold),
			zap.Int("revisions", revisions),
		)
		return nil, fmt.Errorf("%w: score %d below %d after %d revisions",
			ErrNotApproved, verdict.Score, p.threshold, revisions)
	}

	article := p.assemble(req, research, draft, verdict, revisions)
	if p.saver != nil {
		if err := p.saver.SaveArticle(ctx, article); err != nil {
			return nil, fmt.Errorf("saving article: %w", err)
		}
	}

	log.Info("article generated",
		zap.String("id", article.ID),
		zap.Int("score", verdict.Score),
		zap.Int("revisions", revisions),
		zap.Duration("elapsed", time.Since(start)),
	)
	return article, nil
}

func (p *Pipeline) assemble(req Request, research *Research, draft *Draft, verdict *Verdict, revisions int) *types.Article {
	now := p.now()
	return &types.Article{
		ID:           p.newID(),
		Kind:         req.Kind,
		Title:        strings.TrimSpace(draft.Title),
		Description:  strings.TrimSpace(draft.Description),
		Category:     req.Category,
		Subcategory:  req.Subcategory,
		Topic:        req.Topic,
		Sections:     draft.Sections,
		KeyTakeaways: draft.KeyTakeaways,
		Sources:      research.Sources,
		Quality: types.Quality{
			Score:      verdict.Score,
			IsApproved: true,
			Revisions:  revisions,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
