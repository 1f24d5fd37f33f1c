// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resources executes scheduler plans: each planned task becomes one
// article generation, and approved articles are recorded as resources of
// their catalog pair.
package resources

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/content-engine/internal/pipeline"
	"github.com/pdiddy/content-engine/internal/scheduler"
	"github.com/pdiddy/content-engine/pkg/types"
)

// ErrBusy is returned by Run while another run is in progress.
var ErrBusy = errors.New("resource run already in progress")

// Generator produces one approved article.
type Generator interface {
	Generate(ctx context.Context, req pipeline.Request) (*types.Article, error)
}

// Recorder stores resource links and moves generation markers.
type Recorder interface {
	RecordResource(ctx context.Context, r *types.Resource) error
}

// Planner returns the tasks for a refresh page.
type Planner interface {
	Plan(ctx context.Context, batch int) (scheduler.Result, error)
}

// Summary reports the outcome of one run.
type Summary struct {
	Batch     int      `json:"batch"`
	NextBatch int      `json:"next_batch"`
	Planned   int      `json:"planned"`
	Generated int      `json:"generated"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// Runner executes planned generation tasks one at a time.
type Runner struct {
	planner   Planner
	generator Generator
	recorder  Recorder
	logger    *zap.Logger

	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

// NewRunner wires a Runner. A nil logger discards logs.
func NewRunner(planner Planner, generator Generator, recorder Recorder, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		planner:   planner,
		generator: generator,
		recorder:  recorder,
		logger:    logger.Named("resources"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Run plans refresh page batch and generates every task in order. Rejected
// drafts count as skipped and other task errors as failed; neither stops the
// run. Only planning failures and context cancellation return an error.
func (r *Runner) Run(ctx context.Context, batch int) (Summary, error) {
	if !r.mu.TryLock() {
		return Summary{}, ErrBusy
	}
	defer r.mu.Unlock()

	plan, err := r.planner.Plan(ctx, batch)
	if err != nil {
		return Summary{}, fmt.Errorf("planning: %w", err)
	}
	sum := Summary{
		Batch:     plan.Batch,
		NextBatch: plan.NextBatch(),
		Planned:   len(plan.Tasks),
	}
	r.logger.Info("resource run planned",
		zap.Int("batch", plan.Batch),
		zap.Int("tasks", len(plan.Tasks)),
		zap.Int("gaps", plan.Gaps),
		zap.Int("refresh_candidates", plan.RefreshCandidates),
	)

	for _, task := range plan.Tasks {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		log := r.logger.With(
			zap.String("category", task.Category),
			zap.String("subcategory", task.Subcategory),
			zap.String("reason", string(task.Reason)),
		)

		err := r.runTask(ctx, task)
		switch {
		case err == nil:
			sum.Generated++
		case errors.Is(err, pipeline.ErrNotApproved):
			sum.Skipped++
			log.Info("task skipped", zap.Error(err))
		case ctx.Err() != nil:
			return sum, ctx.Err()
		default:
			sum.Failed++
			sum.Errors = append(sum.Errors, fmt.Sprintf("%s/%s: %v", task.Category, task.Subcategory, err))
			log.Error("task failed", zap.Error(err))
		}
	}

	r.logger.Info("resource run finished",
		zap.Int("generated", sum.Generated),
		zap.Int("skipped", sum.Skipped),
		zap.Int("failed", sum.Failed),
	)
	return sum, nil
}

func (r *Runner) runTask(ctx context.Context, task types.GenerationTask) error {
	article, err := r.generator.Generate(ctx, pipeline.Request{
		Topic:       task.Subcategory,
		Category:    task.Category,
		Subcategory: task.Subcategory,
		Kind:        types.KindArticle,
	})
	if err != nil {
		return err
	}
	return r.recorder.RecordResource(ctx, &types.Resource{
		ID:          r.newID(),
		Category:    task.Category,
		Subcategory: task.Subcategory,
		ArticleID:   article.ID,
		Title:       article.Title,
		CreatedAt:   r.now(),
	})
}

// Loop runs immediately and then every interval until ctx is done, starting
// each run at the page the previous one suggested. Run errors are logged and
// the page is left unchanged. Loop returns nil when ctx is cancelled.
func (r *Runner) Loop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("resource loop interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	batch := 0
	for {
		sum, err := r.Run(ctx, batch)
		switch {
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, ErrBusy):
			r.logger.Info("resource run skipped: previous run still active")
		case err != nil:
			r.logger.Error("resource run failed", zap.Error(err))
		default:
			batch = sum.NextBatch
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
