// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resources

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/content-engine/internal/pipeline"
	"github.com/pdiddy/content-engine/internal/scheduler"
	"github.com/pdiddy/content-engine/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// --- fakes ---

type fakePlanner struct {
	mu      sync.Mutex
	result  func(batch int) scheduler.Result
	err     error
	batches []int
	onPlan  func()
}

func (f *fakePlanner) Plan(_ context.Context, batch int) (scheduler.Result, error) {
	f.mu.Lock()
	f.batches = append(f.batches, batch)
	hook := f.onPlan
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if f.err != nil {
		return scheduler.Result{}, f.err
	}
	return f.result(batch), nil
}

func (f *fakePlanner) seen() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.batches...)
}

type fakeGenerator struct {
	mu       sync.Mutex
	errs     map[string]error
	requests []pipeline.Request
	block    chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, req pipeline.Request) (*types.Article, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if err := f.errs[req.Subcategory]; err != nil {
		return nil, err
	}
	return &types.Article{ID: "art-" + req.Subcategory, Title: "About " + req.Topic}, nil
}

type fakeRecorder struct {
	mu        sync.Mutex
	resources []*types.Resource
}

func (f *fakeRecorder) RecordResource(_ context.Context, r *types.Resource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resources = append(f.resources, r)
	return nil
}

func tasks(subs ...string) []types.GenerationTask {
	out := make([]types.GenerationTask, len(subs))
	for i, s := range subs {
		out[i] = types.GenerationTask{Category: "STEM", Subcategory: s, Reason: types.ReasonGap}
	}
	return out
}

func fixed(res scheduler.Result) func(int) scheduler.Result {
	return func(batch int) scheduler.Result {
		res.Batch = batch
		return res
	}
}

// --- tests ---

func TestRunCountsOutcomes(t *testing.T) {
	planner := &fakePlanner{result: fixed(scheduler.Result{Tasks: tasks("Math", "Physics", "Biology", "Chemistry"), Pages: 3})}
	gen := &fakeGenerator{errs: map[string]error{
		"Physics": fmt.Errorf("wrapped: %w", pipeline.ErrNotApproved),
		"Biology": errors.New("backend down"),
	}}
	rec := &fakeRecorder{}

	r := NewRunner(planner, gen, rec, nil)
	r.newID = func() string { return "res-id" }

	sum, err := r.Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Batch)
	assert.Equal(t, 2, sum.NextBatch)
	assert.Equal(t, 4, sum.Planned)
	assert.Equal(t, 2, sum.Generated)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Failed)
	require.Len(t, sum.Errors, 1)
	assert.Contains(t, sum.Errors[0], "STEM/Biology: backend down")

	require.Len(t, gen.requests, 4, "failures do not stop the run")
	assert.Equal(t, pipeline.Request{Topic: "Math", Category: "STEM", Subcategory: "Math", Kind: types.KindArticle}, gen.requests[0])

	require.Len(t, rec.resources, 2)
	assert.Equal(t, "art-Math", rec.resources[0].ArticleID)
	assert.Equal(t, "Math", rec.resources[0].Subcategory)
	assert.Equal(t, "About Math", rec.resources[0].Title)
	assert.Equal(t, "art-Chemistry", rec.resources[1].ArticleID)
}

func TestRunPlanningError(t *testing.T) {
	r := NewRunner(&fakePlanner{err: errors.New("no db")}, &fakeGenerator{}, &fakeRecorder{}, nil)
	_, err := r.Run(context.Background(), 0)
	assert.ErrorContains(t, err, "planning: no db")
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	planner := &fakePlanner{result: fixed(scheduler.Result{Tasks: tasks("a", "b", "c")})}
	gen := &fakeGenerator{}
	r := NewRunner(planner, gen, &fakeRecorder{}, nil)
	planner.onPlan = cancel

	sum, err := r.Run(ctx, 0)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, sum.Generated)
	assert.Empty(t, gen.requests)
}

func TestRunRejectsConcurrentRuns(t *testing.T) {
	planner := &fakePlanner{result: fixed(scheduler.Result{Tasks: tasks("a")})}
	gen := &fakeGenerator{block: make(chan struct{})}
	r := NewRunner(planner, gen, &fakeRecorder{}, nil)

	started := make(chan struct{})
	planner.onPlan = func() { close(started) }

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background(), 0)
		done <- err
	}()
	<-started

	_, err := r.Run(context.Background(), 0)
	assert.ErrorIs(t, err, ErrBusy)

	close(gen.block)
	assert.NoError(t, <-done)
}

func TestLoopAdvancesBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var planner *fakePlanner
	planner = &fakePlanner{result: fixed(scheduler.Result{Pages: 2})}
	planner.onPlan = func() {
		if len(planner.batches) == 4 {
			cancel()
		}
	}
	r := NewRunner(planner, &fakeGenerator{}, &fakeRecorder{}, nil)

	done := make(chan error, 1)
	go func() { done <- r.Loop(ctx, time.Millisecond) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.Equal(t, []int{0, 1, 0, 1}, planner.seen())
}

func TestLoopKeepsBatchAfterError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var planner *fakePlanner
	planner = &fakePlanner{err: errors.New("flaky")}
	planner.onPlan = func() {
		if len(planner.batches) == 3 {
			cancel()
		}
	}
	r := NewRunner(planner, &fakeGenerator{}, &fakeRecorder{}, nil)

	require.NoError(t, r.Loop(ctx, time.Millisecond))
	assert.Equal(t, []int{0, 0, 0}, planner.seen())
}

func TestLoopRejectsBadInterval(t *testing.T) {
	r := NewRunner(&fakePlanner{}, &fakeGenerator{}, &fakeRecorder{}, nil)
	assert.Error(t, r.Loop(context.Background(), 0))
}
