// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scheduler decides which catalog pairs need generation work.
//
// A pair whose stored resource count is below the minimum is a gap. A pair
// that is stocked but whose generation marker is older than the refresh
// window (or was never set) is a refresh candidate. Gaps always come first;
// refresh candidates are paged by batch so successive invocations of a
// periodic trigger walk through all stale pairs.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pdiddy/content-engine/pkg/types"
)

const (
	DefaultMinResources  = 2
	DefaultRefreshWindow = 48 * time.Hour
	DefaultBatchSize     = 5
	DefaultMaxTasks      = 10
)

// Options tunes one planning call.
type Options struct {
	// Now is the reference time for staleness. Zero means time.Now().
	Now time.Time

	// MinResources is the gap threshold. Zero means DefaultMinResources.
	MinResources int

	// RefreshWindow is the staleness window. Zero means DefaultRefreshWindow.
	RefreshWindow time.Duration

	// Batch is the zero-based refresh page. Negative values are treated as 0.
	Batch int

	// BatchSize is the refresh page size. Values <= 0 mean DefaultBatchSize.
	BatchSize int

	// MaxTasks caps the returned tasks. Zero means DefaultMaxTasks; negative
	// disables the cap.
	MaxTasks int
}

func (o Options) withDefaults() Options {
	if o.Now.IsZero() {
		o.Now = time.Now().UTC()
	}
	if o.MinResources <= 0 {
		o.MinResources = DefaultMinResources
	}
	if o.RefreshWindow <= 0 {
		o.RefreshWindow = DefaultRefreshWindow
	}
	if o.Batch < 0 {
		o.Batch = 0
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.MaxTasks == 0 {
		o.MaxTasks = DefaultMaxTasks
	}
	return o
}

// Result is the outcome of a planning call.
type Result struct {
	// Tasks lists gaps first, then the requested refresh page, capped.
	Tasks []types.GenerationTask `json:"tasks"`

	// Gaps is the total number of gap pairs before capping.
	Gaps int `json:"gaps"`

	// RefreshCandidates is the total number of stale pairs before paging.
	RefreshCandidates int `json:"refresh_candidates"`

	// Batch is the refresh page that was used.
	Batch int `json:"batch"`

	// Pages is the number of refresh pages available.
	Pages int `json:"pages"`
}

// NextBatch returns the refresh page a following invocation should request,
// wrapping to 0 after the last page or from a page past the end.
func (r Result) NextBatch() int {
	if r.Batch < 0 || r.Batch >= r.Pages-1 {
		return 0
	}
	return r.Batch + 1
}

// Plan classifies every pair and returns the tasks for this invocation.
// Pairs absent from inv have no resources and were never generated.
func Plan(pairs []types.PairKey, inv types.Inventory, opts Options) Result {
	opts = opts.withDefaults()

	var gaps, refresh []types.GenerationTask
	for _, key := range pairs {
		st := inv[key]
		task := types.GenerationTask{
			Category:      key.Category,
			Subcategory:   key.Subcategory,
			Count:         st.Count,
			LastGenerated: st.LastGenerated,
		}
		switch {
		case st.Count < opts.MinResources:
			task.Reason = types.ReasonGap
			gaps = append(gaps, task)
		case st.LastGenerated.IsZero() || opts.Now.Sub(st.LastGenerated) > opts.RefreshWindow:
			task.Reason = types.ReasonRefresh
			refresh = append(refresh, task)
		}
	}

	// Oldest first; never-generated pairs have the zero time and lead.
	sort.SliceStable(refresh, func(i, j int) bool {
		return refresh[i].LastGenerated.Before(refresh[j].LastGenerated)
	})

	res := Result{
		Gaps:              len(gaps),
		RefreshCandidates: len(refresh),
		Batch:             opts.Batch,
		Pages:             (len(refresh) + opts.BatchSize - 1) / opts.BatchSize,
	}

	tasks := append([]types.GenerationTask(nil), gaps...)
	if opts.Batch < res.Pages {
		start := opts.Batch * opts.BatchSize
		end := min(start+opts.BatchSize, len(refresh))
		tasks = append(tasks, refresh[start:end]...)
	}

	if opts.MaxTasks > 0 && len(tasks) > opts.MaxTasks {
		tasks = tasks[:opts.MaxTasks]
	}
	res.Tasks = tasks
	return res
}

// InventorySource supplies the stored state of catalog pairs.
type InventorySource interface {
	Inventory(ctx context.Context) (types.Inventory, error)
}

// Planner binds Plan to a store, a catalog and configured options.
type Planner struct {
	source InventorySource
	pairs  []types.PairKey
	cfg    types.SchedulerConfig
	now    func() time.Time
}

// NewPlanner creates a Planner over the given catalog pairs.
func NewPlanner(source InventorySource, pairs []types.PairKey, cfg types.SchedulerConfig) *Planner {
	return &Planner{
		source: source,
		pairs:  pairs,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Plan reads the inventory and plans refresh page batch.
func (p *Planner) Plan(ctx context.Context, batch int) (Result, error) {
	inv, err := p.source.Inventory(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("reading inventory: %w", err)
	}
	return Plan(p.pairs, inv, Options{
		Now:           p.now(),
		MinResources:  p.cfg.MinResources,
		RefreshWindow: p.cfg.RefreshWindow,
		Batch:         batch,
		BatchSize:     p.cfg.BatchSize,
		MaxTasks:      p.cfg.MaxTasks,
	}), nil
}
