// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-engine/pkg/types"
)

var now = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func key(c, s string) types.PairKey { return types.PairKey{Category: c, Subcategory: s} }

// brief reduces tasks to "category/subcategory:reason" for comparison.
func brief(tasks []types.GenerationTask) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = fmt.Sprintf("%s/%s:%s", t.Category, t.Subcategory, t.Reason)
	}
	return out
}

func TestPlanClassifies(t *testing.T) {
	pairs := []types.PairKey{
		key("STEM", "Math"),
		key("STEM", "Physics"),
		key("STEM", "Biology"),
		key("Arts", "Music"),
		key("Arts", "Dance"),
	}
	inv := types.Inventory{
		key("STEM", "Math"):    {Count: 5, LastGenerated: now.Add(-time.Hour)},      // fresh
		key("STEM", "Physics"): {Count: 1, LastGenerated: now.Add(-time.Hour)},      // gap
		key("STEM", "Biology"): {Count: 3, LastGenerated: now.Add(-72 * time.Hour)}, // stale
		key("Arts", "Music"):   {Count: 2},                                          // never marked
		// Dance absent: gap with zero count.
	}

	res := Plan(pairs, inv, Options{Now: now})

	want := []string{
		"STEM/Physics:gap",
		"Arts/Dance:gap",
		"Arts/Music:refresh",
		"STEM/Biology:refresh",
	}
	if diff := cmp.Diff(want, brief(res.Tasks)); diff != "" {
		t.Errorf("tasks mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, res.Gaps)
	assert.Equal(t, 2, res.RefreshCandidates)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, 1, res.Tasks[0].Count)
}

func TestPlanRefreshWindowBoundary(t *testing.T) {
	pairs := []types.PairKey{key("A", "exact"), key("A", "over")}
	inv := types.Inventory{
		key("A", "exact"): {Count: 2, LastGenerated: now.Add(-48 * time.Hour)},
		key("A", "over"):  {Count: 2, LastGenerated: now.Add(-48*time.Hour - time.Second)},
	}
	res := Plan(pairs, inv, Options{Now: now})
	assert.Equal(t, []string{"A/over:refresh"}, brief(res.Tasks))
}

func TestPlanGapsPrecedeRefreshForEveryBatch(t *testing.T) {
	var pairs []types.PairKey
	inv := types.Inventory{}
	for i := 0; i < 12; i++ {
		k := key("R", fmt.Sprintf("stale-%02d", i))
		pairs = append(pairs, k)
		inv[k] = types.PairStatus{Count: 4, LastGenerated: now.Add(-time.Duration(100+i) * time.Hour)}
	}
	// The gap sits last in catalog order.
	gap := key("Z", "gap")
	pairs = append(pairs, gap)
	inv[gap] = types.PairStatus{Count: 1, LastGenerated: now}

	for batch := 0; batch < 5; batch++ {
		res := Plan(pairs, inv, Options{Now: now, Batch: batch, BatchSize: 4, MaxTasks: -1})
		require.NotEmpty(t, res.Tasks, "batch %d", batch)
		assert.Equal(t, types.ReasonGap, res.Tasks[0].Reason, "batch %d", batch)
		assert.Equal(t, "gap", res.Tasks[0].Subcategory, "batch %d", batch)
		for _, task := range res.Tasks[1:] {
			assert.Equal(t, types.ReasonRefresh, task.Reason, "batch %d", batch)
		}
	}
}

func TestPlanPaginatesOldestFirst(t *testing.T) {
	var pairs []types.PairKey
	inv := types.Inventory{}
	for i := 0; i < 7; i++ {
		k := key("R", fmt.Sprintf("s%d", i))
		pairs = append(pairs, k)
		// s0 is the freshest of the stale set, s6 the oldest.
		inv[k] = types.PairStatus{Count: 3, LastGenerated: now.Add(-time.Duration(50+i) * time.Hour)}
	}

	tests := []struct {
		batch int
		want  []string
	}{
		{0, []string{"R/s6:refresh", "R/s5:refresh", "R/s4:refresh"}},
		{1, []string{"R/s3:refresh", "R/s2:refresh", "R/s1:refresh"}},
		{2, []string{"R/s0:refresh"}},
		{3, []string{}},
		{-1, []string{"R/s6:refresh", "R/s5:refresh", "R/s4:refresh"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("batch=%d", tt.batch), func(t *testing.T) {
			res := Plan(pairs, inv, Options{Now: now, Batch: tt.batch, BatchSize: 3})
			if diff := cmp.Diff(tt.want, brief(res.Tasks)); diff != "" {
				t.Errorf("tasks mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, 3, res.Pages)
		})
	}
}

func TestPlanHugeBatchReturnsGapsOnly(t *testing.T) {
	pairs := []types.PairKey{key("A", "gap"), key("A", "stale")}
	inv := types.Inventory{
		key("A", "stale"): {Count: 3, LastGenerated: now.Add(-72 * time.Hour)},
	}

	for _, batch := range []int{math.MaxInt64/5 + 1, math.MaxInt64} {
		var res Result
		require.NotPanics(t, func() {
			res = Plan(pairs, inv, Options{Now: now, Batch: batch, BatchSize: 5})
		})
		assert.Equal(t, []string{"A/gap:gap"}, brief(res.Tasks), "batch %d", batch)
		assert.Equal(t, 1, res.RefreshCandidates)
	}
}

func TestPlanCapsTasks(t *testing.T) {
	var pairs []types.PairKey
	for i := 0; i < 15; i++ {
		pairs = append(pairs, key("G", fmt.Sprintf("g%02d", i)))
	}

	res := Plan(pairs, types.Inventory{}, Options{Now: now})
	assert.Len(t, res.Tasks, DefaultMaxTasks)
	assert.Equal(t, 15, res.Gaps)

	res = Plan(pairs, types.Inventory{}, Options{Now: now, MaxTasks: 4})
	assert.Len(t, res.Tasks, 4)
	assert.Equal(t, "g00", res.Tasks[0].Subcategory)

	res = Plan(pairs, types.Inventory{}, Options{Now: now, MaxTasks: -1})
	assert.Len(t, res.Tasks, 15)
}

func TestPlanCustomThresholds(t *testing.T) {
	pairs := []types.PairKey{key("A", "a")}
	inv := types.Inventory{key("A", "a"): {Count: 3, LastGenerated: now.Add(-2 * time.Hour)}}

	res := Plan(pairs, inv, Options{Now: now, MinResources: 4})
	assert.Equal(t, []string{"A/a:gap"}, brief(res.Tasks))

	res = Plan(pairs, inv, Options{Now: now, RefreshWindow: time.Hour})
	assert.Equal(t, []string{"A/a:refresh"}, brief(res.Tasks))
}

func TestResultNextBatch(t *testing.T) {
	assert.Equal(t, 0, Result{Pages: 0}.NextBatch())
	assert.Equal(t, 0, Result{Pages: 1, Batch: 0}.NextBatch())
	assert.Equal(t, 1, Result{Pages: 3, Batch: 0}.NextBatch())
	assert.Equal(t, 0, Result{Pages: 3, Batch: 2}.NextBatch())
	assert.Equal(t, 0, Result{Pages: 2, Batch: 7}.NextBatch())
	assert.Equal(t, 0, Result{Pages: 3, Batch: 4}.NextBatch())
	assert.Equal(t, 0, Result{Pages: 3, Batch: math.MaxInt}.NextBatch())
}

type fakeSource struct {
	inv types.Inventory
	err error
}

func (f fakeSource) Inventory(context.Context) (types.Inventory, error) { return f.inv, f.err }

func TestPlannerPlan(t *testing.T) {
	pairs := []types.PairKey{key("A", "a"), key("A", "b")}
	src := fakeSource{inv: types.Inventory{
		key("A", "a"): {Count: 2, LastGenerated: now.Add(-3 * time.Hour)},
		key("A", "b"): {Count: 2, LastGenerated: now.Add(-time.Hour)},
	}}
	p := NewPlanner(src, pairs, types.SchedulerConfig{RefreshWindow: 2 * time.Hour})
	p.now = func() time.Time { return now }

	res, err := p.Plan(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"A/a:refresh"}, brief(res.Tasks))

	p = NewPlanner(fakeSource{err: errors.New("db down")}, pairs, types.SchedulerConfig{})
	_, err = p.Plan(context.Background(), 0)
	assert.ErrorContains(t, err, "db down")
}
