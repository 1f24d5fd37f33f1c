// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TaskReason explains why a subcategory needs generation work.
type TaskReason string

const (
	// ReasonGap marks a subcategory below the minimum resource count.
	ReasonGap TaskReason = "gap"

	// ReasonRefresh marks a subcategory whose newest content is stale.
	ReasonRefresh TaskReason = "refresh"
)

// GenerationTask is one unit of planned generation work. Tasks are computed
// fresh on every planning call and never persisted.
type GenerationTask struct {
	Category      string     `json:"category" yaml:"category"`
	Subcategory   string     `json:"subcategory" yaml:"subcategory"`
	Reason        TaskReason `json:"reason" yaml:"reason"`
	Count         int        `json:"count" yaml:"count"`
	LastGenerated time.Time  `json:"last_generated,omitzero" yaml:"last_generated,omitempty"`
}

// PairKey identifies a (category, subcategory) pair.
type PairKey struct {
	Category    string
	Subcategory string
}

// PairStatus is the stored state of one catalog pair.
type PairStatus struct {
	// Count is the number of resources stored for the pair.
	Count int

	// LastGenerated is the marker timestamp; zero when never generated.
	LastGenerated time.Time
}

// Inventory maps catalog pairs to their stored state.
type Inventory map[PairKey]PairStatus
