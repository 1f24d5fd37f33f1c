// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assessment

// EventType distinguishes progress events.
type EventType string

const (
	EventProgress EventType = "progress"
	EventAudit    EventType = "audit"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Stage names one step of the chain.
type Stage string

const (
	StageAnalyzer  Stage = "analyzer"
	StageLibrarian Stage = "librarian"
	StageArchitect Stage = "architect"
	StageCreator   Stage = "creator"
	StageCritic    Stage = "critic"
	StageEditor    Stage = "editor"
	StageScorer    Stage = "scorer"
	StageSave      Stage = "save"
)

// Status is the state of a stage in a progress event.
type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Progress is one event reported while an assessment is built.
type Progress struct {
	Type         EventType `json:"type"`
	Stage        Stage     `json:"stage,omitempty"`
	Status       Status    `json:"status,omitempty"`
	Message      string    `json:"message,omitempty"`
	Percent      int       `json:"percent"`
	Cycle        int       `json:"cycle,omitempty"`
	Issues       int       `json:"issues,omitempty"`
	AssessmentID string    `json:"assessment_id,omitempty"`
	RubricID     string    `json:"rubric_id,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// Emitter receives progress events in order. Emit is called from the
// goroutine running the orchestrator.
type Emitter interface {
	Emit(Progress)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Progress)

// Emit calls f(p).
func (f EmitterFunc) Emit(p Progress) { f(p) }

type nopEmitter struct{}

func (nopEmitter) Emit(Progress) {}

// stagePercent is the percent reported when each stage starts and completes.
var stagePercent = map[Stage][2]int{
	StageAnalyzer:  {0, 10},
	StageLibrarian: {10, 25},
	StageArchitect: {25, 40},
	StageCreator:   {40, 60},
	StageCritic:    {60, 80},
	StageEditor:    {60, 80},
	StageScorer:    {80, 95},
	StageSave:      {95, 100},
}
