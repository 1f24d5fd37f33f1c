// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assessment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/content-engine/pkg/types"
)

// Request bounds.
const (
	DefaultQuestionCount = 10
	MaxQuestionCount     = 50
	DefaultDifficulty    = "mixed"
)

// ErrInvalidRequest marks requests rejected before any agent runs.
var ErrInvalidRequest = errors.New("invalid assessment request")

// Request describes the assessment to build.
type Request struct {
	Subject       string               `json:"subject" validate:"required"`
	Topic         string               `json:"topic" validate:"required"`
	GradeLevel    string               `json:"grade_level,omitempty"`
	Difficulty    string               `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard mixed"`
	QuestionCount int                  `json:"question_count,omitempty" validate:"omitempty,min=1,max=50"`
	QuestionTypes []types.QuestionType `json:"question_types,omitempty"`
}

func (r Request) normalized() (Request, error) {
	r.Subject = strings.TrimSpace(r.Subject)
	r.Topic = strings.TrimSpace(r.Topic)
	r.GradeLevel = strings.TrimSpace(r.GradeLevel)
	r.Difficulty = strings.ToLower(strings.TrimSpace(r.Difficulty))

	if r.Subject == "" {
		return r, fmt.Errorf("%w: subject is required", ErrInvalidRequest)
	}
	if r.Topic == "" {
		return r, fmt.Errorf("%w: topic is required", ErrInvalidRequest)
	}
	if r.QuestionCount == 0 {
		r.QuestionCount = DefaultQuestionCount
	}
	if r.QuestionCount < 1 || r.QuestionCount > MaxQuestionCount {
		return r, fmt.Errorf("%w: question count %d outside [1, %d]", ErrInvalidRequest, r.QuestionCount, MaxQuestionCount)
	}
	switch r.Difficulty {
	case "":
		r.Difficulty = DefaultDifficulty
	case "easy", "medium", "hard", "mixed":
	default:
		return r, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidRequest, r.Difficulty)
	}
	for _, t := range r.QuestionTypes {
		if !t.Valid() {
			return r, fmt.Errorf("%w: unknown question type %q", ErrInvalidRequest, t)
		}
	}
	if len(r.QuestionTypes) == 0 {
		r.QuestionTypes = []types.QuestionType{
			types.QuestionMultipleChoice,
			types.QuestionTrueFalse,
			types.QuestionShortAnswer,
		}
	}
	return r, nil
}

// Analysis is the Analyzer's reading of the request.
type Analysis struct {
	Objectives  []string `json:"objectives"`
	Concepts    []string `json:"concepts"`
	QuestionMix []Mix    `json:"question_mix"`
}

// Mix is how many questions of one type the assessment should hold.
type Mix struct {
	Type  types.QuestionType `json:"type"`
	Count int                `json:"count"`
}

// SourceNotes is the Librarian's reference material, one note per concept.
type SourceNotes struct {
	Notes []ConceptNote `json:"notes"`
}

// ConceptNote holds facts about one concept.
type ConceptNote struct {
	Concept string   `json:"concept"`
	Summary string   `json:"summary"`
	Facts   []string `json:"facts"`
}

// Blueprint is the Architect's plan: one slot per question.
type Blueprint struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Slots       []Slot `json:"slots"`
}

// Slot specifies a question before it is written.
type Slot struct {
	Type       types.QuestionType `json:"type"`
	Objective  string             `json:"objective"`
	Concept    string             `json:"concept"`
	Difficulty string             `json:"difficulty"`
	Points     int                `json:"points"`
}

// QuestionSet is the Creator and Editor output.
type QuestionSet struct {
	Questions []types.Question `json:"questions"`
}

// Critique is the Critic output.
type Critique struct {
	Issues []Issue `json:"issues"`
}

// Issue is one problem the Critic found. Question is a zero-based index.
type Issue struct {
	Question   int    `json:"question"`
	Problem    string `json:"problem"`
	Suggestion string `json:"suggestion"`
}

// Scoring is the Scorer output: rubric criteria in question order plus an
// overall quality estimate.
type Scoring struct {
	Criteria     []Criterion `json:"criteria"`
	GradingNotes string      `json:"grading_notes"`
	QualityScore int         `json:"quality_score"`
}

// Criterion grades the question at the same position.
type Criterion struct {
	Points   int      `json:"points"`
	Criteria []string `json:"criteria"`
	Guidance string   `json:"guidance"`
}

// Result is a persisted assessment and its rubric.
type Result struct {
	Assessment *types.Assessment `json:"assessment"`
	Rubric     *types.Rubric     `json:"rubric"`
}
