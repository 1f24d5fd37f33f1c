// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// QuestionType categorizes an assessment question.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionShortAnswer    QuestionType = "short_answer"
	QuestionEssay          QuestionType = "essay"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMultipleChoice, QuestionTrueFalse, QuestionShortAnswer, QuestionEssay:
		return true
	}
	return false
}

// Question is one item of an assessment.
type Question struct {
	ID          string       `json:"id" yaml:"id"`
	Type        QuestionType `json:"type" yaml:"type"`
	Prompt      string       `json:"prompt" yaml:"prompt"`
	Options     []string     `json:"options,omitempty" yaml:"options,omitempty"`
	Answer      string       `json:"answer" yaml:"answer"`
	Explanation string       `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Objective   string       `json:"objective,omitempty" yaml:"objective,omitempty"`
	Difficulty  string       `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Points      int          `json:"points" yaml:"points"`
}

// AssessmentQuality records how the audit loop ended.
type AssessmentQuality struct {
	// Score is the scorer's overall quality estimate on a 0-100 scale.
	Score int `json:"score" yaml:"score"`

	// AuditCycles is the number of critic passes that ran.
	AuditCycles int `json:"audit_cycles" yaml:"audit_cycles"`

	// OpenIssues counts critic issues left when the cycle cap was reached.
	OpenIssues int `json:"open_issues" yaml:"open_issues"`
}

// Assessment is a generated quiz or test.
type Assessment struct {
	ID          string            `json:"id" yaml:"id"`
	Title       string            `json:"title" yaml:"title"`
	Description string            `json:"description" yaml:"description"`
	Subject     string            `json:"subject" yaml:"subject"`
	Topic       string            `json:"topic" yaml:"topic"`
	GradeLevel  string            `json:"grade_level,omitempty" yaml:"grade_level,omitempty"`
	Difficulty  string            `json:"difficulty" yaml:"difficulty"`
	Questions   []Question        `json:"questions" yaml:"questions"`
	TotalPoints int               `json:"total_points" yaml:"total_points"`
	RubricID    string            `json:"rubric_id" yaml:"rubric_id"`
	Quality     AssessmentQuality `json:"quality" yaml:"quality"`
	CreatedAt   time.Time         `json:"created_at" yaml:"created_at"`
}

// RubricCriterion is the grading guidance for one question.
type RubricCriterion struct {
	QuestionID string   `json:"question_id" yaml:"question_id"`
	Points     int      `json:"points" yaml:"points"`
	Criteria   []string `json:"criteria" yaml:"criteria"`
	Guidance   string   `json:"guidance,omitempty" yaml:"guidance,omitempty"`
}

// Rubric is stored separately from the assessment it grades.
type Rubric struct {
	ID           string            `json:"id" yaml:"id"`
	AssessmentID string            `json:"assessment_id" yaml:"assessment_id"`
	Criteria     []RubricCriterion `json:"criteria" yaml:"criteria"`
	TotalPoints  int               `json:"total_points" yaml:"total_points"`
	GradingNotes string            `json:"grading_notes,omitempty" yaml:"grading_notes,omitempty"`
	CreatedAt    time.Time         `json:"created_at" yaml:"created_at"`
}
