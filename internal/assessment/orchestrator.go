// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assessment builds assessments and their grading rubrics through a
// chain of LLM agents: Analyzer, Librarian, Architect, Creator, a bounded
// Critic/Editor audit loop, and Scorer. Each stage reports progress to an
// Emitter so callers can stream it.
package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/content-engine/internal/llm"
	"github.com/pdiddy/content-engine/pkg/types"
)

// DefaultMaxAuditCycles caps Critic calls per run.
const DefaultMaxAuditCycles = 2

// AssessmentSaver persists an assessment together with its rubric.
type AssessmentSaver interface {
	SaveAssessment(ctx context.Context, a *types.Assessment, r *types.Rubric) error
}

// Options configures an Orchestrator.
type Options struct {
	MaxAuditCycles int
	MaxRetries     int
	Logger         *zap.Logger
}

// Orchestrator runs the agent chain. It holds no per-run state and may run
// several assessments concurrently.
type Orchestrator struct {
	backend        llm.Backend
	saver          AssessmentSaver
	maxAuditCycles int
	maxRetries     int
	logger         *zap.Logger

	now   func() time.Time
	newID func() string
}

// New builds an Orchestrator. A nil saver skips persistence.
func New(backend llm.Backend, saver AssessmentSaver, opts Options) *Orchestrator {
	if opts.MaxAuditCycles <= 0 {
		opts.MaxAuditCycles = DefaultMaxAuditCycles
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Orchestrator{
		backend:        backend,
		saver:          saver,
		maxAuditCycles: opts.MaxAuditCycles,
		maxRetries:     opts.MaxRetries,
		logger:         opts.Logger.Named("assessment"),
		now:            func() time.Time { return time.Now().UTC() },
		newID:          uuid.NewString,
	}
}

// Validate normalizes req the way Run does, so callers can reject bad input
// before opening a stream.
func Validate(req Request) (Request, error) {
	return req.normalized()
}

// run carries the state of one Run call.
type run struct {
	o   *Orchestrator
	req Request
	em  Emitter
	log *zap.Logger
}

// Run builds, audits, scores, and persists one assessment. Every stage emits
// a started and a completed event; a failing stage emits an error event and
// aborts the run with an error naming the stage. The last event of a
// successful run has type complete and carries the new assessment ID.
func (o *Orchestrator) Run(ctx context.Context, req Request, em Emitter) (*Result, error) {
	req, err := req.normalized()
	if err != nil {
		return nil, err
	}
	if em == nil {
		em = nopEmitter{}
	}
	r := &run{
		o:   o,
		req: req,
		em:  em,
		log: o.logger.With(zap.String("subject", req.Subject), zap.String("topic", req.Topic)),
	}
	start := time.Now()

	var analysis Analysis
	err = r.stage(ctx, StageAnalyzer, "Analyzing the request", func(ctx context.Context) (string, error) {
		if err := r.ask(ctx, analyzerSystem, analyzePromptTmpl, req, &analysis); err != nil {
			return "", err
		}
		if len(analysis.Objectives) == 0 {
			return "", fmt.Errorf("no learning objectives")
		}
		return fmt.Sprintf("Identified %d objectives", len(analysis.Objectives)), nil
	})
	if err != nil {
		return nil, err
	}
	if len(analysis.Concepts) == 0 {
		analysis.Concepts = []string{req.Topic}
	}

	var notes SourceNotes
	err = r.stage(ctx, StageLibrarian, "Gathering reference material", func(ctx context.Context) (string, error) {
		data := struct {
			Request  Request
			Analysis Analysis
		}{req, analysis}
		if err := r.ask(ctx, librarianSystem, librarianPromptTmpl, data, &notes); err != nil {
			return "", err
		}
		return fmt.Sprintf("Collected notes on %d concepts", len(notes.Notes)), nil
	})
	if err != nil {
		return nil, err
	}

	var blueprint Blueprint
	err = r.stage(ctx, StageArchitect, "Designing the blueprint", func(ctx context.Context) (string, error) {
		data := struct {
			Request  Request
			Analysis Analysis
		}{req, analysis}
		if err := r.ask(ctx, architectSystem, architectPromptTmpl, data, &blueprint); err != nil {
			return "", err
		}
		if len(blueprint.Slots) == 0 {
			return "", fmt.Errorf("blueprint has no question slots")
		}
		if len(blueprint.Slots) > req.QuestionCount {
			blueprint.Slots = blueprint.Slots[:req.QuestionCount]
		}
		return fmt.Sprintf("Planned %d questions", len(blueprint.Slots)), nil
	})
	if err != nil {
		return nil, err
	}

	var questions []types.Question
	err = r.stage(ctx, StageCreator, "Writing questions", func(ctx context.Context) (string, error) {
		data := struct {
			Blueprint Blueprint
			Notes     SourceNotes
		}{blueprint, notes}
		var set QuestionSet
		if err := r.ask(ctx, creatorSystem, creatorPromptTmpl, data, &set); err != nil {
			return "", err
		}
		if len(set.Questions) == 0 {
			return "", fmt.Errorf("no questions returned")
		}
		questions = fitToBlueprint(set.Questions, blueprint.Slots)
		return fmt.Sprintf("Wrote %d questions", len(questions)), nil
	})
	if err != nil {
		return nil, err
	}

	questions, cycles, open, err := r.audit(ctx, questions)
	if err != nil {
		return nil, err
	}

	var scoring Scoring
	err = r.stage(ctx, StageScorer, "Building the rubric", func(ctx context.Context) (string, error) {
		qj, err := questionsJSON(questions)
		if err != nil {
			return "", err
		}
		data := struct {
			Request       Request
			QuestionsJSON string
		}{req, qj}
		if err := r.ask(ctx, scorerSystem, scorerPromptTmpl, data, &scoring); err != nil {
			return "", err
		}
		return fmt.Sprintf("Quality score %d", max(0, min(100, scoring.QualityScore))), nil
	})
	if err != nil {
		return nil, err
	}

	res := o.assemble(req, blueprint, questions, scoring, cycles, open)

	err = r.stage(ctx, StageSave, "Saving assessment", func(ctx context.Context) (string, error) {
		if o.saver == nil {
			return "Not persisted", nil
		}
		if err := o.saver.SaveAssessment(ctx, res.Assessment, res.Rubric); err != nil {
			return "", err
		}
		return "Saved", nil
	})
	if err != nil {
		return nil, err
	}

	r.em.Emit(Progress{
		Type:         EventComplete,
		Message:      "Assessment ready",
		Percent:      100,
		AssessmentID: res.Assessment.ID,
		RubricID:     res.Rubric.ID,
	})
	r.log.Info("assessment generated",
		zap.String("id", res.Assessment.ID),
		zap.Int("questions", len(res.Assessment.Questions)),
		zap.Int("audit_cycles", cycles),
		zap.Int("open_issues", open),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// audit alternates Critic and Editor. It stops when the Critic reports no
// issues or after maxAuditCycles Critic calls, returning the final questions,
// the number of Critic calls, and the issue count of the last critique when
// the cap ended the loop.
func (r *run) audit(ctx context.Context, questions []types.Question) ([]types.Question, int, int, error) {
	cycles, open := 0, 0
	for cycles < r.o.maxAuditCycles {
		cycles++

		var critique Critique
		err := r.stage(ctx, StageCritic, fmt.Sprintf("Audit cycle %d", cycles), func(ctx context.Context) (string, error) {
			qj, err := questionsJSON(questions)
			if err != nil {
				return "", err
			}
			data := struct {
				Request       Request
				QuestionsJSON string
			}{r.req, qj}
			if err := r.ask(ctx, criticSystem, criticPromptTmpl, data, &critique); err != nil {
				return "", err
			}
			return fmt.Sprintf("Found %d issues", len(critique.Issues)), nil
		})
		if err != nil {
			return nil, 0, 0, err
		}

		issues := critique.Issues
		r.em.Emit(Progress{
			Type:    EventAudit,
			Stage:   StageCritic,
			Message: fmt.Sprintf("Audit cycle %d found %d issues", cycles, len(issues)),
			Percent: stagePercent[StageCritic][1],
			Cycle:   cycles,
			Issues:  len(issues),
		})
		r.log.Debug("audit cycle", zap.Int("cycle", cycles), zap.Int("issues", len(issues)))
		if len(issues) == 0 {
			return questions, cycles, 0, nil
		}
		open = len(issues)

		err = r.stage(ctx, StageEditor, fmt.Sprintf("Fixing %d issues", len(issues)), func(ctx context.Context) (string, error) {
			qj, err := questionsJSON(questions)
			if err != nil {
				return "", err
			}
			data := struct {
				Issues        []Issue
				QuestionsJSON string
			}{issues, qj}
			var set QuestionSet
			if err := r.ask(ctx, editorSystem, editorPromptTmpl, data, &set); err != nil {
				return "", err
			}
			if len(set.Questions) != len(questions) {
				return "", fmt.Errorf("returned %d questions, want %d", len(set.Questions), len(questions))
			}
			questions = keepShape(set.Questions, questions)
			return "Revised questions", nil
		})
		if err != nil {
			return nil, 0, 0, err
		}
	}
	r.log.Info("audit cycle cap reached", zap.Int("cycles", cycles), zap.Int("open_issues", open))
	return questions, cycles, open, nil
}

// stage wraps fn with started/completed events, or an error event when fn
// fails. The returned error is prefixed with the stage name.
func (r *run) stage(ctx context.Context, s Stage, message string, fn func(context.Context) (string, error)) error {
	pct := stagePercent[s]
	r.em.Emit(Progress{Type: EventProgress, Stage: s, Status: StatusStarted, Message: message, Percent: pct[0]})

	done, err := fn(ctx)
	if err != nil {
		r.em.Emit(Progress{Type: EventError, Stage: s, Status: StatusFailed, Percent: pct[0], Error: err.Error()})
		r.log.Error("stage failed", zap.String("stage", string(s)), zap.Error(err))
		return fmt.Errorf("%s: %w", s, err)
	}

	r.em.Emit(Progress{Type: EventProgress, Stage: s, Status: StatusCompleted, Message: done, Percent: pct[1]})
	return nil
}

func (r *run) ask(ctx context.Context, system string, tmpl *template.Template, data, out any) error {
	prompt, err := llm.Render(tmpl, data)
	if err != nil {
		return fmt.Errorf("rendering prompt: %w", err)
	}
	return llm.CallJSON(ctx, r.o.backend, system, prompt, out, r.o.maxRetries)
}

// assemble assigns identifiers and links the rubric to the questions.
func (o *Orchestrator) assemble(req Request, bp Blueprint, questions []types.Question, sc Scoring, cycles, open int) *Result {
	now := o.now()
	a := &types.Assessment{
		ID:          o.newID(),
		Title:       strings.TrimSpace(bp.Title),
		Description: strings.TrimSpace(bp.Description),
		Subject:     req.Subject,
		Topic:       req.Topic,
		GradeLevel:  req.GradeLevel,
		Difficulty:  req.Difficulty,
		Questions:   make([]types.Question, len(questions)),
		Quality: types.AssessmentQuality{
			Score:       max(0, min(100, sc.QualityScore)),
			AuditCycles: cycles,
			OpenIssues:  open,
		},
		CreatedAt: now,
	}
	if a.Title == "" {
		a.Title = fmt.Sprintf("%s: %s", req.Subject, req.Topic)
	}

	rub := &types.Rubric{
		ID:           o.newID(),
		AssessmentID: a.ID,
		Criteria:     make([]types.RubricCriterion, len(questions)),
		GradingNotes: strings.TrimSpace(sc.GradingNotes),
		CreatedAt:    now,
	}
	a.RubricID = rub.ID

	for i, q := range questions {
		q.ID = fmt.Sprintf("q%d", i+1)
		a.Questions[i] = q
		a.TotalPoints += q.Points

		c := types.RubricCriterion{QuestionID: q.ID, Points: q.Points}
		if i < len(sc.Criteria) {
			c.Criteria = sc.Criteria[i].Criteria
			c.Guidance = strings.TrimSpace(sc.Criteria[i].Guidance)
		}
		if len(c.Criteria) == 0 {
			c.Criteria = []string{"Matches the answer key: " + q.Answer}
		}
		rub.Criteria[i] = c
	}
	rub.TotalPoints = a.TotalPoints

	return &Result{Assessment: a, Rubric: rub}
}

// fitToBlueprint holds each question to the type and points of the slot at
// the same position, fills empty fields from it and drops questions beyond
// the blueprint. The Creator's own type and points are kept only where the
// slot leaves them unset.
func fitToBlueprint(qs []types.Question, slots []Slot) []types.Question {
	if len(qs) > len(slots) {
		qs = qs[:len(slots)]
	}
	out := make([]types.Question, len(qs))
	for i, q := range qs {
		s := slots[i]
		if s.Type.Valid() {
			q.Type = s.Type
		}
		if !q.Type.Valid() {
			q.Type = types.QuestionShortAnswer
		}
		if q.Objective == "" {
			q.Objective = s.Objective
		}
		if q.Difficulty == "" {
			q.Difficulty = s.Difficulty
		}
		if s.Points > 0 {
			q.Points = s.Points
		}
		if q.Points <= 0 {
			q.Points = 1
		}
		out[i] = q
	}
	return out
}

// keepShape applies edited question text while holding type, points and
// objective to the previous version.
func keepShape(edited, prev []types.Question) []types.Question {
	out := make([]types.Question, len(prev))
	for i, q := range edited {
		q.Type = prev[i].Type
		q.Points = prev[i].Points
		if q.Objective == "" {
			q.Objective = prev[i].Objective
		}
		if q.Difficulty == "" {
			q.Difficulty = prev[i].Difficulty
		}
		out[i] = q
	}
	return out
}

func questionsJSON(qs []types.Question) (string, error) {
	data, err := json.MarshalIndent(QuestionSet{Questions: qs}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding questions: %w", err)
	}
	return string(data), nil
}
