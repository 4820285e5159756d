package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/deploy-man/deploy-man/internal/config"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Outcome is the result of a single stage
type Outcome int

const (
	// OutcomeSuccess means the stage completed
	OutcomeSuccess Outcome = iota
	// OutcomeFailure means the stage failed and the run aborts
	OutcomeFailure
	// OutcomeSkipped means an earlier failure prevented the stage from running
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "Success"
	case OutcomeFailure:
		return "Failure"
	case OutcomeSkipped:
		return "Skipped"
	default:
		return "Unknown"
	}
}

// StageResult records one stage's execution
type StageResult struct {
	Name     string
	Outcome  Outcome
	Duration time.Duration
	// Detail carries the failure (or swallowed warning) message, if any
	Detail string
}

// Run is the record of a full pipeline execution
type Run struct {
	ID       string
	Started  time.Time
	Finished time.Time
	Results  []StageResult
	// FailedStage names the first ordinarily-failing stage, "" on success
	FailedStage string
	// Err is the error that failed the run, nil on success
	Err error
}

// Succeeded reports whether the run completed without an aborting failure
func (r *Run) Succeeded() bool {
	return r.Err == nil
}

// Action performs a stage's work
type Action func(ctx context.Context, sc StageContext) error

// Stage is one unit of pipeline work
type Stage struct {
	Name string
	// AlwaysRun stages execute even after an earlier failure; their own
	// failures are reported as warnings and never change the run outcome.
	AlwaysRun bool
	// BestEffort stages may fail without failing the run
	BestEffort bool
	Action     Action
}

// Engine executes stages strictly in order: fail-fast for ordinary stages,
// with AlwaysRun stages still executing after a failure and every skipped
// stage recorded explicitly.
type Engine struct {
	out func(format string, a ...any)
}

// NewEngine creates a pipeline engine
func NewEngine() *Engine {
	return &Engine{out: func(format string, a ...any) { fmt.Printf(format+"\n", a...) }}
}

// Execute runs the stages in order. The first failure of an ordinary stage
// aborts the remainder; stages marked AlwaysRun still execute, and everything
// else is recorded as Skipped so the run report accounts for every stage.
func (e *Engine) Execute(ctx context.Context, sc StageContext, stages []Stage) *Run {
	run := &Run{
		ID:      uuid.New().String(),
		Started: time.Now(),
	}

	for _, stage := range stages {
		if run.Err != nil && !stage.AlwaysRun {
			e.out("⏭️  Stage skipped: %s", stage.Name)
			run.Results = append(run.Results, StageResult{Name: stage.Name, Outcome: OutcomeSkipped})
			continue
		}

		e.out("%s", config.StageSeparator)
		e.out("📋 Stage: %s", stage.Name)

		start := time.Now()
		err := stage.Action(ctx, sc)
		elapsed := time.Since(start).Round(time.Millisecond)

		switch {
		case err == nil:
			e.out("✅ Stage succeeded: %s (%s)", stage.Name, elapsed)
			run.Results = append(run.Results, StageResult{Name: stage.Name, Outcome: OutcomeSuccess, Duration: elapsed})

		case stage.BestEffort || stage.AlwaysRun:
			// Swallowed failure: recorded with its message, never aborts
			logrus.Warnf("Stage %s failed (best effort): %v", stage.Name, err)
			run.Results = append(run.Results, StageResult{
				Name:     stage.Name,
				Outcome:  OutcomeSuccess,
				Duration: elapsed,
				Detail:   fmt.Sprintf("warning: %v", err),
			})

		default:
			e.out("❌ Stage failed: %s (%s)", stage.Name, elapsed)
			run.Results = append(run.Results, StageResult{
				Name:     stage.Name,
				Outcome:  OutcomeFailure,
				Duration: elapsed,
				Detail:   err.Error(),
			})
			run.FailedStage = stage.Name
			run.Err = fmt.Errorf("stage %s failed: %w", stage.Name, err)
		}
	}

	run.Finished = time.Now()
	return run
}
