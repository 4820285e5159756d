// Package qualitygate waits for an external analysis verdict with a bounded
// timeout and an explicit abort policy.
package qualitygate

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Status is the verdict of a quality gate
type Status int

const (
	// StatusUnknown means no verdict has arrived yet
	StatusUnknown Status = iota
	// StatusPassed means the gate accepted the analysis
	StatusPassed
	// StatusFailed means the gate rejected the analysis
	StatusFailed
	// StatusTimeout means no verdict arrived within the bound
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "Passed"
	case StatusFailed:
		return "Failed"
	case StatusTimeout:
		return "Timeout"
	default:
		return "Unknown"
	}
}

// Result is the outcome of a quality gate wait. Produced once per run and
// consumed once; the waiter never retries a delivered verdict.
type Result struct {
	Status Status
}

// GateError indicates a non-passing verdict that the abort policy escalated
type GateError struct {
	Status Status
}

func (e *GateError) Error() string {
	return fmt.Sprintf("quality gate did not pass: %s", e.Status)
}

// Source checks the external analysis server for a verdict. StatusUnknown
// with a nil error means the analysis is still in progress.
type Source interface {
	Check(ctx context.Context) (Status, error)
}

// Waiter polls a Source until a verdict arrives or the timeout elapses
type Waiter struct {
	source   Source
	interval time.Duration
}

// NewWaiter creates a waiter polling source at the given interval
func NewWaiter(source Source, interval time.Duration) *Waiter {
	return &Waiter{source: source, interval: interval}
}

// Await polls for a verdict, returning StatusTimeout once timeout elapses
// without one. A source error ends the wait with StatusUnknown and the error.
func (w *Waiter) Await(ctx context.Context, timeout time.Duration) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Check immediately so a gate that already concluded doesn't cost an
	// interval.
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		status, err := w.source.Check(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return Result{Status: StatusTimeout}, nil
			}
			return Result{Status: StatusUnknown}, fmt.Errorf("quality gate check failed: %w", err)
		}
		if status != StatusUnknown {
			return Result{Status: status}, nil
		}

		select {
		case <-ctx.Done():
			return Result{Status: StatusTimeout}, nil
		case <-ticker.C:
		}
	}
}

// Escalate applies the abort policy to a gate result. With abortOnFailure
// set, a Failed or Timeout verdict becomes an error; otherwise it is logged
// as a warning and the run continues. The policy has flipped between
// revisions of this pipeline, so it is an explicit flag rather than a
// hidden default.
func Escalate(res Result, abortOnFailure bool) error {
	switch res.Status {
	case StatusPassed:
		return nil
	case StatusFailed, StatusTimeout:
		if abortOnFailure {
			return &GateError{Status: res.Status}
		}
		logrus.Warnf("Quality gate %s, continuing (abortOnFailure=false)", res.Status)
		return nil
	default:
		logrus.Warnf("Quality gate verdict unknown, continuing")
		return nil
	}
}
