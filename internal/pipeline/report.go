package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/deploy-man/deploy-man/internal/config"
)

// PrintSummary writes the run report. It is emitted unconditionally after
// every run, successful or not, so each stage transition is accounted for.
func PrintSummary(w io.Writer, run *Run) {
	fmt.Fprintln(w, config.StageSeparator)
	fmt.Fprintf(w, "Run %s\n", run.ID)
	fmt.Fprintln(w)

	for _, res := range run.Results {
		marker := "✅"
		switch res.Outcome {
		case OutcomeFailure:
			marker = "❌"
		case OutcomeSkipped:
			marker = "⏭️ "
		}

		line := fmt.Sprintf("%s %-20s %-8s %s", marker, res.Name, res.Outcome, res.Duration.Round(time.Millisecond))
		if res.Detail != "" {
			line += "  (" + res.Detail + ")"
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w)
	if run.Succeeded() {
		fmt.Fprintf(w, "✅ Pipeline succeeded in %s\n", run.Finished.Sub(run.Started).Round(time.Millisecond))
	} else {
		fmt.Fprintf(w, "❌ Pipeline failed at stage %s: %v\n", run.FailedStage, run.Err)
	}
}

// jsonReport is the machine-readable run report shape
type jsonReport struct {
	ID          string           `json:"id"`
	Started     time.Time        `json:"started"`
	Finished    time.Time        `json:"finished"`
	Succeeded   bool             `json:"succeeded"`
	FailedStage string           `json:"failedStage,omitempty"`
	Error       string           `json:"error,omitempty"`
	Stages      []jsonStageEntry `json:"stages"`
}

type jsonStageEntry struct {
	Name       string `json:"name"`
	Outcome    string `json:"outcome"`
	DurationMS int64  `json:"durationMs"`
	Detail     string `json:"detail,omitempty"`
}

// WriteJSON writes the run report as indented JSON
func WriteJSON(w io.Writer, run *Run) error {
	report := jsonReport{
		ID:          run.ID,
		Started:     run.Started,
		Finished:    run.Finished,
		Succeeded:   run.Succeeded(),
		FailedStage: run.FailedStage,
	}
	if run.Err != nil {
		report.Error = run.Err.Error()
	}
	for _, res := range run.Results {
		report.Stages = append(report.Stages, jsonStageEntry{
			Name:       res.Name,
			Outcome:    res.Outcome.String(),
			DurationMS: res.Duration.Milliseconds(),
			Detail:     res.Detail,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
