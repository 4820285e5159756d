package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func sampleRun() *Run {
	return &Run{
		ID:      "run-1",
		Started: time.Now().Add(-time.Minute),
		Results: []StageResult{
			{Name: "build-test", Outcome: OutcomeSuccess, Duration: 30 * time.Second},
			{Name: "deploy", Outcome: OutcomeFailure, Duration: 5 * time.Second, Detail: "rollout failed"},
			{Name: "verify-deployment", Outcome: OutcomeSkipped},
		},
		FailedStage: "deploy",
		Err:         errors.New("stage deploy failed: rollout failed"),
		Finished:    time.Now(),
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, sampleRun())

	out := buf.String()
	for _, want := range []string{"run-1", "build-test", "deploy", "rollout failed", "Skipped"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected summary to contain %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "Pipeline failed at stage deploy") {
		t.Errorf("expected failure line, got:\n%s", out)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleRun()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var report struct {
		ID          string `json:"id"`
		Succeeded   bool   `json:"succeeded"`
		FailedStage string `json:"failedStage"`
		Stages      []struct {
			Name    string `json:"name"`
			Outcome string `json:"outcome"`
		} `json:"stages"`
	}
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	if report.ID != "run-1" || report.Succeeded || report.FailedStage != "deploy" {
		t.Errorf("unexpected report header: %+v", report)
	}
	if len(report.Stages) != 3 {
		t.Fatalf("expected 3 stage entries, got %d", len(report.Stages))
	}
	if report.Stages[2].Outcome != "Skipped" {
		t.Errorf("expected skipped outcome serialized, got %q", report.Stages[2].Outcome)
	}
}
