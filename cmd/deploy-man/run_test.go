package main

import (
	"strings"
	"testing"

	"github.com/deploy-man/deploy-man/internal/pipeline"
	"github.com/deploy-man/deploy-man/internal/testutil"
)

func TestFindPipelineFileUserSpecified(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "my-pipeline.yaml", testutil.SamplePipelineYAML())

	got, err := findPipelineFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != path {
		t.Errorf("expected %q, got %q", path, got)
	}
}

func TestFindPipelineFileUserSpecifiedMissing(t *testing.T) {
	_, err := findPipelineFile("/does/not/exist.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "/does/not/exist.yaml") {
		t.Errorf("expected error to name the file, got %v", err)
	}
}

func TestSelectStagesAll(t *testing.T) {
	stages := []pipeline.Stage{{Name: "a"}, {Name: "b"}}

	got, err := selectStages(stages, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected all stages, got %d", len(got))
	}
}

func TestSelectStagesSubsetKeepsOrder(t *testing.T) {
	stages := []pipeline.Stage{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	got, err := selectStages(stages, "c,a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Errorf("expected pipeline order preserved, got %v", got)
	}
}

func TestSelectStagesKeepsAlwaysRun(t *testing.T) {
	stages := []pipeline.Stage{
		{Name: "build"},
		{Name: "deploy"},
		{Name: "archive-artifacts", AlwaysRun: true},
	}

	got, err := selectStages(stages, "build")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "build" || got[1].Name != "archive-artifacts" {
		t.Errorf("always-run stages must survive subset selection, got %v", got)
	}
}

func TestSelectStagesUnknown(t *testing.T) {
	stages := []pipeline.Stage{{Name: "a"}}

	_, err := selectStages(stages, "a,nope")
	if err == nil {
		t.Fatal("expected error for unknown stage")
	}
	if !strings.Contains(err.Error(), "nope") {
		t.Errorf("expected error to name the unknown stage, got %v", err)
	}
}

func TestRootCommandRegistration(t *testing.T) {
	for _, name := range []string{"run", "check", "config", "version", "completion"} {
		found := false
		for _, cmd := range rootCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected %q command to be registered", name)
		}
	}
}
