package pipeline

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/deploy-man/deploy-man/internal/testutil"
)

func TestLoadDefinition(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "deploy-pipeline.yaml", testutil.SamplePipelineYAML())

	def, err := LoadDefinition(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if def.Metadata.Name != "test-pipeline" {
		t.Errorf("expected name %q, got %q", "test-pipeline", def.Metadata.Name)
	}
	if def.Spec.Image.Repository != testutil.TestImageRepository {
		t.Errorf("expected repository %q, got %q", testutil.TestImageRepository, def.Spec.Image.Repository)
	}
	if def.Spec.Deploy.Release != "hospital-app" {
		t.Errorf("expected release %q, got %q", "hospital-app", def.Spec.Deploy.Release)
	}
	if def.Spec.Analysis != nil {
		t.Error("expected no analysis config in minimal fixture")
	}
}

func TestLoadDefinitionWithAnalysis(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "deploy-pipeline.yaml", testutil.SamplePipelineYAMLWithAnalysis())

	def, err := LoadDefinition(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if def.Spec.Analysis == nil {
		t.Fatal("expected analysis config")
	}
	if !def.Spec.Analysis.Gate.AbortOnFailure {
		t.Error("expected abortOnFailure true")
	}
	if def.Spec.Analysis.Gate.TimeoutSeconds != 120 {
		t.Errorf("expected gate timeout 120, got %d", def.Spec.Analysis.Gate.TimeoutSeconds)
	}
	if def.Spec.Scan == nil || def.Spec.Scan.Severity != "CRITICAL" {
		t.Error("expected scan severity CRITICAL")
	}
}

func TestLoadDefinitionResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "deploy-pipeline.yaml", testutil.SamplePipelineYAMLWithAnalysis())

	def, err := LoadDefinition(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantChart := filepath.Join(dir, "charts/hospital-app")
	if def.ResolveChartPath() != wantChart {
		t.Errorf("expected chart path %q, got %q", wantChart, def.ResolveChartPath())
	}
	wantDockerfile := filepath.Join(dir, "Dockerfile")
	if def.ResolveDockerfilePath() != wantDockerfile {
		t.Errorf("expected dockerfile %q, got %q", wantDockerfile, def.ResolveDockerfilePath())
	}
}

func TestLoadDefinitionInvalid(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "deploy-pipeline.yaml", testutil.SamplePipelineYAMLInvalid())

	_, err := LoadDefinition(path)
	if err == nil {
		t.Fatal("expected error for definition missing required fields")
	}
	if !strings.Contains(err.Error(), "credentialId") {
		t.Errorf("expected error naming the missing field, got %v", err)
	}
}

func TestValidateVersionAndKind(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Definition)
		want   string
	}{
		{"missing apiVersion", func(d *Definition) { d.APIVersion = "" }, "apiVersion"},
		{"wrong apiVersion", func(d *Definition) { d.APIVersion = "other/v2" }, "unsupported apiVersion"},
		{"missing kind", func(d *Definition) { d.Kind = "" }, "kind"},
		{"wrong kind", func(d *Definition) { d.Kind = "Job" }, "unsupported kind"},
		{"missing name", func(d *Definition) { d.Metadata.Name = "" }, "metadata.name"},
		{"missing repository", func(d *Definition) { d.Spec.Image.Repository = "" }, "repository"},
		{"missing chart", func(d *Definition) { d.Spec.Deploy.ChartPath = "" }, "chartPath"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := validDefinition()
			tt.mutate(def)
			err := def.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func validDefinition() *Definition {
	return &Definition{
		APIVersion: "deploy-man/v1",
		Kind:       "Pipeline",
		Metadata:   Metadata{Name: "test"},
		Spec: Spec{
			Image:   ImageConfig{Repository: testutil.TestImageRepository},
			Publish: PublishConfig{CredentialID: "registry-creds"},
			Deploy:  DeployConfig{Namespace: "staging", Release: "app", ChartPath: "charts/app"},
		},
	}
}
