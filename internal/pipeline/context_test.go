package pipeline

import (
	"testing"
	"time"

	"github.com/deploy-man/deploy-man/internal/config"
	"github.com/deploy-man/deploy-man/internal/testutil"
)

func TestNewStageContext(t *testing.T) {
	def := validDefinition()
	cfg := config.DefaultConfig()

	sc, err := NewStageContext(def, cfg, testutil.TestBuildNumber)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sc.ImageTag != "42" {
		t.Errorf("expected tag from build number, got %q", sc.ImageTag)
	}
	if sc.ImageRef() != testutil.TestImageRepository+":42" {
		t.Errorf("unexpected image ref %q", sc.ImageRef())
	}
	if sc.SeverityFilter != config.DefaultSeverityFilter {
		t.Errorf("expected default severity filter, got %q", sc.SeverityFilter)
	}
	if sc.DeployWaitTimeout != config.DefaultDeployWaitTimeout {
		t.Errorf("expected default deploy wait, got %s", sc.DeployWaitTimeout)
	}
	if sc.AnalysisServer != "" {
		t.Error("expected no analysis server without analysis config")
	}
}

func TestNewStageContextBuildNumberFromEnv(t *testing.T) {
	testutil.SetEnv(t, config.EnvBuildNumber, "777")

	sc, err := NewStageContext(validDefinition(), config.DefaultConfig(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.ImageTag != "777" {
		t.Errorf("expected tag from BUILD_NUMBER, got %q", sc.ImageTag)
	}
}

func TestNewStageContextFallbackTag(t *testing.T) {
	testutil.UnsetEnv(t, config.EnvBuildNumber)

	sc, err := NewStageContext(validDefinition(), config.DefaultConfig(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.ImageTag == "" {
		t.Error("expected a generated tag when no build number is available")
	}
}

func TestNewStageContextDefinitionOverrides(t *testing.T) {
	def := validDefinition()
	def.Spec.Analysis = &AnalysisConfig{
		Server:       "https://sonar.example.com",
		ProjectKey:   "hospital-app",
		CredentialID: "sonar-token",
		Gate:         GateConfig{TimeoutSeconds: 90, AbortOnFailure: true},
	}
	def.Spec.Scan = &ScanConfig{Severity: "CRITICAL", FailOnVulnerability: true}
	def.Spec.Deploy.WaitTimeoutSeconds = 600
	def.Spec.Archive = &ArchiveConfig{Patterns: []string{"dist/*.tgz"}}

	sc, err := NewStageContext(def, config.DefaultConfig(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sc.GateTimeout != 90*time.Second {
		t.Errorf("expected gate timeout 90s, got %s", sc.GateTimeout)
	}
	if !sc.AbortOnGateFailure {
		t.Error("expected abort on gate failure")
	}
	if sc.SeverityFilter != "CRITICAL" {
		t.Errorf("expected severity CRITICAL, got %q", sc.SeverityFilter)
	}
	if !sc.FailOnVulnerability {
		t.Error("expected fail on vulnerability")
	}
	if sc.DeployWaitTimeout != 10*time.Minute {
		t.Errorf("expected deploy wait 10m, got %s", sc.DeployWaitTimeout)
	}
	if len(sc.ArchivePatterns) != 1 || sc.ArchivePatterns[0] != "dist/*.tgz" {
		t.Errorf("expected archive patterns from definition, got %v", sc.ArchivePatterns)
	}
}

func TestNewStageContextRejectsZeroTimeouts(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Timeouts.DeployWait = 0

	if _, err := NewStageContext(validDefinition(), cfg, "1"); err == nil {
		t.Fatal("expected error for zero deploy wait timeout")
	}
}
