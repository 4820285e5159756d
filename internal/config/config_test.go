package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Tools.Docker != "auto" {
		t.Errorf("expected docker tool default %q, got %q", "auto", cfg.Tools.Docker)
	}
	if cfg.Archive.Dir != DefaultArchiveDir {
		t.Errorf("expected archive dir %q, got %q", DefaultArchiveDir, cfg.Archive.Dir)
	}
	if cfg.QualityGateTimeout() != DefaultQualityGateTimeout {
		t.Errorf("expected gate timeout %s, got %s", DefaultQualityGateTimeout, cfg.QualityGateTimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	path := writeConfig(t, `
tools:
  helm: /opt/helm/bin/helm
timeouts:
  quality_gate: 60
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Tools.Helm != "/opt/helm/bin/helm" {
		t.Errorf("expected helm override, got %q", cfg.Tools.Helm)
	}
	// Unset values keep their defaults
	if cfg.Tools.Docker != "auto" {
		t.Errorf("expected docker default preserved, got %q", cfg.Tools.Docker)
	}
	if cfg.QualityGateTimeout() != time.Minute {
		t.Errorf("expected gate timeout 1m, got %s", cfg.QualityGateTimeout())
	}
	if cfg.DeployWaitTimeout() != DefaultDeployWaitTimeout {
		t.Errorf("expected deploy wait default preserved, got %s", cfg.DeployWaitTimeout())
	}
}

func TestLoadExplicitPathMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
archive:
  dir: from-file
`)
	t.Setenv(EnvArchiveDir, "from-env")
	t.Setenv(EnvHelmPath, "/env/helm")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Archive.Dir != "from-env" {
		t.Errorf("env must override file, got %q", cfg.Archive.Dir)
	}
	if cfg.Tools.Helm != "/env/helm" {
		t.Errorf("expected helm from env, got %q", cfg.Tools.Helm)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "tools: [not a map")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "negative gate timeout",
			mutate:  func(c *Config) { c.Timeouts.QualityGate = -1 },
			wantErr: "quality gate",
		},
		{
			name:    "negative deploy wait",
			mutate:  func(c *Config) { c.Timeouts.DeployWait = -5 },
			wantErr: "deploy wait",
		},
		{
			name:    "empty archive dir",
			mutate:  func(c *Config) { c.Archive.Dir = "" },
			wantErr: "archive dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Tools.Kubectl = "/custom/kubectl"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Tools.Kubectl != "/custom/kubectl" {
		t.Errorf("expected kubectl %q after round trip, got %q", "/custom/kubectl", loaded.Tools.Kubectl)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# deploy-man configuration file") {
		t.Error("expected saved config to carry the header comment")
	}
}

func TestFindBinaryExplicitPath(t *testing.T) {
	path, err := FindBinary("/custom/path/helm", BinaryHelm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/custom/path/helm" {
		t.Errorf("explicit path must be used as-is, got %q", path)
	}
}

func TestFindBinaryAuto(t *testing.T) {
	// sh is on PATH everywhere the tests run
	path, err := FindBinary("auto", "sh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path == "" {
		t.Error("expected a resolved path")
	}
}

func TestFindBinaryNotFound(t *testing.T) {
	if _, err := FindBinary("", "definitely-not-a-real-binary-12345"); err == nil {
		t.Fatal("expected error for unresolvable binary")
	}
}
