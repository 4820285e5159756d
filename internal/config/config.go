// Package config provides configuration management for deploy-man.
// The design follows a hierarchical config-file pattern with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config represents the deploy-man host configuration. Per-run parameters
// (image coordinates, namespace, release) live in the pipeline definition,
// not here.
type Config struct {
	Tools    ToolsConfig    `yaml:"tools"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`
}

// ToolsConfig contains collaborator binary settings.
// Each value is "auto", a bare binary name, or a full path.
type ToolsConfig struct {
	Git     string `yaml:"git"`
	Maven   string `yaml:"maven"`
	Docker  string `yaml:"docker"`
	Trivy   string `yaml:"trivy"`
	Helm    string `yaml:"helm"`
	Kubectl string `yaml:"kubectl"`
}

// ArchiveConfig contains artifact archival settings
type ArchiveConfig struct {
	// Directory artifacts are copied into after every run
	Dir string `yaml:"dir"`
}

// TimeoutsConfig contains timeout settings (in seconds)
type TimeoutsConfig struct {
	// Quality gate verdict wait in seconds
	QualityGate int `yaml:"quality_gate"`
	// Post-deploy readiness wait in seconds
	DeployWait int `yaml:"deploy_wait"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Tools: ToolsConfig{
			Git:     "auto",
			Maven:   "auto",
			Docker:  "auto",
			Trivy:   "auto",
			Helm:    "auto",
			Kubectl: "auto",
		},
		Archive: ArchiveConfig{
			Dir: DefaultArchiveDir,
		},
		Timeouts: TimeoutsConfig{
			QualityGate: int(DefaultQualityGateTimeout.Seconds()),
			DeployWait:  int(DefaultDeployWaitTimeout.Seconds()),
		},
	}
}

// configPaths returns the list of config file paths to check, in order of
// priority (later files override earlier ones)
func configPaths() []string {
	paths := []string{
		"/usr/share/deploy-man/config.yaml",
		"/etc/deploy-man/config.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "deploy-man", "config.yaml"))
	}
	return paths
}

// Load reads configuration from files and applies environment overrides:
// 1. Start with default values
// 2. Load system default config
// 3. Load system admin config
// 4. Load user config
// 5. Apply environment variable overrides
func Load(explicitPath string) (*Config, error) {
	cfg := DefaultConfig()

	// If explicit path is provided, only load that file
	if explicitPath != "" {
		if err := loadFile(cfg, explicitPath); err != nil {
			return nil, err
		}
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	if envPath := os.Getenv(EnvConfig); envPath != "" {
		if err := loadFile(cfg, envPath); err != nil {
			return nil, err
		}
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	var loadedAny bool
	for _, path := range configPaths() {
		if _, err := os.Stat(path); err == nil {
			logrus.Debugf("Loading config from %s", path)
			if err := loadFile(cfg, path); err != nil {
				logrus.Warnf("Failed to load config from %s: %v", path, err)
				continue
			}
			loadedAny = true
		}
	}

	if !loadedAny {
		logrus.Debug("No config files found, using defaults")
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// loadFile loads a single config file and merges it into the existing config
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	mergeConfig(cfg, &fileCfg)
	return nil
}

// mergeConfig merges src into dst, only overwriting non-zero values
func mergeConfig(dst, src *Config) {
	if src.Tools.Git != "" {
		dst.Tools.Git = src.Tools.Git
	}
	if src.Tools.Maven != "" {
		dst.Tools.Maven = src.Tools.Maven
	}
	if src.Tools.Docker != "" {
		dst.Tools.Docker = src.Tools.Docker
	}
	if src.Tools.Trivy != "" {
		dst.Tools.Trivy = src.Tools.Trivy
	}
	if src.Tools.Helm != "" {
		dst.Tools.Helm = src.Tools.Helm
	}
	if src.Tools.Kubectl != "" {
		dst.Tools.Kubectl = src.Tools.Kubectl
	}

	if src.Archive.Dir != "" {
		dst.Archive.Dir = src.Archive.Dir
	}

	if src.Timeouts.QualityGate != 0 {
		dst.Timeouts.QualityGate = src.Timeouts.QualityGate
	}
	if src.Timeouts.DeployWait != 0 {
		dst.Timeouts.DeployWait = src.Timeouts.DeployWait
	}
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvArchiveDir); v != "" {
		cfg.Archive.Dir = v
	}
	if v := os.Getenv(EnvDockerPath); v != "" {
		cfg.Tools.Docker = v
	}
	if v := os.Getenv(EnvHelmPath); v != "" {
		cfg.Tools.Helm = v
	}
	if v := os.Getenv(EnvKubectlPath); v != "" {
		cfg.Tools.Kubectl = v
	}
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# deploy-man configuration file
#
# Configuration is loaded in the following order (later overrides earlier):
# 1. /usr/share/deploy-man/config.yaml (system default)
# 2. /etc/deploy-man/config.yaml (system admin)
# 3. ~/.config/deploy-man/config.yaml (user)
# 4. Environment variables (DEPLOYMAN_*)
# 5. Command-line flags
#
`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []string

	if c.Timeouts.QualityGate < 0 {
		errs = append(errs, fmt.Sprintf("invalid quality gate timeout: %d", c.Timeouts.QualityGate))
	}
	if c.Timeouts.DeployWait < 0 {
		errs = append(errs, fmt.Sprintf("invalid deploy wait timeout: %d", c.Timeouts.DeployWait))
	}
	if c.Archive.Dir == "" {
		errs = append(errs, "archive dir must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// UserConfigPath returns the path to the user's config file
func UserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "deploy-man", "config.yaml"), nil
}

// QualityGateTimeout returns the configured quality gate timeout as a duration
func (c *Config) QualityGateTimeout() time.Duration {
	return time.Duration(c.Timeouts.QualityGate) * time.Second
}

// DeployWaitTimeout returns the configured deploy wait timeout as a duration
func (c *Config) DeployWaitTimeout() time.Duration {
	return time.Duration(c.Timeouts.DeployWait) * time.Second
}
