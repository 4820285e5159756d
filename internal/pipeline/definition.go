// Package pipeline defines and executes the deployment pipeline.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/deploy-man/deploy-man/internal/config"
	"gopkg.in/yaml.v3"
)

// Definition represents a deploy-man pipeline definition
type Definition struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       Spec     `yaml:"spec"`
	baseDir    string   // Directory of the definition file (for resolving relative paths)
}

// Metadata contains pipeline metadata
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// Spec contains the pipeline specification
type Spec struct {
	Source   *SourceConfig   `yaml:"source,omitempty"`
	Analysis *AnalysisConfig `yaml:"analysis,omitempty"`
	Image    ImageConfig     `yaml:"image"`
	Scan     *ScanConfig     `yaml:"scan,omitempty"`
	Publish  PublishConfig   `yaml:"publish"`
	Deploy   DeployConfig    `yaml:"deploy"`
	Archive  *ArchiveConfig  `yaml:"archive,omitempty"`
}

// SourceConfig defines where the source comes from. When omitted, the
// working directory is assumed to be a pre-checked-out workspace.
type SourceConfig struct {
	Repo string `yaml:"repo,omitempty"`
	Ref  string `yaml:"ref,omitempty"`
}

// AnalysisConfig defines static analysis and quality gate settings
type AnalysisConfig struct {
	Server       string     `yaml:"server"`
	ProjectKey   string     `yaml:"projectKey"`
	CredentialID string     `yaml:"credentialId"`
	Gate         GateConfig `yaml:"gate,omitempty"`
}

// GateConfig defines quality gate wait settings. AbortOnFailure is an
// explicit, testable flag: this policy has flipped across revisions of the
// pipeline and must never be a hidden default.
type GateConfig struct {
	TimeoutSeconds int  `yaml:"timeoutSeconds,omitempty"`
	AbortOnFailure bool `yaml:"abortOnFailure"`
}

// ImageConfig defines container image settings
type ImageConfig struct {
	// Repository is the full image repository (registry/namespace/name)
	Repository string `yaml:"repository"`
	// Dockerfile path, relative to the definition file
	Dockerfile string `yaml:"dockerfile,omitempty"`
}

// ScanConfig defines vulnerability scan settings
type ScanConfig struct {
	Severity            string `yaml:"severity,omitempty"`
	ReportFile          string `yaml:"reportFile,omitempty"`
	FailOnVulnerability bool   `yaml:"failOnVulnerability,omitempty"`
}

// PublishConfig defines registry publication settings
type PublishConfig struct {
	// Registry host used for login; defaults to the repository's registry
	Registry     string `yaml:"registry,omitempty"`
	CredentialID string `yaml:"credentialId"`
}

// DeployConfig defines cluster rollout settings
type DeployConfig struct {
	Namespace          string `yaml:"namespace"`
	Release            string `yaml:"release"`
	ChartPath          string `yaml:"chartPath"`
	WaitTimeoutSeconds int    `yaml:"waitTimeoutSeconds,omitempty"`
}

// ArchiveConfig defines artifact archival settings
type ArchiveConfig struct {
	Patterns []string `yaml:"patterns,omitempty"`
}

// LoadDefinition loads a pipeline definition from a YAML file
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline file %s: %w", path, err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline file %s: %w", path, err)
	}

	// Set base directory for resolving relative paths
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve pipeline file path: %w", err)
	}
	def.baseDir = filepath.Dir(absPath)

	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline definition: %w", err)
	}

	return &def, nil
}

// Validate validates the pipeline definition
func (d *Definition) Validate() error {
	if d.APIVersion == "" {
		return fmt.Errorf("apiVersion is required")
	}
	if d.APIVersion != config.PipelineAPIVersion {
		return fmt.Errorf("unsupported apiVersion: %s (expected %s)", d.APIVersion, config.PipelineAPIVersion)
	}

	if d.Kind == "" {
		return fmt.Errorf("kind is required")
	}
	if d.Kind != config.PipelineKind {
		return fmt.Errorf("unsupported kind: %s (expected %s)", d.Kind, config.PipelineKind)
	}

	if d.Metadata.Name == "" {
		return fmt.Errorf("metadata.name is required")
	}

	if d.Spec.Image.Repository == "" {
		return fmt.Errorf("spec.image.repository is required")
	}

	if d.Spec.Publish.CredentialID == "" {
		return fmt.Errorf("spec.publish.credentialId is required")
	}

	if d.Spec.Deploy.Release == "" {
		return fmt.Errorf("spec.deploy.release is required")
	}
	if d.Spec.Deploy.ChartPath == "" {
		return fmt.Errorf("spec.deploy.chartPath is required")
	}

	if d.Spec.Analysis != nil {
		if d.Spec.Analysis.Server == "" {
			return fmt.Errorf("spec.analysis.server is required when analysis is configured")
		}
		if d.Spec.Analysis.ProjectKey == "" {
			return fmt.Errorf("spec.analysis.projectKey is required when analysis is configured")
		}
		if d.Spec.Analysis.CredentialID == "" {
			return fmt.Errorf("spec.analysis.credentialId is required when analysis is configured")
		}
	}

	return nil
}

// ResolveChartPath returns the absolute path to the chart
func (d *Definition) ResolveChartPath() string {
	if filepath.IsAbs(d.Spec.Deploy.ChartPath) {
		return d.Spec.Deploy.ChartPath
	}
	return filepath.Join(d.baseDir, d.Spec.Deploy.ChartPath)
}

// ResolveDockerfilePath returns the absolute path to the Dockerfile, or ""
// when none is configured (the engine's default is used).
func (d *Definition) ResolveDockerfilePath() string {
	df := d.Spec.Image.Dockerfile
	if df == "" {
		return ""
	}
	if filepath.IsAbs(df) {
		return df
	}
	return filepath.Join(d.baseDir, df)
}

// BaseDir returns the base directory of the definition file
func (d *Definition) BaseDir() string {
	return d.baseDir
}
