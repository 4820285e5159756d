// Package config provides configuration management for deploy-man.
// This file contains all default values and constants used throughout the
// application. All configurable defaults are centralized here.
package config

import "time"

// =============================================================================
// Pipeline definition
// =============================================================================

const (
	// DefaultPipelineFileName is the default pipeline definition file name
	DefaultPipelineFileName = "deploy-pipeline.yaml"
	// PipelineAPIVersion is the supported pipeline definition apiVersion
	PipelineAPIVersion = "deploy-man/v1"
	// PipelineKind is the supported pipeline definition kind
	PipelineKind = "Pipeline"
)

// =============================================================================
// Collaborator binaries
// =============================================================================

const (
	// BinaryGit is the source control binary
	BinaryGit = "git"
	// BinaryMaven is the build tool binary
	BinaryMaven = "mvn"
	// BinaryDocker is the container engine binary
	BinaryDocker = "docker"
	// BinaryTrivy is the vulnerability scanner binary
	BinaryTrivy = "trivy"
	// BinaryHelm is the chart manager binary
	BinaryHelm = "helm"
	// BinaryKubectl is the cluster CLI binary
	BinaryKubectl = "kubectl"
)

// =============================================================================
// Scanning
// =============================================================================

const (
	// DefaultSeverityFilter is the default vulnerability severity filter
	DefaultSeverityFilter = "HIGH,CRITICAL"
	// DefaultScanReportFile is the default vulnerability report output path
	DefaultScanReportFile = "trivy-report.json"
)

// =============================================================================
// Timeouts
// =============================================================================

const (
	// DefaultQualityGateTimeout bounds the wait for an analysis verdict
	DefaultQualityGateTimeout = 5 * time.Minute
	// DefaultQualityGatePollInterval is the verdict poll interval
	DefaultQualityGatePollInterval = 5 * time.Second
	// DefaultDeployWaitTimeout bounds the post-deploy readiness wait
	DefaultDeployWaitTimeout = 3 * time.Minute
)

// =============================================================================
// Archival
// =============================================================================

const (
	// DefaultArchiveDir is the directory artifacts are collected into
	DefaultArchiveDir = "archive"
)

// DefaultArchivePatterns are the artifact globs collected after every run
// when the pipeline definition does not declare its own.
var DefaultArchivePatterns = []string{
	"target/*.jar",
	"target/surefire-reports/*.xml",
	DefaultScanReportFile,
}

// =============================================================================
// Environment variable names for configuration overrides
// =============================================================================

const (
	EnvConfig      = "DEPLOYMAN_CONFIG"
	EnvArchiveDir  = "DEPLOYMAN_ARCHIVE_DIR"
	EnvDockerPath  = "DEPLOYMAN_DOCKER"
	EnvHelmPath    = "DEPLOYMAN_HELM"
	EnvKubectlPath = "DEPLOYMAN_KUBECTL"
	EnvBuildNumber = "BUILD_NUMBER"
)

// EnvCredPrefix is the prefix for environment-backed credentials.
// A credential id "registry-creds" resolves to
// DEPLOYMAN_CRED_REGISTRY_CREDS_USERNAME / DEPLOYMAN_CRED_REGISTRY_CREDS_SECRET.
const EnvCredPrefix = "DEPLOYMAN_CRED_"

// =============================================================================
// Output
// =============================================================================

// StageSeparator is the visual separator between pipeline stages
const StageSeparator = "────────────────────────────────────────────────────────────────────────────────"
