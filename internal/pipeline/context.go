package pipeline

import (
	"fmt"
	"os"
	"time"

	"github.com/deploy-man/deploy-man/internal/config"
)

// StageContext carries the per-run parameters every stage reads. It is built
// once before the run and never mutated afterwards; stages communicate through
// the filesystem and the cluster, not through the context.
type StageContext struct {
	// Build identity
	BuildNumber string
	ImageTag    string

	// Source
	SourceRepo string
	SourceRef  string
	WorkDir    string

	// Analysis and quality gate
	AnalysisServer       string
	ProjectKey           string
	AnalysisCredentialID string
	GateTimeout          time.Duration
	GatePollInterval     time.Duration
	AbortOnGateFailure   bool

	// Image
	ImageRepository string
	Dockerfile      string

	// Scan
	SeverityFilter      string
	ScanReportFile      string
	FailOnVulnerability bool

	// Publish
	RegistryHost         string
	RegistryCredentialID string

	// Deploy
	Namespace         string
	ReleaseName       string
	ChartPath         string
	DeployWaitTimeout time.Duration

	// Archival
	ArchiveDir      string
	ArchivePatterns []string
}

// NewStageContext derives the immutable per-run context from the pipeline
// definition, the host configuration and the build number. The definition
// holds what to deploy; the config holds how this host runs tools.
func NewStageContext(def *Definition, cfg *config.Config, buildNumber string) (StageContext, error) {
	if buildNumber == "" {
		buildNumber = os.Getenv(config.EnvBuildNumber)
	}
	if buildNumber == "" {
		// No CI-provided build number: derive a tag that still changes
		// between runs.
		buildNumber = time.Now().Format("20060102-150405")
	}

	sc := StageContext{
		BuildNumber: buildNumber,
		ImageTag:    buildNumber,

		WorkDir: def.BaseDir(),

		ImageRepository: def.Spec.Image.Repository,
		Dockerfile:      def.ResolveDockerfilePath(),

		SeverityFilter: config.DefaultSeverityFilter,
		ScanReportFile: config.DefaultScanReportFile,

		RegistryCredentialID: def.Spec.Publish.CredentialID,
		RegistryHost:         def.Spec.Publish.Registry,

		Namespace:         def.Spec.Deploy.Namespace,
		ReleaseName:       def.Spec.Deploy.Release,
		ChartPath:         def.ResolveChartPath(),
		DeployWaitTimeout: cfg.DeployWaitTimeout(),

		GateTimeout:      cfg.QualityGateTimeout(),
		GatePollInterval: config.DefaultQualityGatePollInterval,

		ArchiveDir:      cfg.Archive.Dir,
		ArchivePatterns: config.DefaultArchivePatterns,
	}

	if def.Spec.Source != nil {
		sc.SourceRepo = def.Spec.Source.Repo
		sc.SourceRef = def.Spec.Source.Ref
	}

	if def.Spec.Analysis != nil {
		sc.AnalysisServer = def.Spec.Analysis.Server
		sc.ProjectKey = def.Spec.Analysis.ProjectKey
		sc.AnalysisCredentialID = def.Spec.Analysis.CredentialID
		sc.AbortOnGateFailure = def.Spec.Analysis.Gate.AbortOnFailure
		if def.Spec.Analysis.Gate.TimeoutSeconds > 0 {
			sc.GateTimeout = time.Duration(def.Spec.Analysis.Gate.TimeoutSeconds) * time.Second
		}
	}

	if def.Spec.Scan != nil {
		if def.Spec.Scan.Severity != "" {
			sc.SeverityFilter = def.Spec.Scan.Severity
		}
		if def.Spec.Scan.ReportFile != "" {
			sc.ScanReportFile = def.Spec.Scan.ReportFile
		}
		sc.FailOnVulnerability = def.Spec.Scan.FailOnVulnerability
	}

	if def.Spec.Deploy.WaitTimeoutSeconds > 0 {
		sc.DeployWaitTimeout = time.Duration(def.Spec.Deploy.WaitTimeoutSeconds) * time.Second
	}

	if def.Spec.Archive != nil && len(def.Spec.Archive.Patterns) > 0 {
		sc.ArchivePatterns = def.Spec.Archive.Patterns
	}

	if sc.GateTimeout <= 0 {
		return StageContext{}, fmt.Errorf("quality gate timeout must be positive, got %s", sc.GateTimeout)
	}
	if sc.DeployWaitTimeout <= 0 {
		return StageContext{}, fmt.Errorf("deploy wait timeout must be positive, got %s", sc.DeployWaitTimeout)
	}

	return sc, nil
}

// ImageRef returns the fully qualified image reference for this run
func (sc StageContext) ImageRef() string {
	return sc.ImageRepository + ":" + sc.ImageTag
}
