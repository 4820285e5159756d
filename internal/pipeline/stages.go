package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deploy-man/deploy-man/internal/cmdexec"
	"github.com/deploy-man/deploy-man/internal/config"
	"github.com/deploy-man/deploy-man/internal/creds"
	"github.com/deploy-man/deploy-man/internal/docker"
	"github.com/deploy-man/deploy-man/internal/helm"
	"github.com/deploy-man/deploy-man/internal/kubectl"
	"github.com/deploy-man/deploy-man/internal/qualitygate"
	"github.com/sirupsen/logrus"
)

// Stage names, in pipeline order
const (
	StageCheckout       = "checkout"
	StageStaticAnalysis = "static-analysis"
	StageQualityGate    = "quality-gate"
	StageBuildTest      = "build-test"
	StagePackage        = "package"
	StageImageBuild     = "image-build"
	StageScan           = "vulnerability-scan"
	StagePublish        = "publish"
	StageDeploy         = "deploy"
	StageVerify         = "verify-deployment"
	StageCleanupImage   = "cleanup-image"
	StageArchive        = "archive-artifacts"
)

// Toolset bundles the collaborator clients the stages drive. Tests substitute
// a fake runner or gate source; production wiring comes from NewToolset.
type Toolset struct {
	Runner cmdexec.Runner

	GitBinary   string
	MavenBinary string
	TrivyBinary string

	Docker   *docker.Client
	Helm     *helm.Client
	Resolver *helm.Resolver
	Kubectl  *kubectl.Client

	Creds creds.Store

	// GateSource, when non-nil, replaces the HTTP gate source
	GateSource qualitygate.Source
}

// NewToolset resolves every collaborator binary from the host configuration
func NewToolset(cfg *config.Config, runner cmdexec.Runner) (*Toolset, error) {
	git, err := config.FindBinary(cfg.Tools.Git, config.BinaryGit)
	if err != nil {
		return nil, err
	}
	maven, err := config.FindBinary(cfg.Tools.Maven, config.BinaryMaven)
	if err != nil {
		return nil, err
	}
	trivy, err := config.FindBinary(cfg.Tools.Trivy, config.BinaryTrivy)
	if err != nil {
		return nil, err
	}
	dockerClient, err := docker.NewClient(cfg, runner)
	if err != nil {
		return nil, err
	}
	helmClient, err := helm.NewClient(cfg, runner)
	if err != nil {
		return nil, err
	}
	kubectlClient, err := kubectl.NewClient(cfg, runner)
	if err != nil {
		return nil, err
	}

	return &Toolset{
		Runner:      runner,
		GitBinary:   git,
		MavenBinary: maven,
		TrivyBinary: trivy,
		Docker:      dockerClient,
		Helm:        helmClient,
		Resolver:    helm.NewResolver(helmClient),
		Kubectl:     kubectlClient,
		Creds:       creds.NewEnvStore(),
	}, nil
}

// BuildStages assembles the pipeline for the given context. Analysis stages
// are only present when the definition configures an analysis server; the
// cleanup and archive tail is always present.
func BuildStages(ts *Toolset, sc StageContext) []Stage {
	stages := []Stage{
		{Name: StageCheckout, Action: ts.checkout},
	}

	if sc.AnalysisServer != "" {
		stages = append(stages,
			Stage{Name: StageStaticAnalysis, Action: ts.staticAnalysis},
			Stage{Name: StageQualityGate, Action: ts.qualityGate},
		)
	}

	stages = append(stages,
		Stage{Name: StageBuildTest, Action: ts.buildTest},
		Stage{Name: StagePackage, Action: ts.packageArtifact},
		Stage{Name: StageImageBuild, Action: ts.imageBuild},
		Stage{Name: StageScan, Action: ts.vulnerabilityScan},
		Stage{Name: StagePublish, Action: ts.publish},
		Stage{Name: StageDeploy, Action: ts.deploy},
		Stage{Name: StageVerify, Action: ts.verifyDeployment},
		Stage{Name: StageCleanupImage, BestEffort: true, Action: ts.cleanupImage},
		Stage{Name: StageArchive, AlwaysRun: true, Action: ts.archiveArtifacts},
	)

	return stages
}

// checkout prepares the workspace. With a configured repo it clones (or
// updates) the source; otherwise the workspace is assumed pre-checked-out and
// only the current commit is recorded.
func (ts *Toolset) checkout(ctx context.Context, sc StageContext) error {
	if sc.SourceRepo != "" {
		if _, err := os.Stat(filepath.Join(sc.WorkDir, ".git")); os.IsNotExist(err) {
			if _, err := ts.Runner.Run(ctx, cmdexec.Spec{
				Name: ts.GitBinary,
				Args: []string{"clone", sc.SourceRepo, "."},
				Dir:  sc.WorkDir,
			}); err != nil {
				return err
			}
		} else {
			if _, err := ts.Runner.Run(ctx, cmdexec.Spec{
				Name: ts.GitBinary,
				Args: []string{"fetch", "--all"},
				Dir:  sc.WorkDir,
			}); err != nil {
				return err
			}
		}
		if sc.SourceRef != "" {
			if _, err := ts.Runner.Run(ctx, cmdexec.Spec{
				Name: ts.GitBinary,
				Args: []string{"checkout", sc.SourceRef},
				Dir:  sc.WorkDir,
			}); err != nil {
				return err
			}
		}
	}

	res, err := ts.Runner.Run(ctx, cmdexec.Spec{
		Name: ts.GitBinary,
		Args: []string{"rev-parse", "HEAD"},
		Dir:  sc.WorkDir,
	})
	if err != nil {
		return fmt.Errorf("workspace is not a git checkout: %w", err)
	}
	logrus.Infof("Building commit %s", strings.TrimSpace(res.Stdout))
	return nil
}

// staticAnalysis submits the project to the analysis server. The token is
// passed through the environment so it never appears in the argument list.
func (ts *Toolset) staticAnalysis(ctx context.Context, sc StageContext) error {
	cred, err := ts.Creds.Lookup(sc.AnalysisCredentialID)
	if err != nil {
		return err
	}

	_, err = ts.Runner.Run(ctx, cmdexec.Spec{
		Name: ts.MavenBinary,
		Args: []string{
			"-B", "sonar:sonar",
			"-Dsonar.host.url=" + sc.AnalysisServer,
			"-Dsonar.projectKey=" + sc.ProjectKey,
		},
		Env: []string{"SONAR_TOKEN=" + cred.Secret},
		Dir: sc.WorkDir,
	})
	return err
}

// qualityGate waits for the analysis verdict within the configured bound and
// applies the abort policy.
func (ts *Toolset) qualityGate(ctx context.Context, sc StageContext) error {
	source := ts.GateSource
	if source == nil {
		cred, err := ts.Creds.Lookup(sc.AnalysisCredentialID)
		if err != nil {
			return err
		}
		source = qualitygate.NewHTTPSource(sc.AnalysisServer, sc.ProjectKey, cred)
	}

	waiter := qualitygate.NewWaiter(source, sc.GatePollInterval)
	res, err := waiter.Await(ctx, sc.GateTimeout)
	if err != nil {
		return err
	}
	logrus.Infof("Quality gate verdict: %s", res.Status)
	return qualitygate.Escalate(res, sc.AbortOnGateFailure)
}

// buildTest compiles and runs the test suite
func (ts *Toolset) buildTest(ctx context.Context, sc StageContext) error {
	_, err := ts.Runner.Run(ctx, cmdexec.Spec{
		Name: ts.MavenBinary,
		Args: []string{"-B", "test"},
		Dir:  sc.WorkDir,
	})
	return err
}

// packageArtifact produces the deployable artifact; tests already ran
func (ts *Toolset) packageArtifact(ctx context.Context, sc StageContext) error {
	_, err := ts.Runner.Run(ctx, cmdexec.Spec{
		Name: ts.MavenBinary,
		Args: []string{"-B", "package", "-DskipTests"},
		Dir:  sc.WorkDir,
	})
	return err
}

// imageBuild builds the container image tagged for this run
func (ts *Toolset) imageBuild(ctx context.Context, sc StageContext) error {
	return ts.Docker.Build(ctx, docker.BuildOptions{
		Context:    sc.WorkDir,
		Dockerfile: sc.Dockerfile,
		Tag:        sc.ImageRef(),
	})
}

// vulnerabilityScan scans the built image and writes a JSON report. Findings
// fail the stage only when the definition says so; the report is written
// either way so archival picks it up.
func (ts *Toolset) vulnerabilityScan(ctx context.Context, sc StageContext) error {
	args := []string{
		"image",
		"--severity", sc.SeverityFilter,
		"--format", "json",
		"--output", sc.ScanReportFile,
	}
	if sc.FailOnVulnerability {
		args = append(args, "--exit-code", "1")
	} else {
		args = append(args, "--exit-code", "0")
	}
	args = append(args, sc.ImageRef())

	res, err := ts.Runner.Run(ctx, cmdexec.Spec{
		Name: ts.TrivyBinary,
		Args: args,
		Dir:  sc.WorkDir,
	})
	if err != nil {
		if sc.FailOnVulnerability && res.ExitCode == 1 {
			return fmt.Errorf("vulnerabilities at severity %s found in %s: %w", sc.SeverityFilter, sc.ImageRef(), err)
		}
		return err
	}
	return nil
}

// publish pushes the image inside a credential scope: login on entry, logout
// guaranteed on every exit path.
func (ts *Toolset) publish(ctx context.Context, sc StageContext) error {
	registry := sc.RegistryHost
	if registry == "" {
		registry = registryOf(sc.ImageRepository)
	}

	return creds.WithCredential(ctx, ts.Creds, sc.RegistryCredentialID,
		func(ctx context.Context, _ creds.Credential) error {
			return ts.Docker.Logout(ctx, registry)
		},
		func(ctx context.Context, cred creds.Credential) error {
			if err := ts.Docker.Login(ctx, registry, cred); err != nil {
				return err
			}
			return ts.Docker.Push(ctx, sc.ImageRef())
		})
}

// registryOf extracts the registry host from a full image repository. Only a
// first segment containing a dot, a colon or "localhost" is a registry;
// anything else means the default registry.
func registryOf(repository string) string {
	first, _, found := strings.Cut(repository, "/")
	if !found {
		return ""
	}
	if strings.ContainsAny(first, ".:") || first == "localhost" {
		return first
	}
	return ""
}

// deploy resolves the release state and converges the cluster on this run's
// image: upgrade when the release exists, install when it does not.
func (ts *Toolset) deploy(ctx context.Context, sc StageContext) error {
	state, err := ts.Resolver.Resolve(ctx, sc.ReleaseName, sc.Namespace)
	if err != nil {
		return err
	}

	return ts.Resolver.Deploy(ctx, state, helm.DeployOptions{
		Release:         sc.ReleaseName,
		Namespace:       sc.Namespace,
		ChartPath:       sc.ChartPath,
		ImageRepository: sc.ImageRepository,
		ImageTag:        sc.ImageTag,
		Timeout:         sc.DeployWaitTimeout,
	})
}

// verifyDeployment waits for the rollout to finish and every pod of the
// release to report ready.
func (ts *Toolset) verifyDeployment(ctx context.Context, sc StageContext) error {
	if err := ts.Kubectl.RolloutStatus(ctx, sc.ReleaseName, sc.Namespace, sc.DeployWaitTimeout); err != nil {
		return err
	}
	return ts.Kubectl.WaitReady(ctx, sc.ReleaseName, sc.Namespace, sc.DeployWaitTimeout)
}

// cleanupImage removes the local image; the registry holds the pushed copy
func (ts *Toolset) cleanupImage(ctx context.Context, sc StageContext) error {
	return ts.Docker.ImageRemove(ctx, sc.ImageRef(), true)
}

// archiveArtifacts collects build outputs into the archive directory
func (ts *Toolset) archiveArtifacts(_ context.Context, sc StageContext) error {
	archiver := NewArchiver(sc.WorkDir, sc.ArchiveDir)
	artifacts, err := archiver.Archive(sc.ArchivePatterns)
	for _, a := range artifacts {
		logrus.Infof("Archived %s", a.SourcePath)
	}
	return err
}
