package pipeline

import (
	"strings"

	"github.com/deploy-man/deploy-man/internal/config"
	"github.com/deploy-man/deploy-man/internal/docker"
	"github.com/deploy-man/deploy-man/internal/helm"
	"github.com/deploy-man/deploy-man/internal/kubectl"
)

// PlanCommands renders the main collaborator command a stage would execute,
// for dry-run display. Built from the same pure argument builders the stages
// use, so the plan cannot drift from the execution.
func PlanCommands(stageName string, sc StageContext) []string {
	deployOpts := helm.DeployOptions{
		Release:         sc.ReleaseName,
		Namespace:       sc.Namespace,
		ChartPath:       sc.ChartPath,
		ImageRepository: sc.ImageRepository,
		ImageTag:        sc.ImageTag,
		Timeout:         sc.DeployWaitTimeout,
	}

	switch stageName {
	case StageCheckout:
		if sc.SourceRepo != "" {
			return []string{render(config.BinaryGit, "clone", sc.SourceRepo, ".")}
		}
		return []string{render(config.BinaryGit, "rev-parse", "HEAD")}

	case StageStaticAnalysis:
		return []string{render(config.BinaryMaven,
			"-B", "sonar:sonar",
			"-Dsonar.host.url="+sc.AnalysisServer,
			"-Dsonar.projectKey="+sc.ProjectKey)}

	case StageQualityGate:
		return []string{"(poll " + sc.AnalysisServer + "/api/qualitygates/project_status?projectKey=" + sc.ProjectKey + ")"}

	case StageBuildTest:
		return []string{render(config.BinaryMaven, "-B", "test")}

	case StagePackage:
		return []string{render(config.BinaryMaven, "-B", "package", "-DskipTests")}

	case StageImageBuild:
		args := docker.BuildArgs(docker.BuildOptions{
			Context:    sc.WorkDir,
			Dockerfile: sc.Dockerfile,
			Tag:        sc.ImageRef(),
		})
		return []string{render(config.BinaryDocker, args...)}

	case StageScan:
		return []string{render(config.BinaryTrivy,
			"image", "--severity", sc.SeverityFilter,
			"--format", "json", "--output", sc.ScanReportFile,
			sc.ImageRef())}

	case StagePublish:
		return []string{
			render(config.BinaryDocker, "login", "--username", "<username>", "--password-stdin"),
			render(config.BinaryDocker, "push", sc.ImageRef()),
			render(config.BinaryDocker, "logout"),
		}

	case StageDeploy:
		return []string{
			render(config.BinaryHelm, "status", sc.ReleaseName, "-o", "json", "--namespace", sc.Namespace),
			render(config.BinaryHelm, helm.DeployArgs("install|upgrade", deployOpts)...),
		}

	case StageVerify:
		return []string{
			render(config.BinaryKubectl, kubectl.RolloutArgs(sc.ReleaseName, sc.Namespace, sc.DeployWaitTimeout)...),
			render(config.BinaryKubectl, kubectl.WaitReadyArgs(sc.ReleaseName, sc.Namespace, sc.DeployWaitTimeout)...),
		}

	case StageCleanupImage:
		return []string{render(config.BinaryDocker, "rmi", "-f", sc.ImageRef())}

	case StageArchive:
		return []string{"(copy " + strings.Join(sc.ArchivePatterns, ", ") + " to " + sc.ArchiveDir + ")"}

	default:
		return nil
	}
}

func render(name string, args ...string) string {
	return name + " " + strings.Join(args, " ")
}
