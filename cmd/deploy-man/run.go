package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/deploy-man/deploy-man/internal/cmdexec"
	"github.com/deploy-man/deploy-man/internal/config"
	"github.com/deploy-man/deploy-man/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	runPipelineFile string
	runStage        string
	runBuildNumber  string
)

var runCmd = &cobra.Command{
	Use:   "run [pipeline-file]",
	Short: "Run the deployment pipeline",
	Long: `Run the deployment pipeline defined in deploy-pipeline.yaml.

If no pipeline file is specified, deploy-pipeline.yaml in the current
directory is used.

Stages run strictly in order and the first failure aborts the rest, except
the cleanup and archival tail which always runs. Use --stage to run a subset
of stages only.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runPipelineFile, "pipeline", "p", "",
		"Path to pipeline definition file (default: deploy-pipeline.yaml in current directory)")
	runCmd.Flags().StringVar(&runStage, "stage", "",
		"Run specific stage(s) only (comma-separated)")
	runCmd.Flags().StringVar(&runBuildNumber, "build-number", "",
		"Build number for the image tag (default: $BUILD_NUMBER or a timestamp)")
}

// findPipelineFile finds the pipeline file, checking the default location
// when none is specified
func findPipelineFile(userSpecified string) (string, error) {
	if userSpecified != "" {
		if _, err := os.Stat(userSpecified); os.IsNotExist(err) {
			return "", fmt.Errorf("pipeline file not found: %s", userSpecified)
		}
		return userSpecified, nil
	}

	defaultFile := config.DefaultPipelineFileName
	if _, err := os.Stat(defaultFile); err == nil {
		return defaultFile, nil
	}

	return "", fmt.Errorf("pipeline file not found: %s (use --pipeline or specify as argument)", defaultFile)
}

// selectStages filters the assembled stages down to the requested subset,
// preserving pipeline order. Every requested name must exist. Always-run
// stages are kept regardless: the archival tail is part of every run.
func selectStages(stages []pipeline.Stage, requested string) ([]pipeline.Stage, error) {
	if requested == "" {
		return stages, nil
	}

	wanted := make(map[string]bool)
	for _, name := range strings.Split(requested, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		wanted[name] = true
	}

	var selected []pipeline.Stage
	for _, stage := range stages {
		if wanted[stage.Name] || stage.AlwaysRun {
			selected = append(selected, stage)
			delete(wanted, stage.Name)
		}
	}

	if len(wanted) > 0 {
		var unknown []string
		for name := range wanted {
			unknown = append(unknown, name)
		}
		return nil, fmt.Errorf("unknown stage(s): %s", strings.Join(unknown, ", "))
	}

	return selected, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	userSpecified := runPipelineFile
	if userSpecified == "" && len(args) > 0 {
		userSpecified = args[0]
	}

	pipelineFile, err := findPipelineFile(userSpecified)
	if err != nil {
		fmt.Println("❌", err)
		return err
	}

	fmt.Println("🚀 Running deployment pipeline...")
	fmt.Printf("   Pipeline file: %s\n", pipelineFile)
	if runStage != "" {
		fmt.Printf("   Stage(s): %s\n", runStage)
	}
	if dryRun {
		fmt.Println("   Mode: dry-run")
	}
	fmt.Println()

	def, err := pipeline.LoadDefinition(pipelineFile)
	if err != nil {
		fmt.Printf("❌ Failed to load pipeline: %v\n", err)
		return err
	}

	sc, err := pipeline.NewStageContext(def, getConfig(), runBuildNumber)
	if err != nil {
		return err
	}

	if dryRun {
		return printStagePlan(sc)
	}

	toolset, err := pipeline.NewToolset(getConfig(), cmdexec.NewRunner(verbose))
	if err != nil {
		fmt.Printf("❌ Failed to initialize tools: %v\n", err)
		return err
	}

	stages, err := selectStages(pipeline.BuildStages(toolset, sc), runStage)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return err
	}

	engine := pipeline.NewEngine()
	run := engine.Execute(cmd.Context(), sc, stages)

	if jsonOut {
		if err := pipeline.WriteJSON(os.Stdout, run); err != nil {
			return err
		}
	} else {
		pipeline.PrintSummary(os.Stdout, run)
	}

	return run.Err
}

// printStagePlan lists the stages a run would execute with the main
// collaborator command each one issues, without executing anything
func printStagePlan(sc pipeline.StageContext) error {
	// An empty toolset is fine here: only stage names and attributes are read
	stages, err := selectStages(pipeline.BuildStages(&pipeline.Toolset{}, sc), runStage)
	if err != nil {
		return err
	}

	fmt.Printf("Image:   %s\n", sc.ImageRef())
	fmt.Printf("Release: %s (namespace %s)\n", sc.ReleaseName, sc.Namespace)
	fmt.Println()
	fmt.Println("Stages:")
	for _, stage := range stages {
		attrs := ""
		if stage.AlwaysRun {
			attrs = " (always runs)"
		} else if stage.BestEffort {
			attrs = " (best effort)"
		}
		fmt.Printf("  - %s%s\n", stage.Name, attrs)
		for _, command := range pipeline.PlanCommands(stage.Name, sc) {
			fmt.Printf("      $ %s\n", command)
		}
	}
	return nil
}
