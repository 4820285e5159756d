package main

import (
	"fmt"

	"github.com/deploy-man/deploy-man/internal/config"
	"github.com/deploy-man/deploy-man/internal/pipeline"
	"github.com/spf13/cobra"
)

var checkPipelineFile string

var checkCmd = &cobra.Command{
	Use:   "check [pipeline-file]",
	Short: "Check a pipeline definition file",
	Long: `Check a deploy-pipeline.yaml definition file for syntax and schema errors.

If no pipeline file is specified, deploy-pipeline.yaml in the current
directory is used.

This command validates the definition file itself; it does not contact the
cluster or registry.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkPipelineFile, "pipeline", "p", "",
		"Path to pipeline definition file (default: deploy-pipeline.yaml in current directory)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	userSpecified := checkPipelineFile
	if userSpecified == "" && len(args) > 0 {
		userSpecified = args[0]
	}

	pipelineFile, err := findPipelineFile(userSpecified)
	if err != nil {
		fmt.Println("❌", err)
		return err
	}

	fmt.Println("🔍 Checking pipeline definition file...")
	fmt.Printf("   Pipeline file: %s\n", pipelineFile)
	fmt.Println()

	def, err := pipeline.LoadDefinition(pipelineFile)
	if err != nil {
		fmt.Printf("❌ Failed to load pipeline: %v\n", err)
		return err
	}

	fmt.Println("✅ YAML syntax: valid")
	fmt.Println("✅ Schema validation: passed")
	fmt.Printf("✅ Pipeline name: %s\n", def.Metadata.Name)
	if def.Metadata.Description != "" {
		fmt.Printf("   Description: %s\n", def.Metadata.Description)
	}

	fmt.Printf("✅ Image repository: %s\n", def.Spec.Image.Repository)
	fmt.Printf("✅ Release: %s (namespace %s)\n", def.Spec.Deploy.Release, def.Spec.Deploy.Namespace)
	fmt.Printf("✅ Chart: %s\n", def.ResolveChartPath())

	if def.Spec.Analysis != nil {
		fmt.Printf("✅ Analysis server: %s (project %s)\n", def.Spec.Analysis.Server, def.Spec.Analysis.ProjectKey)
		fmt.Printf("   Gate abort on failure: %t\n", def.Spec.Analysis.Gate.AbortOnFailure)
	} else {
		fmt.Println("   Analysis: not configured (analysis stages will be skipped)")
	}

	fmt.Println()
	fmt.Println("Tools:")
	cfg := getConfig()
	tools := []struct {
		configured string
		name       string
	}{
		{cfg.Tools.Git, config.BinaryGit},
		{cfg.Tools.Maven, config.BinaryMaven},
		{cfg.Tools.Docker, config.BinaryDocker},
		{cfg.Tools.Trivy, config.BinaryTrivy},
		{cfg.Tools.Helm, config.BinaryHelm},
		{cfg.Tools.Kubectl, config.BinaryKubectl},
	}
	missing := 0
	for _, tool := range tools {
		if config.ToolAvailable(tool.configured, tool.name) {
			fmt.Printf("  ✅ %s\n", tool.name)
		} else {
			fmt.Printf("  ❌ %s (not found)\n", tool.name)
			missing++
		}
	}
	if missing > 0 {
		fmt.Printf("\n⚠️  %d tool(s) missing; 'deploy-man run' will fail until they are installed.\n", missing)
	}

	return nil
}
