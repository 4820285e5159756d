package main

import (
	"context"

	"github.com/deploy-man/deploy-man/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	jsonOut bool
	dryRun  bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "deploy-man",
	Short: "deploy-man - a deployment pipeline runner",
	Long: `deploy-man runs a fixed deployment pipeline defined in deploy-pipeline.yaml:

  checkout → static analysis → quality gate → build & test → package →
  image build → vulnerability scan → publish → deploy → verify

Each stage drives a standard CLI tool (git, mvn, docker, trivy, helm,
kubectl) and the run aborts on the first failing stage. Artifact archival
runs even after a failure.

Use --verbose to see the actual commands being executed.
Use --dry-run to see the stage plan without executing.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		return cfg.Validate()
	},
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func ExecuteWithContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default is ~/.config/deploy-man/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output (shows the commands being executed)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false,
		"output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false,
		"show the stage plan without executing")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(completionCmd)
}

func getConfig() *config.Config {
	if cfg == nil {
		return config.DefaultConfig()
	}
	return cfg
}
