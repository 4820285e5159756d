package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const completionDescription = `Generate shell autocompletions for deploy-man.

Valid arguments are bash, zsh, fish, and powershell.

To load completions:

Bash:
  $ source <(deploy-man completion bash)

  # To load completions for each session, execute once:
  $ deploy-man completion bash > /etc/bash_completion.d/deploy-man

Zsh:
  $ deploy-man completion zsh > "${fpath[1]}/_deploy-man"

fish:
  $ deploy-man completion fish | source

PowerShell:
  PS> deploy-man completion powershell | Out-String | Invoke-Expression`

var (
	completionFile   string
	completionNoDesc bool
	completionShells = []string{"bash", "zsh", "fish", "powershell"}
	completionCmd    = &cobra.Command{
		Use:       fmt.Sprintf("completion [options] {%s}", strings.Join(completionShells, "|")),
		Short:     "Generate shell autocompletions",
		Long:      completionDescription,
		ValidArgs: completionShells,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE:      completionRun,
	}
)

func init() {
	flags := completionCmd.Flags()
	flags.StringVarP(&completionFile, "file", "f", "",
		"Output the completion to file rather than stdout")
	flags.BoolVar(&completionNoDesc, "no-desc", false,
		"Don't include descriptions in the completion output")
}

func completionRun(cmd *cobra.Command, args []string) error {
	var w io.Writer

	if completionFile != "" {
		f, err := os.Create(completionFile)
		if err != nil {
			return fmt.Errorf("failed to create file %s: %w", completionFile, err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	var err error
	shell := args[0]
	switch shell {
	case "bash":
		err = cmd.Root().GenBashCompletionV2(w, !completionNoDesc)
	case "zsh":
		if completionNoDesc {
			err = cmd.Root().GenZshCompletionNoDesc(w)
		} else {
			err = cmd.Root().GenZshCompletion(w)
		}
	case "fish":
		err = cmd.Root().GenFishCompletion(w, !completionNoDesc)
	case "powershell":
		if completionNoDesc {
			err = cmd.Root().GenPowerShellCompletion(w)
		} else {
			err = cmd.Root().GenPowerShellCompletionWithDesc(w)
		}
	default:
		return fmt.Errorf("unsupported shell: %s", shell)
	}

	if err != nil {
		return fmt.Errorf("failed to generate %s completion: %w", shell, err)
	}

	if completionFile != "" {
		fmt.Fprintf(os.Stderr, "Completion script written to %s\n", completionFile)
	}

	return nil
}
