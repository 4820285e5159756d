// Package cmdexec executes external collaborator commands and captures their
// outcome. It never interprets command output beyond the exit code; callers
// that need sentinels grep the captured streams themselves.
package cmdexec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// CommandError represents a failed collaborator command execution
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Result captures the outcome of a collaborator command
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Spec describes a collaborator command invocation
type Spec struct {
	// Name is the resolved binary path or name
	Name string
	// Args are the command arguments
	Args []string
	// Env holds additional KEY=VALUE pairs appended to the inherited environment
	Env []string
	// Dir is the working directory ("" means inherit)
	Dir string
	// Stdin, when non-nil, is attached to the command's stdin
	Stdin io.Reader
	// Stream, when non-nil, receives stdout/stderr live in addition to capture
	Stream io.Writer
}

// Runner executes collaborator commands
type Runner interface {
	Run(ctx context.Context, spec Spec) (Result, error)
}

// ExecRunner runs commands through os/exec
type ExecRunner struct {
	// Verbose logs each command before execution
	Verbose bool
}

// NewRunner creates a runner for real command execution
func NewRunner(verbose bool) *ExecRunner {
	return &ExecRunner{Verbose: verbose}
}

// Run executes the command and captures exit code, stdout and stderr.
// A non-zero exit returns the populated Result together with a *CommandError;
// callers that declared the command best-effort inspect the result and move on.
func (r *ExecRunner) Run(ctx context.Context, spec Spec) (Result, error) {
	if r.Verbose {
		logrus.Debugf("Running: %s %s", spec.Name, strings.Join(spec.Args, " "))
	}

	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}
	if len(spec.Env) > 0 {
		cmd.Env = append(cmd.Environ(), spec.Env...)
	}
	if spec.Stdin != nil {
		cmd.Stdin = spec.Stdin
	}

	var stdout, stderr bytes.Buffer
	if spec.Stream != nil {
		cmd.Stdout = io.MultiWriter(&stdout, spec.Stream)
		cmd.Stderr = io.MultiWriter(&stderr, spec.Stream)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	res := Result{
		// ProcessState is nil when the command never started (e.g. binary
		// not found); report -1 the way os/exec does for unstarted processes.
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	if err != nil {
		return res, &CommandError{
			Command: spec.Name + " " + strings.Join(spec.Args, " "),
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return res, nil
}
