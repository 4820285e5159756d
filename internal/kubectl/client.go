// Package kubectl wraps cluster CLI commands for deployment verification.
package kubectl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deploy-man/deploy-man/internal/cmdexec"
	"github.com/deploy-man/deploy-man/internal/config"
)

// WaitTimeoutError indicates a readiness wait exceeded its bound
type WaitTimeoutError struct {
	Release   string
	Namespace string
	Timeout   time.Duration
	Err       error
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("deployment %s in namespace %s not ready within %s: %v", e.Release, e.Namespace, e.Timeout, e.Err)
}

func (e *WaitTimeoutError) Unwrap() error {
	return e.Err
}

// Client wraps kubectl CLI commands
type Client struct {
	binary string
	runner cmdexec.Runner
}

// NewClient creates a new kubectl client using the configured binary
func NewClient(cfg *config.Config, runner cmdexec.Runner) (*Client, error) {
	binary, err := config.FindBinary(cfg.Tools.Kubectl, config.BinaryKubectl)
	if err != nil {
		return nil, err
	}
	return &Client{binary: binary, runner: runner}, nil
}

// NewClientWithBinary creates a kubectl client with an explicit binary path
func NewClientWithBinary(binary string, runner cmdexec.Runner) *Client {
	return &Client{binary: binary, runner: runner}
}

func (c *Client) run(ctx context.Context, args ...string) (cmdexec.Result, error) {
	return c.runner.Run(ctx, cmdexec.Spec{Name: c.binary, Args: args})
}

// RolloutArgs constructs the argument list for kubectl rollout status.
// This is a pure function that can be easily unit tested.
func RolloutArgs(release, namespace string, timeout time.Duration) []string {
	args := []string{"rollout", "status", "deployment/" + release}
	if namespace != "" {
		args = append(args, "--namespace", namespace)
	}
	if timeout > 0 {
		args = append(args, "--timeout", timeout.String())
	}
	return args
}

// WaitReadyArgs constructs the argument list for kubectl wait on the
// release's pods. This is a pure function that can be easily unit tested.
func WaitReadyArgs(release, namespace string, timeout time.Duration) []string {
	args := []string{
		"wait", "--for=condition=ready", "pod",
		"-l", "app.kubernetes.io/instance=" + release,
	}
	if namespace != "" {
		args = append(args, "--namespace", namespace)
	}
	if timeout > 0 {
		args = append(args, "--timeout", timeout.String())
	}
	return args
}

// RolloutStatus waits for the release's deployment rollout to complete,
// bounded by timeout.
func (c *Client) RolloutStatus(ctx context.Context, release, namespace string, timeout time.Duration) error {
	res, err := c.run(ctx, RolloutArgs(release, namespace, timeout)...)
	if err != nil {
		return classifyWaitError(res, err, release, namespace, timeout)
	}
	return nil
}

// WaitReady waits until every pod belonging to the release is ready,
// bounded by timeout.
func (c *Client) WaitReady(ctx context.Context, release, namespace string, timeout time.Duration) error {
	res, err := c.run(ctx, WaitReadyArgs(release, namespace, timeout)...)
	if err != nil {
		return classifyWaitError(res, err, release, namespace, timeout)
	}
	return nil
}

// classifyWaitError maps a failed wait to WaitTimeoutError when kubectl
// reports exceeding its deadline, and passes other failures through.
func classifyWaitError(res cmdexec.Result, err error, release, namespace string, timeout time.Duration) error {
	stderr := strings.ToLower(res.Stderr)
	if strings.Contains(stderr, "timed out") || strings.Contains(stderr, "deadline exceeded") {
		return &WaitTimeoutError{Release: release, Namespace: namespace, Timeout: timeout, Err: err}
	}
	return err
}
