// Package helm wraps chart manager CLI commands and resolves release state.
package helm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/deploy-man/deploy-man/internal/cmdexec"
	"github.com/deploy-man/deploy-man/internal/config"
)

// Client wraps helm CLI commands
type Client struct {
	binary string
	runner cmdexec.Runner
}

// NewClient creates a new helm client using the configured binary
func NewClient(cfg *config.Config, runner cmdexec.Runner) (*Client, error) {
	binary, err := config.FindBinary(cfg.Tools.Helm, config.BinaryHelm)
	if err != nil {
		return nil, err
	}
	return &Client{binary: binary, runner: runner}, nil
}

// NewClientWithBinary creates a helm client with an explicit binary path
func NewClientWithBinary(binary string, runner cmdexec.Runner) *Client {
	return &Client{binary: binary, runner: runner}
}

func (c *Client) run(ctx context.Context, args ...string) (cmdexec.Result, error) {
	return c.runner.Run(ctx, cmdexec.Spec{Name: c.binary, Args: args})
}

// DeployOptions contains the parameters shared by install and upgrade.
// Both actions converge on the same post-condition: one release referencing
// the requested image, with readiness awaited up to Timeout.
type DeployOptions struct {
	Release         string
	Namespace       string
	ChartPath       string
	ImageRepository string
	ImageTag        string
	Timeout         time.Duration
}

// DeployArgs constructs the argument list for helm install or upgrade.
// This is a pure function that can be easily unit tested.
func DeployArgs(action string, opts DeployOptions) []string {
	args := []string{action, opts.Release, opts.ChartPath}
	if opts.Namespace != "" {
		args = append(args, "--namespace", opts.Namespace)
	}
	if opts.ImageRepository != "" {
		args = append(args, "--set", "image.repository="+opts.ImageRepository)
	}
	if opts.ImageTag != "" {
		args = append(args, "--set", "image.tag="+opts.ImageTag)
	}
	args = append(args, "--wait")
	if opts.Timeout > 0 {
		args = append(args, "--timeout", opts.Timeout.String())
	}
	return args
}

// Install installs a new release
func (c *Client) Install(ctx context.Context, opts DeployOptions) error {
	_, err := c.run(ctx, DeployArgs("install", opts)...)
	return err
}

// Upgrade upgrades an existing release in place
func (c *Client) Upgrade(ctx context.Context, opts DeployOptions) error {
	_, err := c.run(ctx, DeployArgs("upgrade", opts)...)
	return err
}

// releaseStatus is the subset of helm status -o json we care about
type releaseStatus struct {
	Name string `json:"name"`
	Info struct {
		Status string `json:"status"`
	} `json:"info"`
}

// Status queries a release's status. Returns the raw result so callers can
// distinguish "release not found" from a failed query.
func (c *Client) Status(ctx context.Context, release, namespace string) (cmdexec.Result, error) {
	args := []string{"status", release, "-o", "json"}
	if namespace != "" {
		args = append(args, "--namespace", namespace)
	}
	return c.run(ctx, args...)
}

// releaseValues is the subset of helm get values -o json we care about
type releaseValues struct {
	Image struct {
		Repository string `json:"repository"`
		Tag        string `json:"tag"`
	} `json:"image"`
}

// DeployedTag returns the image tag the release currently references, or ""
// if the release carries no image values.
func (c *Client) DeployedTag(ctx context.Context, release, namespace string) (string, error) {
	args := []string{"get", "values", release, "-a", "-o", "json"}
	if namespace != "" {
		args = append(args, "--namespace", namespace)
	}
	res, err := c.run(ctx, args...)
	if err != nil {
		return "", err
	}

	var values releaseValues
	if err := json.Unmarshal([]byte(res.Stdout), &values); err != nil {
		return "", fmt.Errorf("failed to parse release values: %w", err)
	}
	return values.Image.Tag, nil
}
