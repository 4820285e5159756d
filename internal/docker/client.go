// Package docker wraps container engine CLI commands.
package docker

import (
	"context"
	"fmt"
	"strings"

	"github.com/deploy-man/deploy-man/internal/cmdexec"
	"github.com/deploy-man/deploy-man/internal/config"
	"github.com/deploy-man/deploy-man/internal/creds"
)

// Client wraps docker CLI commands
type Client struct {
	binary string
	runner cmdexec.Runner
}

// NewClient creates a new docker client using the configured binary
func NewClient(cfg *config.Config, runner cmdexec.Runner) (*Client, error) {
	binary, err := config.FindBinary(cfg.Tools.Docker, config.BinaryDocker)
	if err != nil {
		return nil, err
	}
	return &Client{binary: binary, runner: runner}, nil
}

// NewClientWithBinary creates a docker client with an explicit binary path
func NewClientWithBinary(binary string, runner cmdexec.Runner) *Client {
	return &Client{binary: binary, runner: runner}
}

// run executes a docker command
func (c *Client) run(ctx context.Context, args ...string) (cmdexec.Result, error) {
	return c.runner.Run(ctx, cmdexec.Spec{Name: c.binary, Args: args})
}

// BuildOptions contains options for building an image
type BuildOptions struct {
	Context    string
	Dockerfile string
	Tag        string
	BuildArgs  map[string]string
}

// BuildArgs constructs the argument list for docker build.
// This is a pure function that can be easily unit tested.
func BuildArgs(opts BuildOptions) []string {
	args := []string{"build"}

	if opts.Tag != "" {
		args = append(args, "-t", opts.Tag)
	}
	if opts.Dockerfile != "" {
		args = append(args, "-f", opts.Dockerfile)
	}
	for key, value := range opts.BuildArgs {
		args = append(args, "--build-arg", fmt.Sprintf("%s=%s", key, value))
	}

	context := opts.Context
	if context == "" {
		context = "."
	}
	args = append(args, context)

	return args
}

// Build builds a container image
func (c *Client) Build(ctx context.Context, opts BuildOptions) error {
	_, err := c.run(ctx, BuildArgs(opts)...)
	return err
}

// Tag applies an additional tag to an existing image
func (c *Client) Tag(ctx context.Context, source, target string) error {
	_, err := c.run(ctx, "tag", source, target)
	return err
}

// Push pushes an image to its registry
func (c *Client) Push(ctx context.Context, ref string) error {
	_, err := c.run(ctx, "push", ref)
	return err
}

// Login authenticates against a registry. The secret is passed on stdin so it
// never appears in the process argument list.
func (c *Client) Login(ctx context.Context, registry string, cred creds.Credential) error {
	args := []string{"login", "--username", cred.Username, "--password-stdin"}
	if registry != "" {
		args = append(args, registry)
	}
	_, err := c.runner.Run(ctx, cmdexec.Spec{
		Name:  c.binary,
		Args:  args,
		Stdin: strings.NewReader(cred.Secret),
	})
	return err
}

// Logout removes stored registry credentials
func (c *Client) Logout(ctx context.Context, registry string) error {
	args := []string{"logout"}
	if registry != "" {
		args = append(args, registry)
	}
	_, err := c.run(ctx, args...)
	return err
}

// ImageRemove removes a local image
func (c *Client) ImageRemove(ctx context.Context, ref string, force bool) error {
	args := []string{"rmi"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, ref)
	_, err := c.run(ctx, args...)
	return err
}

// ImageExists checks if an image exists in local storage
func (c *Client) ImageExists(ctx context.Context, ref string) (bool, error) {
	res, err := c.run(ctx, "image", "inspect", ref)
	if err != nil {
		// Exit code 1 means the image doesn't exist
		if res.ExitCode == 1 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
