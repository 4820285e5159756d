package helm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// notFoundSentinel is the stderr marker helm emits when a release does not
// exist. It distinguishes "no release" from a failed cluster query.
const notFoundSentinel = "release: not found"

// ReleaseState describes whether a release exists and which image tag it
// currently references. Queried fresh each run; never cached, since the
// cluster may have changed between runs.
type ReleaseState struct {
	Exists     bool
	CurrentTag string
}

// ResolutionError indicates the cluster query itself failed, as opposed to
// the release simply not existing.
type ResolutionError struct {
	Release   string
	Namespace string
	Err       error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve release %s in namespace %s: %v", e.Release, e.Namespace, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Resolver decides whether a publish step is an install or an upgrade by
// querying the cluster's release state.
type Resolver struct {
	helm *Client
}

// NewResolver creates a release resolver backed by a helm client
func NewResolver(helm *Client) *Resolver {
	return &Resolver{helm: helm}
}

// Resolve queries the cluster for an existing release. A missing release is
// not an error; a failed query is.
func (r *Resolver) Resolve(ctx context.Context, release, namespace string) (ReleaseState, error) {
	res, err := r.helm.Status(ctx, release, namespace)
	if err != nil {
		if strings.Contains(res.Stderr, notFoundSentinel) {
			return ReleaseState{Exists: false}, nil
		}
		return ReleaseState{}, &ResolutionError{Release: release, Namespace: namespace, Err: err}
	}

	var status releaseStatus
	if err := json.Unmarshal([]byte(res.Stdout), &status); err != nil {
		return ReleaseState{}, &ResolutionError{Release: release, Namespace: namespace, Err: fmt.Errorf("failed to parse release status: %w", err)}
	}

	state := ReleaseState{Exists: true}

	// The current tag is informational; failing to read it does not fail
	// resolution.
	tag, err := r.helm.DeployedTag(ctx, release, namespace)
	if err != nil {
		logrus.Debugf("Could not read deployed tag for %s: %v", release, err)
	} else {
		state.CurrentTag = tag
	}

	return state, nil
}

// Deploy performs the action Resolve chose: upgrade when the release exists,
// install when it does not. Both paths converge on a single release
// referencing the requested tag, so deploying twice with identical inputs is
// idempotent.
func (r *Resolver) Deploy(ctx context.Context, state ReleaseState, opts DeployOptions) error {
	if state.Exists {
		logrus.Debugf("Release %s exists (tag %q), upgrading", opts.Release, state.CurrentTag)
		return r.helm.Upgrade(ctx, opts)
	}
	logrus.Debugf("Release %s not found, installing", opts.Release)
	return r.helm.Install(ctx, opts)
}
