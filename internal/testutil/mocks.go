package testutil

import (
	"context"
	"fmt"
	"strings"

	"github.com/deploy-man/deploy-man/internal/cmdexec"
	"github.com/deploy-man/deploy-man/internal/creds"
)

// FakeRunner is a cmdexec.Runner for testing. Each Run call is recorded;
// RunFunc, when set, supplies the result, otherwise a rule matching the
// command line does, otherwise the command succeeds with empty output.
type FakeRunner struct {
	// RunFunc, when set, handles every call
	RunFunc func(ctx context.Context, spec cmdexec.Spec) (cmdexec.Result, error)

	// Rules map a command-line substring to a canned response. The first
	// matching rule wins, in insertion order.
	rules []fakeRule

	// Calls records every command executed, in order
	Calls []cmdexec.Spec
}

type fakeRule struct {
	match  string
	result cmdexec.Result
	err    error
}

// NewFakeRunner creates an empty fake runner where every command succeeds
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

// Stub registers a canned response for any command line containing match
func (f *FakeRunner) Stub(match string, result cmdexec.Result, err error) *FakeRunner {
	f.rules = append(f.rules, fakeRule{match: match, result: result, err: err})
	return f
}

// StubFailure registers a failing response with the given stderr and exit code
func (f *FakeRunner) StubFailure(match string, exitCode int, stderr string) *FakeRunner {
	res := cmdexec.Result{ExitCode: exitCode, Stderr: stderr}
	return f.Stub(match, res, &cmdexec.CommandError{
		Command: match,
		Stderr:  stderr,
		Err:     errExit(exitCode),
	})
}

// Run records the call and replies per RunFunc, the rules, or success
func (f *FakeRunner) Run(ctx context.Context, spec cmdexec.Spec) (cmdexec.Result, error) {
	f.Calls = append(f.Calls, spec)

	if f.RunFunc != nil {
		return f.RunFunc(ctx, spec)
	}

	line := CommandLine(spec)
	for _, rule := range f.rules {
		if strings.Contains(line, rule.match) {
			return rule.result, rule.err
		}
	}
	return cmdexec.Result{ExitCode: 0}, nil
}

// CommandLine renders a spec as the command line it would execute
func CommandLine(spec cmdexec.Spec) string {
	return spec.Name + " " + strings.Join(spec.Args, " ")
}

// CalledWith reports whether any recorded command line contains match
func (f *FakeRunner) CalledWith(match string) bool {
	for _, call := range f.Calls {
		if strings.Contains(CommandLine(call), match) {
			return true
		}
	}
	return false
}

// CallLines returns every recorded command line, in order
func (f *FakeRunner) CallLines() []string {
	lines := make([]string, 0, len(f.Calls))
	for _, call := range f.Calls {
		lines = append(lines, CommandLine(call))
	}
	return lines
}

type errExit int

func (e errExit) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

// StaticStore is a creds.Store for testing, resolving from a fixed map
type StaticStore struct {
	Creds map[string]creds.Credential
}

// NewStaticStore creates a store resolving only the given credentials
func NewStaticStore(m map[string]creds.Credential) *StaticStore {
	return &StaticStore{Creds: m}
}

// Lookup resolves a credential id from the map
func (s *StaticStore) Lookup(id string) (creds.Credential, error) {
	cred, ok := s.Creds[id]
	if !ok {
		return creds.Credential{}, &creds.NotFoundError{ID: id}
	}
	return cred, nil
}
