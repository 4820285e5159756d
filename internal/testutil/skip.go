package testutil

import (
	"os/exec"
	"testing"
)

// SkipIfToolUnavailable skips the test if the named binary is not on PATH
func SkipIfToolUnavailable(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available, skipping test", name)
	}
}

// SkipIfGitUnavailable skips if git is not available
func SkipIfGitUnavailable(t *testing.T) {
	t.Helper()
	SkipIfToolUnavailable(t, "git")
}

// SkipIfShort skips the test if running with -short flag
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping in short mode")
	}
}
