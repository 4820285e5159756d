package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// ArchivedArtifact records one file collected by the archiver
type ArchivedArtifact struct {
	SourcePath string
	Archived   string
}

// Archiver collects build artifacts matching glob patterns into a directory.
// Collection is best-effort: a pattern with no matches is not an error, and a
// file that fails to copy is logged and skipped so the remaining patterns
// still get collected.
type Archiver struct {
	workDir string
	destDir string
}

// NewArchiver creates an archiver collecting from workDir into destDir
func NewArchiver(workDir, destDir string) *Archiver {
	return &Archiver{workDir: workDir, destDir: destDir}
}

// Archive copies every file matching the patterns into the destination
// directory. Relative patterns are resolved against the working directory.
func (a *Archiver) Archive(patterns []string) ([]ArchivedArtifact, error) {
	dest := a.destDir
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(a.workDir, dest)
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	var artifacts []ArchivedArtifact
	for _, pattern := range patterns {
		glob := pattern
		if !filepath.IsAbs(glob) {
			glob = filepath.Join(a.workDir, glob)
		}

		matches, err := filepath.Glob(glob)
		if err != nil {
			logrus.Warnf("Invalid archive pattern %q: %v", pattern, err)
			continue
		}
		if len(matches) == 0 {
			logrus.Debugf("No artifacts matched %q", pattern)
			continue
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}

			target := filepath.Join(dest, filepath.Base(match))
			if err := copyFile(match, target); err != nil {
				logrus.Warnf("Failed to archive %s: %v", match, err)
				continue
			}
			artifacts = append(artifacts, ArchivedArtifact{SourcePath: match, Archived: target})
		}
	}

	return artifacts, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
