// Package config provides configuration management for deploy-man.
// This file contains helpers for finding collaborator binaries.
package config

import (
	"fmt"
	"os"
	"os/exec"
)

// systemLocations lists well-known install locations checked after PATH,
// keyed by binary name.
var systemLocations = map[string][]string{
	BinaryDocker:  {"/usr/bin/docker", "/usr/local/bin/docker"},
	BinaryHelm:    {"/usr/local/bin/helm", "/usr/bin/helm"},
	BinaryKubectl: {"/usr/local/bin/kubectl", "/usr/bin/kubectl"},
	BinaryTrivy:   {"/usr/local/bin/trivy", "/usr/bin/trivy"},
	BinaryMaven:   {"/usr/bin/mvn", "/opt/maven/bin/mvn"},
	BinaryGit:     {"/usr/bin/git"},
}

// FindBinary resolves a collaborator binary from its configured value.
// A value of "auto" or "" searches PATH and then well-known locations for
// the given default name; anything else is used as-is.
func FindBinary(configured, name string) (string, error) {
	if configured != "" && configured != "auto" {
		return configured, nil
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	for _, loc := range systemLocations[name] {
		if _, err := os.Stat(loc); err == nil {
			return loc, nil
		}
	}

	return "", fmt.Errorf("%s not found in PATH or well-known locations", name)
}

// ToolAvailable reports whether a collaborator binary can be resolved.
func ToolAvailable(configured, name string) bool {
	_, err := FindBinary(configured, name)
	return err == nil
}
