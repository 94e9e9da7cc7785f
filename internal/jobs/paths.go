package jobs

import (
	"fmt"
	"os"
	"path/filepath"
)

// WorkDir returns the per-job working directory. Namespacing by job ID keeps
// concurrent jobs over identically named inputs from sharing intermediate
// frames.
func WorkDir(stagingDir, jobID string) string {
	return filepath.Join(stagingDir, jobID)
}

// PrepareWorkDir clears any residual artifacts from a previous run and
// recreates the job working directory.
func PrepareWorkDir(stagingDir, jobID string) (string, error) {
	dir := WorkDir(stagingDir, jobID)
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("clear work directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create work directory: %w", err)
	}
	return dir, nil
}

// CleanupWorkDir removes the job working directory and everything in it.
func CleanupWorkDir(stagingDir, jobID string) error {
	return os.RemoveAll(WorkDir(stagingDir, jobID))
}
