package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRunBuildEmptyConfigExitsBeforeNetworkIO pins spec.md §8's boundary
// behavior "Empty config -> early exit, no network traffic": an
// install-less project.toml must short-circuit before FetchAllIndices ever
// dials an APT mirror. A regression back to checking len(packages) only
// after resolution would block on real network I/O and blow well past the
// deadline below.
func TestRunBuildEmptyConfigExitsBeforeNetworkIO(t *testing.T) {
	t.Setenv("CNB_TARGET_DISTRO_NAME", "ubuntu")
	t.Setenv("CNB_TARGET_DISTRO_VERSION", "22.04")
	t.Setenv("CNB_TARGET_ARCH", "amd64")

	appDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(appDir, configFileName), []byte("install = []\n"), 0o644))

	originalWd, err := os.Getwd()
	require.NoError(t, err)

	require.NoError(t, os.Chdir(appDir))

	defer func() { _ = os.Chdir(originalWd) }()

	layersDir := t.TempDir()

	done := make(chan error, 1)

	go func() {
		done <- runBuild(layersDir, t.TempDir())
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runBuild did not return promptly; it likely attempted network I/O instead of exiting early on an empty config")
	}
}
