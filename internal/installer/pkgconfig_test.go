package installer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heroku/deb-packages-buildpack/internal/installer"
)

func writePkgConfig(t *testing.T, layerDir, relPath, contents string) string {
	t.Helper()

	full := filepath.Join(layerDir, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(contents), 0o644))

	return full
}

func TestRewritePackageConfigsReparentsAbsolutePrefix(t *testing.T) {
	layerDir := t.TempDir()
	pcPath := writePkgConfig(t, layerDir, "usr/lib/pkgconfig/zlib.pc",
		"prefix=/usr\nlibdir=${prefix}/lib\nName: zlib\n")

	require.NoError(t, installer.RewritePackageConfigs(layerDir))

	contents, err := os.ReadFile(pcPath)
	require.NoError(t, err)

	lines := string(contents)
	assert.Contains(t, lines, "prefix="+filepath.Join(layerDir, "usr"))
	assert.Contains(t, lines, "libdir=${prefix}/lib")
	assert.Contains(t, lines, "Name: zlib")
}

func TestRewritePackageConfigsReparentsNonAbsolutePrefix(t *testing.T) {
	layerDir := t.TempDir()
	pcPath := writePkgConfig(t, layerDir, "usr/lib/pkgconfig/weird.pc", "prefix=relative/path\n")

	require.NoError(t, installer.RewritePackageConfigs(layerDir))

	contents, err := os.ReadFile(pcPath)
	require.NoError(t, err)
	assert.Equal(t, "prefix="+filepath.Join(layerDir, "relative/path")+"\n", string(contents))
}

func TestRewritePackageConfigsIgnoresFilesOutsidePkgconfigDir(t *testing.T) {
	layerDir := t.TempDir()
	pcPath := writePkgConfig(t, layerDir, "usr/share/doc/notes.pc", "prefix=/usr\n")

	require.NoError(t, installer.RewritePackageConfigs(layerDir))

	contents, err := os.ReadFile(pcPath)
	require.NoError(t, err)
	assert.Equal(t, "prefix=/usr\n", string(contents))
}
