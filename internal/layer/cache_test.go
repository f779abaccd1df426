package layer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heroku/deb-packages-buildpack/internal/debian"
	"github.com/heroku/deb-packages-buildpack/internal/layer"
)

func TestCachedLayerStartsEmptyWhenNoPriorMetadata(t *testing.T) {
	root := t.TempDir()
	layerDir := filepath.Join(root, "curl")

	handle, err := layer.CachedLayer("curl", layerDir, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, layer.StateEmpty, handle.State)

	info, err := os.Stat(layerDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCachedLayerRestoresWhenMetadataMatches(t *testing.T) {
	root := t.TempDir()
	layerDir := filepath.Join(root, "curl")

	first, err := layer.CachedLayer("curl", layerDir, "hash-1")
	require.NoError(t, err)
	require.NoError(t, first.WriteMetadata("hash-1"))
	require.NoError(t, os.WriteFile(filepath.Join(layerDir, "marker"), []byte("x"), 0o644))

	second, err := layer.CachedLayer("curl", layerDir, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, layer.StateRestored, second.State)

	_, err = os.Stat(filepath.Join(layerDir, "marker"))
	assert.NoError(t, err)
}

func TestCachedLayerRebuildsWhenMetadataDiffers(t *testing.T) {
	root := t.TempDir()
	layerDir := filepath.Join(root, "curl")

	first, err := layer.CachedLayer("curl", layerDir, "hash-1")
	require.NoError(t, err)
	require.NoError(t, first.WriteMetadata("hash-1"))
	require.NoError(t, os.WriteFile(filepath.Join(layerDir, "marker"), []byte("x"), 0o644))

	second, err := layer.CachedLayer("curl", layerDir, "hash-2")
	require.NoError(t, err)
	assert.Equal(t, layer.StateEmpty, second.State)

	_, err = os.Stat(filepath.Join(layerDir, "marker"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteEnvRendersPrependAndDelimiterFiles(t *testing.T) {
	layerDir := t.TempDir()
	handle := &layer.Handle{Name: "curl", Path: layerDir, State: layer.StateEmpty}

	env := layer.NewEnv()
	env.Prepend("PATH", "/a/bin", "/b/bin")

	require.NoError(t, handle.WriteEnv(env))

	prepend, err := os.ReadFile(filepath.Join(layerDir, "env/PATH.prepend"))
	require.NoError(t, err)
	assert.Equal(t, "/a/bin:/b/bin", string(prepend))

	delim, err := os.ReadFile(filepath.Join(layerDir, "env/PATH.delim"))
	require.NoError(t, err)
	assert.Equal(t, ":", string(delim))
}

func TestInstallationMetadataKeyIsOrderIndependent(t *testing.T) {
	distro := debian.Distro{Name: "ubuntu", Version: "22.04", Codename: debian.Jammy, Architecture: debian.Amd64}

	a := []debian.RepositoryPackage{{Name: "curl", SHA256: "aaa"}, {Name: "libssl3", SHA256: "bbb"}}
	b := []debian.RepositoryPackage{{Name: "libssl3", SHA256: "bbb"}, {Name: "curl", SHA256: "aaa"}}

	assert.Equal(t, layer.InstallationMetadataKey(a, distro), layer.InstallationMetadataKey(b, distro))
}

func TestInstallationMetadataKeyChangesWithContent(t *testing.T) {
	distro := debian.Distro{Name: "ubuntu", Version: "22.04", Codename: debian.Jammy, Architecture: debian.Amd64}

	a := []debian.RepositoryPackage{{Name: "curl", SHA256: "aaa"}}
	b := []debian.RepositoryPackage{{Name: "curl", SHA256: "zzz"}}

	assert.NotEqual(t, layer.InstallationMetadataKey(a, distro), layer.InstallationMetadataKey(b, distro))
}
