package installer_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	arpkg "github.com/blakesmith/ar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heroku/deb-packages-buildpack/internal/debian"
	"github.com/heroku/deb-packages-buildpack/internal/installer"
)

// fakeDownloader serves a canned .deb body for any URL it's asked for,
// letting tests exercise the checksum/extract pipeline without the network.
type fakeDownloader struct {
	bodies map[string][]byte
}

func (f fakeDownloader) DownloadToFile(_ context.Context, url, destination string) error {
	body, ok := f.bodies[url]
	if !ok {
		return os.ErrNotExist
	}

	return os.WriteFile(destination, body, 0o600)
}

func buildFakeDeb(t *testing.T, fileContents map[string]string) []byte {
	t.Helper()

	var tarBuf bytes.Buffer

	gzWriter := gzip.NewWriter(&tarBuf)
	tarWriter := tar.NewWriter(gzWriter)

	for name, contents := range fileContents {
		require.NoError(t, tarWriter.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(contents)),
		}))
		_, err := tarWriter.Write([]byte(contents))
		require.NoError(t, err)
	}

	require.NoError(t, tarWriter.Close())
	require.NoError(t, gzWriter.Close())

	var arBuf bytes.Buffer
	arWriter := arpkg.NewWriter(&arBuf)
	require.NoError(t, arWriter.WriteGlobalHeader())

	require.NoError(t, arWriter.WriteHeader(&arpkg.Header{Name: "debian-binary", Size: 4, Mode: 0o644}))
	_, err := arWriter.Write([]byte("2.0\n"))
	require.NoError(t, err)

	require.NoError(t, arWriter.WriteHeader(&arpkg.Header{Name: "data.tar.gz", Size: int64(tarBuf.Len()), Mode: 0o644}))
	_, err = arWriter.Write(tarBuf.Bytes())
	require.NoError(t, err)

	return arBuf.Bytes()
}

func TestInstallDownloadsVerifiesAndExtractsIntoSharedLayer(t *testing.T) {
	debBytes := buildFakeDeb(t, map[string]string{
		"usr/bin/curl":                "#!/bin/sh\n",
		"usr/lib/pkgconfig/libcurl.pc": "prefix=/usr\nlibdir=${prefix}/lib\n",
	})
	sum := sha256.Sum256(debBytes)
	hexSum := hex.EncodeToString(sum[:])

	pkg := debian.RepositoryPackage{
		RepositoryURI: "http://archive.ubuntu.com/ubuntu",
		Name:          "curl",
		Version:       "7.81.0-1",
		Filename:      "pool/c/curl/curl_7.81.0-1_amd64.deb",
		SHA256:        hexSum,
	}

	downloadURL := pkg.RepositoryURI + "/" + pkg.Filename
	downloader := fakeDownloader{bodies: map[string][]byte{downloadURL: debBytes}}

	layerDir := t.TempDir()

	err := installer.Install(context.Background(), downloader, []debian.RepositoryPackage{pkg}, layerDir, 2)
	require.NoError(t, err)

	binContents, err := os.ReadFile(filepath.Join(layerDir, "usr/bin/curl"))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\n", string(binContents))

	pcContents, err := os.ReadFile(filepath.Join(layerDir, "usr/lib/pkgconfig/libcurl.pc"))
	require.NoError(t, err)
	assert.Contains(t, string(pcContents), "prefix="+layerDir)
}

func TestInstallChecksumMismatchFailsAndWritesNothing(t *testing.T) {
	debBytes := buildFakeDeb(t, map[string]string{"usr/bin/curl": "x"})

	pkg := debian.RepositoryPackage{
		RepositoryURI: "http://archive.ubuntu.com/ubuntu",
		Name:          "curl",
		Filename:      "pool/c/curl/curl_7.81.0-1_amd64.deb",
		SHA256:        "0000000000000000000000000000000000000000000000000000000000000",
	}

	downloadURL := pkg.RepositoryURI + "/" + pkg.Filename
	downloader := fakeDownloader{bodies: map[string][]byte{downloadURL: debBytes}}

	layerDir := t.TempDir()

	err := installer.Install(context.Background(), downloader, []debian.RepositoryPackage{pkg}, layerDir, 2)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(layerDir, "usr/bin/curl"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestInstallEmptyPackageListIsNoOp(t *testing.T) {
	err := installer.Install(context.Background(), fakeDownloader{}, nil, t.TempDir(), 2)
	require.NoError(t, err)
}
