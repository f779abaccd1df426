package archive_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	arpkg "github.com/blakesmith/ar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heroku/deb-packages-buildpack/internal/archive"
)

// buildFakeDeb writes a minimal ar archive containing debian-binary,
// control.tar.gz, and data.tar.gz, mirroring the real .deb layout described
// in spec.md §4.5.
func buildFakeDeb(t *testing.T, path string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	writer := arpkg.NewWriter(f)
	require.NoError(t, writer.WriteGlobalHeader())

	writeArMember(t, writer, "debian-binary", []byte("2.0\n"))
	writeArMember(t, writer, "control.tar.gz", buildTarGz(t, map[string]string{}))
	writeArMember(t, writer, "data.tar.gz", buildTarGz(t, map[string]string{
		"./usr/bin/hello": "bin",
	}))
}

func writeArMember(t *testing.T, writer *arpkg.Writer, name string, data []byte) {
	t.Helper()

	require.NoError(t, writer.WriteHeader(&arpkg.Header{
		Name: name,
		Size: int64(len(data)),
		Mode: 0o644,
	}))
	_, err := writer.Write(data)
	require.NoError(t, err)
}

func buildTarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name,
			Size: int64(len(content)),
			Mode: 0o644,
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	return buf.Bytes()
}

func TestExtractDebUnpacksDataTarball(t *testing.T) {
	dir := t.TempDir()
	debPath := filepath.Join(dir, "hello.deb")
	buildFakeDeb(t, debPath)

	outputDir := filepath.Join(dir, "layer")
	require.NoError(t, os.MkdirAll(outputDir, 0o755))

	err := archive.ExtractDeb(debPath, outputDir)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(outputDir, "usr/bin/hello"))
	require.NoError(t, err)
	assert.Equal(t, "bin", string(content))
}
