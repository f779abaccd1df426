package archive_test

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heroku/deb-packages-buildpack/internal/archive"
)

func TestDecompressGzipRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte("Package: curl\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	rc, err := archive.Decompress("gz", &buf)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "Package: curl\n", string(data))
}

func TestDecompressNoCompressionPassesThrough(t *testing.T) {
	rc, err := archive.Decompress("", bytes.NewReader([]byte("raw")))
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "raw", string(data))
}

func TestDecompressUnsupportedExtensionFails(t *testing.T) {
	_, err := archive.Decompress("lz4", bytes.NewReader(nil))
	assert.Error(t, err)
}
