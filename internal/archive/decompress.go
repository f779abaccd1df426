// Package archive handles the two archive-shaped things the buildpack reads:
// ar-enclosed .deb files (via blakesmith/ar) and the tar/compression formats
// nested inside them and inside Packages indices.
package archive

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/heroku/deb-packages-buildpack/internal/bperrors"
)

// Decompress wraps r in the decoder matching ext ("xz", "gz", "zst"/"zstd",
// or "" for no compression). An unrecognized non-empty extension is a fatal
// UnsupportedCompression error, matching original_source/src/install_packages.rs's
// extract() match arms.
func Decompress(ext string, r io.Reader) (io.ReadCloser, error) {
	switch ext {
	case "":
		return io.NopCloser(r), nil
	case "gz":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, bperrors.Wrap(err, bperrors.KindParse, "opening gzip stream")
		}

		return gz, nil
	case "xz":
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, bperrors.Wrap(err, bperrors.KindParse, "opening xz stream")
		}

		return io.NopCloser(xr), nil
	case "zst", "zstd":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, bperrors.Wrap(err, bperrors.KindParse, "opening zstd stream")
		}

		return readCloserFunc{Reader: zr, close: func() error { zr.Close(); return nil }}, nil
	default:
		return nil, bperrors.Newf(bperrors.KindInternal, "unsupported compression %q", ext).
			WithOperation("UnsupportedCompression")
	}
}

// DecompressBytes is a convenience wrapper for buffers already fully read
// into memory, used by the Packages-index fetcher after checksum verification.
func DecompressBytes(ext string, data []byte) ([]byte, error) {
	rc, err := Decompress(ext, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	defer rc.Close() //nolint:errcheck

	out, err := io.ReadAll(rc)
	if err != nil {
		return nil, bperrors.Wrap(err, bperrors.KindParse, "decompressing")
	}

	return out, nil
}

type readCloserFunc struct {
	io.Reader
	close func() error
}

func (r readCloserFunc) Close() error { return r.close() }
