package archive

import (
	"archive/tar"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	arpkg "github.com/blakesmith/ar"
	"github.com/pkg/errors"

	"github.com/heroku/deb-packages-buildpack/internal/bperrors"
)

// ExtractDeb opens debPath as an ar archive and unpacks the data.tar.* member
// into outputDir, matching original_source/src/install_packages.rs's
// extract(): debian-binary and control.tar.* members are skipped; an
// unrecognized data.tar.* extension is fatal.
func ExtractDeb(debPath, outputDir string) error {
	f, err := os.Open(debPath)
	if err != nil {
		return bperrors.Wrap(err, bperrors.KindFilesystem, "opening package archive").
			WithOperation("OpenPackageArchive")
	}
	defer f.Close() //nolint:errcheck

	reader := arpkg.NewReader(f)

	for {
		header, err := reader.Next()
		if err == io.EOF {
			return nil
		}

		if err != nil {
			return bperrors.Wrap(err, bperrors.KindFilesystem, "reading package archive entry").
				WithOperation("OpenPackageArchiveEntry")
		}

		name := strings.TrimSpace(header.Name)

		stem, ext, ok := dataTarStemAndExt(name)
		if !ok {
			continue // debian-binary and unknown members: ignored per spec.md §4.5
		}

		if stem != "data.tar" {
			continue // control.tar.*: ignored
		}

		decoder, err := Decompress(ext, reader)
		if err != nil {
			return err
		}

		if err := untar(decoder, outputDir); err != nil {
			decoder.Close() //nolint:errcheck

			return bperrors.Wrap(err, bperrors.KindFilesystem, "unpacking data.tar").
				WithOperation("UnpackTarball")
		}

		if err := decoder.Close(); err != nil {
			return bperrors.Wrap(err, bperrors.KindFilesystem, "closing decompressor")
		}
	}
}

// dataTarStemAndExt splits "data.tar.gz" into ("data.tar", "gz", true) and
// "control.tar.xz" into ("control.tar", "xz", true); debian-binary and any
// other name return ok=false. The caller ignores ok=false names and the
// control.tar stem, while an unrecognized data.tar.* extension is surfaced
// by the caller as fatal.
func dataTarStemAndExt(name string) (stem, ext string, ok bool) {
	const (
		controlPrefix = "control.tar"
		dataPrefix    = "data.tar"
	)

	switch {
	case name == "debian-binary":
		return "", "", false
	case strings.HasPrefix(name, dataPrefix):
		return dataPrefix, strings.TrimPrefix(name, dataPrefix+"."), true
	case strings.HasPrefix(name, controlPrefix):
		return controlPrefix, strings.TrimPrefix(name, controlPrefix+"."), true
	default:
		return "", "", false
	}
}

func untar(r io.Reader, outputDir string) error {
	tr := tar.NewReader(r)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}

		if err != nil {
			return err
		}

		target := filepath.Join(outputDir, filepath.Clean("/"+header.Name)) //nolint:gosec // Clean("/"+name) rejects ".." traversal

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, fs.FileMode(header.Mode)|0o700); err != nil { //nolint:gosec
				return errors.Errorf("failed to create directory %s: %v", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil { //nolint:gosec
				return errors.Errorf("failed to create directory %s: %v", filepath.Dir(target), err)
			}

			if err := writeRegularFile(tr, target, fs.FileMode(header.Mode)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil { //nolint:gosec
				return errors.Errorf("failed to create directory %s: %v", filepath.Dir(target), err)
			}

			_ = os.Remove(target)

			if err := os.Symlink(header.Linkname, target); err != nil {
				return errors.Errorf("failed to create symlink %s: %v", target, err)
			}
		default:
			// other entry kinds (hardlinks, devices) are not expected inside a .deb data.tar
		}
	}
}

func writeRegularFile(r io.Reader, target string, mode fs.FileMode) error {
	if mode == 0 {
		mode = 0o644
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode) //nolint:gosec
	if err != nil {
		return err
	}
	defer out.Close() //nolint:errcheck

	_, err = io.Copy(out, r) //nolint:gosec // size bounded by the upstream package body, not attacker-controlled beyond what's already verified by checksum

	return err
}
