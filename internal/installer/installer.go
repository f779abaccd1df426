// Package installer implements the installer (C7): downloading, checksum
// verifying, and extracting resolved packages into a shared layer directory,
// then rewriting pkg-config prefixes across the whole layer, grounded on
// original_source/src/install_packages.rs.
package installer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/heroku/deb-packages-buildpack/internal/archive"
	"github.com/heroku/deb-packages-buildpack/internal/bperrors"
	"github.com/heroku/deb-packages-buildpack/internal/debian"
	"github.com/heroku/deb-packages-buildpack/internal/hashutil"
	"github.com/heroku/deb-packages-buildpack/internal/logger"
	"github.com/heroku/deb-packages-buildpack/internal/scheduler"
)

// Downloader fetches a URL to a local file, matching internal/download.Client.
type Downloader interface {
	DownloadToFile(ctx context.Context, url, destination string) error
}

// Install downloads, verifies, and extracts every package in packages into
// layerDir concurrently (one task per package, bounded by poolSize), then
// rewrites pkg-config prefixes once every package has landed — matching
// spec.md §4.5/§5's "one install task per package" and "env composition runs
// single-threaded once every extraction completes."
func Install(ctx context.Context, downloader Downloader, packages []debian.RepositoryPackage, layerDir string, poolSize int) error {
	if len(packages) == 0 {
		return nil
	}

	logger.Section("Installing packages")

	pool := scheduler.NewPool(ctx, poolSize)

	for _, pkg := range packages {
		pkg := pkg

		pool.Submit(func(ctx context.Context) error {
			return downloadAndExtract(ctx, downloader, pkg, layerDir)
		})
	}

	if errs := pool.Wait(); len(errs) > 0 {
		return errs[0]
	}

	return RewritePackageConfigs(layerDir)
}

func downloadAndExtract(ctx context.Context, downloader Downloader, pkg debian.RepositoryPackage, layerDir string) error {
	logger.Detail("Downloading %s", pkg.Name)

	downloadPath, err := download(ctx, downloader, pkg)
	if err != nil {
		return err
	}
	defer os.Remove(downloadPath) //nolint:errcheck

	logger.Detail("Extracting %s", pkg.Name)

	if err := archive.ExtractDeb(downloadPath, layerDir); err != nil {
		return err
	}

	return nil
}

// download fetches pkg's .deb body to a temp file and verifies its SHA256,
// matching install_packages.rs's download(): URL is "{repository_uri}/{filename}",
// the destination file name is the last path segment of filename.
func download(ctx context.Context, downloader Downloader, pkg debian.RepositoryPackage) (string, error) {
	downloadURL := pkg.RepositoryURI + "/" + pkg.Filename

	fileName := filepath.Base(pkg.Filename)
	if fileName == "" || fileName == "." || fileName == string(filepath.Separator) {
		return "", bperrors.New(bperrors.KindParse, "package filename is empty").
			WithOperation("InvalidFilename").WithContext("package", pkg.Name)
	}

	destination := filepath.Join(os.TempDir(), fileName)

	if err := downloader.DownloadToFile(ctx, downloadURL, destination); err != nil {
		return "", bperrors.Wrap(err, bperrors.KindNetwork, "downloading "+pkg.Name).
			WithOperation("RequestPackage").WithContext("url", downloadURL)
	}

	body, err := os.ReadFile(destination) //nolint:gosec // destination is a deterministic temp path we constructed
	if err != nil {
		return "", bperrors.Wrap(err, bperrors.KindFilesystem, "reading downloaded package")
	}

	ok, actual, err := hashutil.VerifySHA256(bytes.NewReader(body), pkg.SHA256)
	if err != nil {
		return "", bperrors.Wrap(err, bperrors.KindInternal, "hashing downloaded package")
	}

	if !ok {
		os.Remove(destination) //nolint:errcheck

		wrapped := bperrors.Wrapf(bperrors.ErrChecksumMismatch, bperrors.KindNetwork, "checksum mismatch for %s: expected %s got %s",
			downloadURL, pkg.SHA256, actual).
			WithOperation("ChecksumFailed").
			WithContext("url", downloadURL).
			WithContext("expected", pkg.SHA256).
			WithContext("actual", actual)

		return "", wrapped
	}

	return destination, nil
}
