package debian

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/heroku/deb-packages-buildpack/internal/archive"
	"github.com/heroku/deb-packages-buildpack/internal/bperrors"
	"github.com/heroku/deb-packages-buildpack/internal/scheduler"
)

// Fetcher downloads files to a local cache directory keyed by URL hash,
// matching the Release Fetcher's "file path is derived from the URL; an
// existing valid file is reused verbatim" caching rule.
type Fetcher interface {
	DownloadToFile(ctx context.Context, url, destination string) error
}

// FetchRelease implements C2: fetch and PGP-verify source's InRelease file.
func FetchRelease(ctx context.Context, client Fetcher, cacheDir string, source Source) (ReleaseFile, error) {
	url := strings.TrimRight(source.RepositoryURI, "/") + "/dists/" + source.Suite + "/InRelease"

	dest := filepath.Join(cacheDir, cacheFileName(url))

	if err := client.DownloadToFile(ctx, url, dest); err != nil {
		return ReleaseFile{}, bperrors.Wrap(err, bperrors.KindNetwork, "fetching InRelease").
			WithOperation("GetReleaseRequest").WithContext("url", url)
	}

	document, err := os.ReadFile(dest) //nolint:gosec // dest is a deterministic cache path we constructed
	if err != nil {
		return ReleaseFile{}, bperrors.Wrap(err, bperrors.KindFilesystem, "reading cached InRelease")
	}

	plaintext, err := VerifyClearSigned(document, source.SigningCertificate)
	if err != nil {
		return ReleaseFile{}, err
	}

	return ParseRelease(plaintext)
}

// FetchPackageIndex implements C3: download, checksum-verify, decompress,
// and parse the Packages file for (source, component), returning a shard
// PackageIndex for the caller to Merge into a shared index.
func FetchPackageIndex(ctx context.Context, client Fetcher, cacheDir string, source Source, release ReleaseFile, component string) (*PackageIndex, error) {
	path, ext, err := release.IndexPath(component, source.Architecture)
	if err != nil {
		return nil, err
	}

	expected, ok := release.Hashes[path]
	if !ok {
		return nil, bperrors.Newf(bperrors.KindNetwork, "release file missing hash entry for %s", path).
			WithOperation("MissingPackageIndexReleaseHash")
	}

	url := indexDownloadURL(source, release, path, expected.SHA256)

	dest := filepath.Join(cacheDir, cacheFileName(url))
	if err := client.DownloadToFile(ctx, url, dest); err != nil {
		return nil, bperrors.Wrap(err, bperrors.KindNetwork, "fetching package index").
			WithContext("url", url)
	}

	raw, err := os.ReadFile(dest) //nolint:gosec
	if err != nil {
		return nil, bperrors.Wrap(err, bperrors.KindFilesystem, "reading cached package index")
	}

	actual := sha256.Sum256(raw)
	if hex.EncodeToString(actual[:]) != expected.SHA256 {
		wrapped := fmt.Errorf("%w: expected %s got %x", bperrors.ErrChecksumMismatch, expected.SHA256, actual)

		return nil, bperrors.Wrap(wrapped, bperrors.KindNetwork, "package index checksum mismatch").
			WithOperation("ChecksumFailed").WithContext("url", url)
	}

	decompressed, err := archive.DecompressBytes(ext, raw)
	if err != nil {
		return nil, err
	}

	paragraphs, err := ParseParagraphs(strings.NewReader(string(decompressed)))
	if err != nil {
		return nil, err
	}

	shard := NewPackageIndex()

	for _, p := range paragraphs {
		if p.Get("Package") == "" {
			continue
		}

		shard.Add(PackageFromParagraph(source.RepositoryURI, p))
	}

	return shard, nil
}

// indexDownloadURL implements §4.2's "Download URL construction": by-hash
// when the release advertises Acquire-By-Hash, otherwise the literal path.
func indexDownloadURL(source Source, release ReleaseFile, path, sha256Hex string) string {
	base := strings.TrimRight(source.RepositoryURI, "/") + "/dists/" + source.Suite

	if release.AcquireByHash {
		dir := path[:strings.LastIndex(path, "/")]

		return base + "/" + dir + "/by-hash/SHA256/" + sha256Hex
	}

	return base + "/" + path
}

// FetchAllIndices runs one task per source concurrently, bounded by a
// scheduler.Pool. Each task fetches its source's release file, then fetches
// that source's components one after another (components of one source are
// not fetched in parallel) and merges each component's shard into the
// shared PackageIndex as soon as it is parsed.
func FetchAllIndices(ctx context.Context, client Fetcher, cacheDir string, sources []Source, poolSize int) (*PackageIndex, error) {
	merged := NewPackageIndex()
	pool := scheduler.NewPool(ctx, poolSize)

	for _, source := range sources {
		source := source

		pool.Submit(func(ctx context.Context) error {
			release, err := FetchRelease(ctx, client, cacheDir, source)
			if err != nil {
				return err
			}

			for _, component := range source.Components {
				component := component

				shard, err := FetchPackageIndex(ctx, client, cacheDir, source, release, component)
				if err != nil {
					return err
				}

				merged.Merge(shard)
			}

			return nil
		})
	}

	if errs := pool.Wait(); len(errs) > 0 {
		return nil, errs[0]
	}

	return merged, nil
}

// cacheFileName derives a deterministic, filesystem-safe cache file name
// from a URL, matching "the file path is derived from the URL."
func cacheFileName(url string) string {
	sum := sha256.Sum256([]byte(url))

	return hex.EncodeToString(sum[:])
}
