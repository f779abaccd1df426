package layer

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sort"

	"github.com/heroku/deb-packages-buildpack/internal/bperrors"
	"github.com/heroku/deb-packages-buildpack/internal/debian"
)

// State reports whether a layer's contents survived from a previous build.
type State int

const (
	// StateEmpty means the layer directory is fresh and must be populated.
	StateEmpty State = iota
	// StateRestored means the layer directory's prior contents were kept.
	StateRestored
)

// Handle is the buildpack's view of one cached layer directory, matching
// spec.md §6's cached_layer contract: state, path, and metadata/env writers.
// It models libcnb's CachedLayerDefinition/LayerState/write_metadata/write_env
// as plain Go, with no CNB lifecycle dependency.
type Handle struct {
	Name  string
	Path  string
	State State

	metadataPath string
}

// WriteMetadata persists value's rendering (already serialized by the
// caller) as the layer's cache key for the next build to compare against.
func (h *Handle) WriteMetadata(serialized string) error {
	if err := os.WriteFile(h.metadataPath, []byte(serialized), 0o644); err != nil { //nolint:gosec
		return bperrors.Wrap(err, bperrors.KindFilesystem, "writing layer metadata").
			WithOperation("WriteLayerMetadata").WithContext("layer", h.Name)
	}

	return nil
}

// WriteEnv renders env's PREPEND deltas to the layer's env directory in the
// one-file-per-variable shape CNB layers expose to later buildpacks and the
// launch process, e.g. "env/PATH.prepend" + "env/PATH.delim".
func (h *Handle) WriteEnv(env *Env) error {
	envDir := h.Path + "/env"
	if err := os.MkdirAll(envDir, 0o755); err != nil { //nolint:gosec
		return bperrors.Wrap(err, bperrors.KindFilesystem, "creating layer env directory").
			WithOperation("WriteLayerEnv").WithContext("layer", h.Name)
	}

	for name, values := range env.Values {
		if len(values) == 0 {
			continue
		}

		if err := os.WriteFile(envDir+"/"+name+".delim", []byte(env.Delimiter), 0o644); err != nil { //nolint:gosec
			return bperrors.Wrap(err, bperrors.KindFilesystem, "writing env delimiter").
				WithOperation("WriteLayerEnv").WithContext("variable", name)
		}

		if err := os.WriteFile(envDir+"/"+name+".prepend", []byte(env.Joined(name)), 0o644); err != nil { //nolint:gosec
			return bperrors.Wrap(err, bperrors.KindFilesystem, "writing env prepend value").
				WithOperation("WriteLayerEnv").WithContext("variable", name)
		}
	}

	return nil
}

// CachedLayer implements spec.md §6's cached_layer(name, policy) → LayerHandle:
// it restores layerDir's contents if a previously-written metadata file
// equals newMetadata, otherwise it wipes and recreates an empty layer
// directory. Per §4.7/§6, invalid or unreadable metadata always deletes.
func CachedLayer(name, layerDir, newMetadata string) (*Handle, error) {
	metadataPath := layerDir + ".metadata"

	handle := &Handle{Name: name, Path: layerDir, metadataPath: metadataPath}

	oldMetadata, err := os.ReadFile(metadataPath) //nolint:gosec // layerDir+".metadata" is a path we derive deterministically
	if err == nil && string(oldMetadata) == newMetadata {
		if info, statErr := os.Stat(layerDir); statErr == nil && info.IsDir() {
			handle.State = StateRestored

			return handle, nil
		}
	}

	if err := os.RemoveAll(layerDir); err != nil {
		return nil, bperrors.Wrap(err, bperrors.KindFilesystem, "clearing stale layer").
			WithOperation("CreateLayer").WithContext("layer", name)
	}

	if err := os.MkdirAll(layerDir, 0o755); err != nil { //nolint:gosec
		return nil, bperrors.Wrap(err, bperrors.KindFilesystem, "creating layer").
			WithOperation("CreateLayer").WithContext("layer", name)
	}

	handle.State = StateEmpty

	return handle, nil
}

// URLCacheHandle restores or recreates a per-URL cache file (InRelease /
// Packages bodies), matching §4.7's "layer name = deterministic hash of URL;
// restore if metadata bit-equal."
func URLCacheHandle(cacheRoot, url, contentHash string) (*Handle, error) {
	name := hashURL(url)

	return CachedLayer(name, cacheRoot+"/"+name, contentHash)
}

func hashURL(url string) string {
	sum := sha256.Sum256([]byte(url))

	return hex.EncodeToString(sum[:])
}

// InstallationMetadataKey renders an InstallationMetadata-equivalent cache
// key: the install set's package→sha256 map plus the target distro, matching
// spec.md §3's InstallationMetadata = (map name→sha256, distro). Map
// iteration is sorted so equal install sets always render identically.
func InstallationMetadataKey(packages []debian.RepositoryPackage, distro debian.Distro) string {
	names := make([]string, 0, len(packages))
	hashes := make(map[string]string, len(packages))

	for _, pkg := range packages {
		names = append(names, pkg.Name)
		hashes[pkg.Name] = pkg.SHA256
	}

	sort.Strings(names)

	key := distro.String() + "|"

	for _, name := range names {
		key += name + "=" + hashes[name] + ";"
	}

	return key
}
