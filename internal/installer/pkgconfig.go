package installer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/heroku/deb-packages-buildpack/internal/bperrors"
)

// RewritePackageConfigs walks layerDir and rewrites every "prefix=" line in
// every "**/pkgconfig/*.pc" file to point at layerDir instead of whatever
// prefix the upstream .deb baked in, grounded on
// rewrite_package_configs.rs, which joins every prefix value under the
// install path unconditionally (no "leave unchanged" branch).
func RewritePackageConfigs(layerDir string) error {
	return filepath.WalkDir(layerDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !isPackageConfig(path) {
			return nil
		}

		return rewritePackageConfig(path, layerDir)
	})
}

func isPackageConfig(path string) bool {
	return filepath.Ext(path) == ".pc" && filepath.Base(filepath.Dir(path)) == "pkgconfig"
}

func rewritePackageConfig(path, layerDir string) error {
	contents, err := os.ReadFile(path) //nolint:gosec // path comes from WalkDir under the layer we just extracted
	if err != nil {
		return bperrors.Wrap(err, bperrors.KindFilesystem, "reading pkg-config file").
			WithOperation("ReadPackageConfig").WithContext("path", path)
	}

	lines := strings.Split(string(contents), "\n")

	for i, line := range lines {
		value, ok := strings.CutPrefix(line, "prefix=")
		if !ok {
			continue
		}

		lines[i] = "prefix=" + filepath.Join(layerDir, strings.TrimLeft(value, "/"))
	}

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil { //nolint:gosec
		return bperrors.Wrap(err, bperrors.KindFilesystem, "writing pkg-config file").
			WithOperation("WritePackageConfig").WithContext("path", path)
	}

	return nil
}
