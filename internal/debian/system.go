package debian

import (
	"os"
	"strings"

	"github.com/heroku/deb-packages-buildpack/internal/bperrors"
)

// InstalledPackage is one entry from the host image's dpkg status database.
type InstalledPackage struct {
	Name    string
	Version Version
}

const dpkgStatusPath = "/var/lib/dpkg/status"

// ReadSystemPackages parses /var/lib/dpkg/status into a name-keyed map,
// matching determine_packages_to_install.rs's "read_to_string(...).split(\"\\n\\n\")".
func ReadSystemPackages() (map[string]InstalledPackage, error) {
	data, err := os.ReadFile(dpkgStatusPath) //nolint:gosec // fixed, well-known system path
	if err != nil {
		return nil, bperrors.Wrap(err, bperrors.KindFilesystem, "reading dpkg status").
			WithOperation("ReadSystemPackages")
	}

	paragraphs, err := ParseParagraphs(strings.NewReader(string(data)))
	if err != nil {
		return nil, bperrors.Wrap(err, bperrors.KindParse, "parsing dpkg status").
			WithOperation("ParseSystemPackage")
	}

	installed := make(map[string]InstalledPackage, len(paragraphs))

	for _, p := range paragraphs {
		name := p.Get("Package")
		if name == "" {
			continue
		}

		installed[name] = InstalledPackage{Name: name, Version: Version(p.Get("Version"))}
	}

	return installed, nil
}
