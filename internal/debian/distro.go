package debian

import (
	_ "embed"
	"fmt"

	"github.com/heroku/deb-packages-buildpack/internal/bperrors"
)

// Codename identifies a supported Ubuntu release by its release codename.
type Codename string

const (
	// Jammy is Ubuntu 22.04 LTS.
	Jammy Codename = "jammy"
	// Noble is Ubuntu 24.04 LTS.
	Noble Codename = "noble"
)

//go:embed keys/ubuntu-keyring-2018-archive.asc
var ubuntuArchiveKeyring []byte

// Distro is the frozen (name, version, codename, architecture) tuple a build targets.
type Distro struct {
	Name         string
	Version      string
	Codename     Codename
	Architecture Architecture
}

// ResolveDistro maps a platform's (distro_name, distro_version, arch) triple
// onto one of the two supported distros, matching
// original_source/src/debian/supported_distro.rs's TryFrom<&Target>.
func ResolveDistro(name, version, arch string) (Distro, error) {
	architecture, err := ParseArchitecture(arch)
	if err != nil {
		return Distro{}, err
	}

	var codename Codename

	switch {
	case name == "ubuntu" && version == "22.04":
		codename = Jammy
	case name == "ubuntu" && version == "24.04":
		codename = Noble
	default:
		return Distro{}, bperrors.Newf(bperrors.KindEnvironment,
			"unsupported distro %s@%s/%s", name, version, arch)
	}

	return Distro{Name: name, Version: version, Codename: codename, Architecture: architecture}, nil
}

// Sources returns the fixed list of APT sources for d, filtered to d's
// architecture, matching SupportedDistro::get_source_list.
func (d Distro) Sources() ([]Source, error) {
	var all []Source

	switch d.Codename {
	case Jammy:
		all = jammySources()
	case Noble:
		all = nobleSources()
	default:
		return nil, bperrors.Newf(bperrors.KindEnvironment, "unsupported codename %q", d.Codename)
	}

	filtered := make([]Source, 0, len(all))

	for _, s := range all {
		if s.Architecture == d.Architecture {
			filtered = append(filtered, s)
		}
	}

	if len(filtered) == 0 {
		return nil, bperrors.Newf(bperrors.KindEnvironment,
			"no APT sources available for %s/%s", d.Codename, d.Architecture)
	}

	return filtered, nil
}

func jammySources() []Source {
	return newSource("http://archive.ubuntu.com/ubuntu",
		[]string{"jammy", "jammy-security", "jammy-updates"},
		[]string{"main", "universe"}, ubuntuArchiveKeyring, Amd64)
}

func nobleSources() []Source {
	var sources []Source
	sources = append(sources, newSource("http://archive.ubuntu.com/ubuntu",
		[]string{"noble", "noble-updates"},
		[]string{"main", "universe"}, ubuntuArchiveKeyring, Amd64)...)
	sources = append(sources, newSource("http://security.ubuntu.com/ubuntu",
		[]string{"noble-security"},
		[]string{"main", "universe"}, ubuntuArchiveKeyring, Amd64)...)
	sources = append(sources, newSource("http://ports.ubuntu.com/ubuntu-ports",
		[]string{"noble", "noble-updates", "noble-security"},
		[]string{"main", "universe"}, ubuntuArchiveKeyring, Arm64)...)

	return sources
}

func (d Distro) String() string {
	return fmt.Sprintf("%s %s (%s/%s)", d.Name, d.Version, d.Codename, d.Architecture)
}
