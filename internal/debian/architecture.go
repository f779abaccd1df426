package debian

import "github.com/heroku/deb-packages-buildpack/internal/bperrors"

// Architecture is one of the two Debian architectures this buildpack supports.
type Architecture string

const (
	// Amd64 is the x86_64 architecture.
	Amd64 Architecture = "amd64"
	// Arm64 is the aarch64 architecture.
	Arm64 Architecture = "arm64"
)

// multiarchTuples maps each supported Architecture to its canonical
// multiarch directory name, per
// https://wiki.ubuntu.com/MultiarchSpec.
var multiarchTuples = map[Architecture]string{
	Amd64: "x86_64-linux-gnu",
	Arm64: "aarch64-linux-gnu",
}

// Multiarch renders the canonical multiarch tuple for a, e.g. "x86_64-linux-gnu".
func (a Architecture) Multiarch() (string, error) {
	tuple, ok := multiarchTuples[a]
	if !ok {
		return "", bperrors.Newf(bperrors.KindEnvironment, "unsupported architecture %q", a)
	}

	return tuple, nil
}

// Valid reports whether a is one of the supported architectures.
func (a Architecture) Valid() bool {
	_, ok := multiarchTuples[a]

	return ok
}

// ParseArchitecture validates and returns an Architecture from user input.
func ParseArchitecture(value string) (Architecture, error) {
	arch := Architecture(value)
	if !arch.Valid() {
		return "", bperrors.Newf(bperrors.KindEnvironment,
			"unsupported architecture %q (supported: amd64, arm64)", value)
	}

	return arch, nil
}
