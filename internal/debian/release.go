package debian

import (
	"strconv"
	"strings"

	"github.com/heroku/deb-packages-buildpack/internal/bperrors"
)

// FileHash is one (sha256, size) entry from an InRelease SHA256 block.
type FileHash struct {
	SHA256 string
	Size   int64
}

// ReleaseFile is the parsed representation of an InRelease document:
// a map from the path relative to the suite directory (e.g.
// "main/binary-amd64/Packages.gz") to its (sha256, size), plus the
// Acquire-By-Hash opt-in flag, matching spec.md §3.
type ReleaseFile struct {
	AcquireByHash bool
	Hashes        map[string]FileHash
}

// ParseRelease extracts the SHA256 table and Acquire-By-Hash flag from an
// InRelease document's verified plaintext body, matching spec.md §4.1 step
// 5: "Extract the SHA256 section: a sequence of (sha256, size, path).
// Missing SHA256 section → MissingSha256ReleaseHashes."
func ParseRelease(plaintext []byte) (ReleaseFile, error) {
	paragraphs, err := ParseParagraphs(strings.NewReader(string(plaintext)))
	if err != nil {
		return ReleaseFile{}, err
	}

	if len(paragraphs) == 0 {
		return ReleaseFile{}, bperrors.New(bperrors.KindParse, "InRelease document has no paragraphs")
	}

	p := paragraphs[0]

	raw := p.Get("SHA256")
	if strings.TrimSpace(raw) == "" {
		return ReleaseFile{}, bperrors.New(bperrors.KindNetwork, "InRelease document has no SHA256 section").
			WithOperation("MissingSha256ReleaseHashes")
	}

	hashes, err := parseFileHashLines(raw)
	if err != nil {
		return ReleaseFile{}, err
	}

	return ReleaseFile{
		AcquireByHash: strings.EqualFold(strings.TrimSpace(p.Get("Acquire-By-Hash")), "yes"),
		Hashes:        hashes,
	}, nil
}

// parseFileHashLines parses the folded SHA256 multiline field: each line is
// "<sha256> <size> <path>", whitespace-separated.
func parseFileHashLines(raw string) (map[string]FileHash, error) {
	hashes := make(map[string]FileHash)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, bperrors.Newf(bperrors.KindParse, "malformed SHA256 release hash line: %q", line)
		}

		size, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, bperrors.Wrapf(err, bperrors.KindParse, "malformed size in release hash line: %q", line)
		}

		hashes[fields[2]] = FileHash{SHA256: fields[0], Size: size}
	}

	return hashes, nil
}

// IndexPath returns the preferred relative path for the Packages index of
// (component, arch), and the compression extension chosen, matching spec.md
// §4.2: "The first path present in the release file's SHA256 table is used,
// preferring xz then gz then uncompressed."
func (r ReleaseFile) IndexPath(component string, arch Architecture) (path, ext string, err error) {
	base := component + "/binary-" + string(arch) + "/Packages"

	for _, candidate := range []string{"xz", "gz", ""} {
		p := base
		if candidate != "" {
			p += "." + candidate
		}

		if _, ok := r.Hashes[p]; ok {
			return p, candidate, nil
		}
	}

	return "", "", bperrors.Newf(bperrors.KindNetwork,
		"no Packages index found for %s/binary-%s", component, arch).
		WithOperation("MissingPackageIndexReleaseHash")
}
