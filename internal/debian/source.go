package debian

// Source is one APT repository suite: a URI, a single suite name, the set of
// components to fetch from it, the architecture it serves, and the embedded
// PGP certificate bytes used to verify its InRelease file.
//
// The distro profile's fixed source lists group several suites under one
// logical repository (e.g. jammy, jammy-security, jammy-updates all live at
// archive.ubuntu.com); newSource expands that into one Source per suite so
// every downstream fetch targets exactly one InRelease document.
type Source struct {
	RepositoryURI      string
	Suite              string
	Components         []string
	Architecture       Architecture
	SigningCertificate []byte
}

func newSource(uri string, suites, components []string, cert []byte, arch Architecture) []Source {
	sources := make([]Source, 0, len(suites))
	for _, suite := range suites {
		sources = append(sources, Source{
			RepositoryURI:      uri,
			Suite:              suite,
			Components:         components,
			Architecture:       arch,
			SigningCertificate: cert,
		})
	}

	return sources
}
