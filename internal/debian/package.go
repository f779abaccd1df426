package debian

import "strings"

// RepositoryPackage is one entry parsed out of a Packages index: everything
// the installer and resolver need to fetch and relate one package.
type RepositoryPackage struct {
	RepositoryURI string
	Name          string
	Version       Version
	Filename      string
	SHA256        string
	Depends       string
	PreDepends    string
	Provides      string
}

// PackageFromParagraph builds a RepositoryPackage out of a Packages-index Paragraph,
// matching the field set spec.md §4.2 extracts: Package, Version, Filename,
// SHA256, Depends, Pre-Depends, Provides.
func PackageFromParagraph(repositoryURI string, p Paragraph) RepositoryPackage {
	return RepositoryPackage{
		RepositoryURI: repositoryURI,
		Name:          p.Get("Package"),
		Version:       Version(p.Get("Version")),
		Filename:      p.Get("Filename"),
		SHA256:        p.Get("SHA256"),
		Depends:       p.Get("Depends"),
		PreDepends:    p.Get("Pre-Depends"),
		Provides:      p.Get("Provides"),
	}
}

// Dependencies returns the union of Depends and Pre-Depends, as bare package
// names: alternatives (`A | B`) collapse to the first literal name, and any
// parenthesized version constraint is stripped, matching §3's definition of
// RepositoryPackage and the Non-goal excluding alternative-dependency
// selection.
func (p RepositoryPackage) Dependencies() []string {
	return append(splitDependencyList(p.PreDepends), splitDependencyList(p.Depends)...)
}

// ProvidesNames returns the bare virtual-package names this package provides.
func (p RepositoryPackage) ProvidesNames() []string {
	return splitDependencyList(p.Provides)
}

// splitDependencyList parses a raw comma-separated Depends/Provides field
// into bare package names: split on ',', take the first '|' alternative,
// strip any "(>= 1.2.3)" version predicate, trim whitespace.
func splitDependencyList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	atoms := strings.Split(raw, ",")
	names := make([]string, 0, len(atoms))

	for _, atom := range atoms {
		atom = strings.TrimSpace(atom)
		if atom == "" {
			continue
		}

		if idx := strings.IndexByte(atom, '|'); idx >= 0 {
			atom = atom[:idx]
		}

		atom = stripVersionPredicate(atom)

		name := strings.TrimSpace(atom)
		if name != "" {
			names = append(names, name)
		}
	}

	return names
}

func stripVersionPredicate(atom string) string {
	if idx := strings.IndexByte(atom, '('); idx >= 0 {
		return atom[:idx]
	}

	return atom
}
