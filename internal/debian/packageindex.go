package debian

import "sync"

// PackageIndex is the in-memory multimap of every RepositoryPackage known
// for a build, keyed both by real package name and by each of its Provides
// atoms (virtual names), matching spec.md §3/§4.3.
type PackageIndex struct {
	mu         sync.Mutex
	byName     map[string][]RepositoryPackage
	byProvides map[string][]RepositoryPackage
}

// NewPackageIndex creates an empty index.
func NewPackageIndex() *PackageIndex {
	return &PackageIndex{
		byName:     make(map[string][]RepositoryPackage),
		byProvides: make(map[string][]RepositoryPackage),
	}
}

// Add appends pkg under its own name and under each of its Provides atoms.
// Safe for concurrent use: every (source × component) fetch task may call
// Add directly on a shared index, or build its own shard and Merge it in —
// both are supported, matching spec.md §5's "every writer holds an exclusive
// mutation token, or each writer builds a shard that is later merged."
func (idx *PackageIndex) Add(pkg RepositoryPackage) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.addLocked(pkg)
}

func (idx *PackageIndex) addLocked(pkg RepositoryPackage) {
	idx.byName[pkg.Name] = append(idx.byName[pkg.Name], pkg)

	for _, provided := range pkg.ProvidesNames() {
		idx.byProvides[provided] = append(idx.byProvides[provided], pkg)
	}
}

// Merge folds shard's entries into idx. Safe for concurrent use:
// FetchAllIndices calls it from each fetch task as soon as that task's
// shard is parsed.
func (idx *PackageIndex) Merge(shard *PackageIndex) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	shard.mu.Lock()
	defer shard.mu.Unlock()

	for _, pkgs := range shard.byName {
		for _, pkg := range pkgs {
			idx.addLocked(pkg)
		}
	}
}

// HighestVersion returns the package with the lexically maximal Debian
// version for name, or false if name is unknown. Ties are broken by
// insertion order (first inserted wins), matching "ties broken arbitrarily."
func (idx *PackageIndex) HighestVersion(name string) (RepositoryPackage, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	pkgs := idx.byName[name]
	if len(pkgs) == 0 {
		return RepositoryPackage{}, false
	}

	best := pkgs[0]

	for _, pkg := range pkgs[1:] {
		if Less(best.Version, pkg.Version) {
			best = pkg
		}
	}

	return best, true
}

// Providers returns every package that Provides the virtual name, or nil.
func (idx *PackageIndex) Providers(name string) []RepositoryPackage {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	return idx.byProvides[name]
}
