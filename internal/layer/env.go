// Package layer implements the Layer Env Builder (C8) and Cache Coordinator
// (C9), grounded on original_source/src/on_package_install/
// configure_layer_environment.rs and spec.md §4.6/§4.7/§9 (the newer,
// authoritative nested-search code path).
package layer

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Env is the set of PREPEND, colon-delimited environment variable deltas a
// layer contributes, mirroring libcnb's LayerEnv PREPEND-with-Delimiter shape
// closely enough for internal/layer/cache.go to hand to a LayerHandle.
type Env struct {
	Delimiter string
	Values    map[string][]string
}

// NewEnv creates an empty, colon-delimited Env.
func NewEnv() *Env {
	return &Env{Delimiter: ":", Values: make(map[string][]string)}
}

// Prepend appends paths to name's PREPEND list, in order.
func (e *Env) Prepend(name string, paths ...string) {
	e.Values[name] = append(e.Values[name], paths...)
}

// Joined renders name's PREPEND list as one delimiter-joined string, the
// shape write_env ultimately needs.
func (e *Env) Joined(name string) string {
	return strings.Join(e.Values[name], e.Delimiter)
}

var sharedObjectPattern = regexp.MustCompile(`\.so(\.|$)`)

// BuildEnv composes every environment variable delta described in spec.md
// §4.6 for a fully-extracted layer at layerDir with multiarch tuple
// multiarch (e.g. "x86_64-linux-gnu").
func BuildEnv(layerDir, multiarch string) *Env {
	env := NewEnv()

	env.Prepend("PATH",
		filepath.Join(layerDir, "bin"),
		filepath.Join(layerDir, "usr/bin"),
		filepath.Join(layerDir, "usr/sbin"),
	)

	libraryRoots := []string{
		filepath.Join(layerDir, "usr/lib", multiarch),
		filepath.Join(layerDir, "usr/lib"),
		filepath.Join(layerDir, "lib", multiarch),
		filepath.Join(layerDir, "lib"),
	}
	libraryPaths := discoverGroups(libraryRoots, isSharedObject)
	env.Prepend("LD_LIBRARY_PATH", libraryPaths...)
	env.Prepend("LIBRARY_PATH", libraryPaths...)

	includeRoots := []string{
		filepath.Join(layerDir, "usr/include", multiarch),
		filepath.Join(layerDir, "usr/include"),
	}
	includePaths := discoverGroups(includeRoots, isHeader)
	env.Prepend("INCLUDE_PATH", includePaths...)
	env.Prepend("CPATH", includePaths...)
	env.Prepend("CPPPATH", includePaths...)

	env.Prepend("PKG_CONFIG_PATH",
		filepath.Join(layerDir, "usr/lib", multiarch, "pkgconfig"),
		filepath.Join(layerDir, "usr/lib/pkgconfig"),
	)

	return env
}

func isSharedObject(name string) bool {
	return sharedObjectPattern.MatchString(name)
}

func isHeader(name string) bool {
	return filepath.Ext(name) == ".h"
}

// discoverGroups runs discoverGroup over each root in order and concatenates
// the results, matching "the same list is applied ... for each of {roots}."
func discoverGroups(roots []string, matches func(name string) bool) []string {
	var paths []string

	for _, root := range roots {
		paths = append(paths, discoverGroup(root, matches)...)
	}

	return paths
}

// discoverGroup recursively scans root and collects every directory that
// directly contains a file satisfying matches, ordered by descending path
// length, with root itself appended last — matching spec.md §4.6: "order the
// discovered directories by descending path length; finally append the root
// of the group."
func discoverGroup(root string, matches func(name string) bool) []string {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil
	}

	var nested []string

	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}

		if !matches(d.Name()) {
			return nil
		}

		dir := filepath.Dir(path)
		if dir != root {
			nested = append(nested, dir)
		}

		return nil
	})

	nested = dedupe(nested)

	sort.SliceStable(nested, func(i, j int) bool {
		return len(nested[i]) > len(nested[j])
	})

	return append(nested, root)
}

func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))

	out := make([]string, 0, len(paths))

	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}

		seen[p] = struct{}{}

		out = append(out, p)
	}

	return out
}
