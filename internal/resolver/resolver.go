// Package resolver implements the dependency resolver (C6): a DFS over
// requested package names that produces an ordered install set, diagnostic
// dependency-path traces, and user warnings, grounded on
// original_source/src/determine_packages_to_install.rs's visit().
package resolver

import (
	"fmt"

	"github.com/heroku/deb-packages-buildpack/internal/bperrors"
	"github.com/heroku/deb-packages-buildpack/internal/debian"
	"github.com/heroku/deb-packages-buildpack/internal/orderedset"
)

// RequestedPackage is one user-declared install request.
type RequestedPackage struct {
	Name             string
	SkipDependencies bool
	// Force, decided in SPEC_FULL.md §9: a top-level request with Force=true
	// skips both the system-installed and already-installed-by-another-package
	// shortcuts. It never propagates to transitively visited dependencies.
	Force bool
}

// InstallRecord pairs a resolved package with the chain of package names
// that pulled it in. The path is empty for a package requested at top
// level; otherwise DependencyPath[0] is the top-level requester.
type InstallRecord struct {
	Package        debian.RepositoryPackage
	DependencyPath []string
}

// Warning is a non-fatal diagnostic surfaced to the user during resolution.
type Warning struct {
	Message string
}

// Result is the resolver's output: the ordered install set (first-recorded
// order, per spec.md §4.4) and any warnings collected along the way.
type Result struct {
	Install  []InstallRecord
	Warnings []Warning
}

// Resolve runs the DFS described in spec.md §4.4 once per requested package,
// in insertion order.
func Resolve(index *debian.PackageIndex, requested []RequestedPackage, systemPackages map[string]debian.InstalledPackage) (Result, error) {
	state := &visitState{
		index:          index,
		systemPackages: systemPackages,
		installOrder:   orderedset.New[string](),
		installDetails: make(map[string]InstallRecord),
	}

	for _, req := range requested {
		stack := orderedset.New[string]()
		if err := state.visit(req.Name, req.SkipDependencies, req.Force, stack); err != nil {
			return Result{}, err
		}
	}

	records := make([]InstallRecord, 0, state.installOrder.Len())
	for _, name := range state.installOrder.Values() {
		records = append(records, state.installDetails[name])
	}

	return Result{Install: records, Warnings: state.warnings}, nil
}

type visitState struct {
	index          *debian.PackageIndex
	systemPackages map[string]debian.InstalledPackage
	installOrder   *orderedset.Set[string]
	installDetails map[string]InstallRecord
	warnings       []Warning
}

func (s *visitState) warn(format string, args ...any) {
	s.warnings = append(s.warnings, Warning{Message: fmt.Sprintf(format, args...)})
}

// visit implements the pseudocode in spec.md §4.4 verbatim, including the
// force-flag decision: force only ever applies to the call made directly
// from Resolve's top-level loop (stack is empty), never to a recursive call
// made while walking dependencies.
func (s *visitState) visit(name string, skipDeps, force bool, stack *orderedset.Set[string]) error {
	topLevel := stack.Len() == 0

	if sys, ok := s.systemPackages[name]; ok && !(force && topLevel) {
		if topLevel {
			s.warn("Skipping %s because %s@%s is already installed on the system "+
				"(consider removing %s from your project.toml configuration for this buildpack)",
				name, sys.Name, sys.Version, name)
		}

		return nil
	}

	if rec, ok := s.installDetails[name]; ok && !(force && topLevel) {
		if topLevel {
			s.warn("Skipping %s because %s@%s was already installed as a dependency of %s "+
				"(consider removing %s from your project.toml configuration for this buildpack)",
				name, rec.Package.Name, rec.Package.Version, rec.DependencyPath[0], name)
		}

		return nil
	}

	pkg, ok := s.index.HighestVersion(name)
	if !ok {
		providers := s.index.Providers(name)

		switch len(providers) {
		case 0:
			return bperrors.Newf(bperrors.KindResolution, "package not found: %s", name).
				WithOperation("PackageNotFound").WithContext("package", name)
		case 1:
			provider := providers[0]
			if topLevel {
				s.warn("Virtual package %s is provided by %s@%s "+
					"(consider replacing %s for %s in your project.toml configuration for this buildpack)",
					name, provider.Name, provider.Version, name, provider.Name)
			}

			return s.visit(provider.Name, skipDeps, force, stack)
		default:
			return bperrors.Newf(bperrors.KindResolution,
				"virtual package %s is provided by %d packages and must be specified explicitly", name, len(providers)).
				WithOperation("VirtualPackageMustBeSpecified").
				WithContext("package", name).WithContext("providers", providers)
		}
	}

	dependencyPath := append([]string(nil), stack.Values()...)
	s.installDetails[pkg.Name] = InstallRecord{Package: pkg, DependencyPath: dependencyPath}
	s.installOrder.Add(pkg.Name)

	stack.Add(pkg.Name)

	if !skipDeps {
		for _, dep := range pkg.Dependencies() {
			if _, onSystem := s.systemPackages[dep]; onSystem {
				continue
			}

			if _, installed := s.installDetails[dep]; installed {
				continue
			}

			if err := s.visit(dep, false, false, stack); err != nil {
				return err
			}
		}
	}

	stack.Remove(pkg.Name)

	return nil
}
