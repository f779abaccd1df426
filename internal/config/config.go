// Package config decodes and validates the buildpack's TOML configuration
// contract (spec.md §6): an ordered list of RequestedPackage plus an
// optional list of CustomSource, grounded on
// original_source/src/config/{buildpack_config,custom_source,requested_package}.rs
// and the example pack's BurntSushi/toml decode convention (see
// cybozu-go-aptutil's mirror.Config).
package config

import (
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/heroku/deb-packages-buildpack/internal/bperrors"
	"github.com/heroku/deb-packages-buildpack/internal/debian"
)

var packageNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9+.\-]+$`)

// RequestedPackage mirrors debian's install request shape, decoded either
// from a bare TOML string ("curl") or a table
// ({name = "curl", skip_dependencies = true, force = true}), matching
// requested_package.rs's two TOML shapes.
type RequestedPackage struct {
	Name             string
	SkipDependencies bool
	Force            bool
}

// UnmarshalTOML implements toml.Unmarshaler, accepting either a bare string
// or a table with a required "name" key.
func (r *RequestedPackage) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case string:
		r.Name = v
	case map[string]any:
		name, _ := v["name"].(string)
		r.Name = name

		if skip, ok := v["skip_dependencies"].(bool); ok {
			r.SkipDependencies = skip
		}

		if force, ok := v["force"].(bool); ok {
			r.Force = force
		}
	default:
		return bperrors.Newf(bperrors.KindConfiguration, "install entry must be a string or a table, got %T", data)
	}

	if !packageNamePattern.MatchString(r.Name) {
		return bperrors.Newf(bperrors.KindConfiguration, "invalid package name %q", r.Name).
			WithContext("name", r.Name)
	}

	return nil
}

// CustomSource is a user-declared APT source, matching custom_source.rs's
// CustomSource, decoded from the config's "sources" array.
type CustomSource struct {
	URI        string   `toml:"uri" validate:"required,url"`
	Suites     []string `toml:"suites" validate:"required,min=1"`
	Components []string `toml:"components" validate:"required,min=1"`
	Arch       []string `toml:"arch" validate:"required,min=1,dive,oneof=amd64 arm64"`
	SignedBy   string   `toml:"signed_by" validate:"required"`
}

// ToSources expands a CustomSource into one debian.Source per (architecture,
// suite) pair, matching custom_source.rs's to_sources() fan-out over
// architectures and source.go's fan-out over suites (spec.md §3's Source has
// a singular suite field).
func (c CustomSource) ToSources() []debian.Source {
	var sources []debian.Source

	for _, rawArch := range c.Arch {
		arch, err := debian.ParseArchitecture(rawArch)
		if err != nil {
			continue // caught by struct validation before ToSources is called
		}

		for _, suite := range c.Suites {
			sources = append(sources, debian.Source{
				RepositoryURI:      c.URI,
				Suite:              suite,
				Components:         append([]string(nil), c.Components...),
				Architecture:       arch,
				SigningCertificate: []byte(c.SignedBy),
			})
		}
	}

	return sources
}

// BuildpackConfig is the decoded, validated configuration contract.
type BuildpackConfig struct {
	Install []RequestedPackage `toml:"install"`
	Sources []CustomSource     `toml:"sources" validate:"dive"`
}

var structValidator = validator.New()

// Parse decodes and validates contents as the buildpack's TOML configuration.
func Parse(contents string) (BuildpackConfig, error) {
	var cfg BuildpackConfig

	if _, err := toml.Decode(contents, &cfg); err != nil {
		return BuildpackConfig{}, bperrors.Wrap(err, bperrors.KindConfiguration, "parsing configuration").
			WithOperation("ParseConfig")
	}

	if err := structValidator.Struct(cfg); err != nil {
		return BuildpackConfig{}, bperrors.Wrap(err, bperrors.KindConfiguration, "validating configuration").
			WithOperation("ParseConfig")
	}

	return cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (BuildpackConfig, error) {
	contents, err := os.ReadFile(path) //nolint:gosec // path is supplied by the CNB lifecycle, not attacker input
	if err != nil {
		return BuildpackConfig{}, bperrors.Wrap(err, bperrors.KindFilesystem, "reading configuration file").
			WithOperation("ReadConfig").WithContext("path", path)
	}

	return Parse(string(contents))
}
