// Package main implements the buildpack's build phase: it loads the
// resolved configuration and target triple, then drives C1-C9 end to end —
// the CNB lifecycle plumbing around it (layer metadata persistence, build
// plan consumption) is the external "layer cache contract" spec.md §6
// describes and leaves out of the core.
package main

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/heroku/deb-packages-buildpack/internal/config"
	"github.com/heroku/deb-packages-buildpack/internal/debian"
	"github.com/heroku/deb-packages-buildpack/internal/download"
	"github.com/heroku/deb-packages-buildpack/internal/installer"
	"github.com/heroku/deb-packages-buildpack/internal/layer"
	"github.com/heroku/deb-packages-buildpack/internal/logger"
	"github.com/heroku/deb-packages-buildpack/internal/resolver"
)

const configFileName = "project.toml"

var rootCmd = &cobra.Command{
	Use:           "build <layers-dir> <platform-dir> <plan-path>",
	Short:         "Install the deb packages declared in project.toml into a CNB layer",
	Args:          cobra.ExactArgs(3),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(_ *cobra.Command, args []string) error {
		layersDir, platformDir := args[0], args[1]

		return runBuild(layersDir, platformDir)
	},
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}

func runBuild(layersDir, platformDir string) error {
	logger.Section("Resolving target distribution")

	distro, err := debian.ResolveDistro(
		os.Getenv("CNB_TARGET_DISTRO_NAME"),
		os.Getenv("CNB_TARGET_DISTRO_VERSION"),
		os.Getenv("CNB_TARGET_ARCH"),
	)
	if err != nil {
		return err
	}

	logger.Detail("target: %s", distro)

	appDir, err := os.Getwd()
	if err != nil {
		return err
	}

	cfg, err := config.Load(filepath.Join(appDir, configFileName))
	if err != nil {
		return err
	}

	if len(cfg.Install) == 0 {
		logger.Detail("no packages requested, nothing to install")

		return nil
	}

	sources, err := distro.Sources()
	if err != nil {
		return err
	}

	for _, custom := range cfg.Sources {
		sources = append(sources, custom.ToSources()...)
	}

	ctx := context.Background()
	downloadClient := download.NewClient()
	poolSize := runtime.GOMAXPROCS(0)

	cacheDir := filepath.Join(layersDir, "cache")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil { //nolint:gosec
		return err
	}

	logger.Section("Fetching package indices")

	index, err := debian.FetchAllIndices(ctx, downloadClient, cacheDir, sources, poolSize)
	if err != nil {
		return err
	}

	systemPackages, err := debian.ReadSystemPackages()
	if err != nil {
		return err
	}

	logger.Section("Determining packages to install")

	requested := make([]resolver.RequestedPackage, 0, len(cfg.Install))
	for _, pkg := range cfg.Install {
		requested = append(requested, resolver.RequestedPackage{
			Name:             pkg.Name,
			SkipDependencies: pkg.SkipDependencies,
			Force:            pkg.Force,
		})
	}

	result, err := resolver.Resolve(index, requested, systemPackages)
	if err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		logger.Warn("%s", warning.Message)
	}

	packages := make([]debian.RepositoryPackage, 0, len(result.Install))
	for _, record := range result.Install {
		packages = append(packages, record.Package)
	}

	if len(packages) == 0 {
		logger.Detail("nothing to install")

		return nil
	}

	metadataKey := layer.InstallationMetadataKey(packages, distro)

	installLayerDir := filepath.Join(layersDir, "deb-packages")

	handle, err := layer.CachedLayer("deb-packages", installLayerDir, metadataKey)
	if err != nil {
		return err
	}

	if handle.State == layer.StateRestored {
		logger.Detail("restoring installed packages from cache")

		return nil
	}

	if err := installer.Install(ctx, downloadClient, packages, handle.Path, poolSize); err != nil {
		return err
	}

	if err := handle.WriteMetadata(metadataKey); err != nil {
		return err
	}

	multiarch, err := distro.Architecture.Multiarch()
	if err != nil {
		return err
	}

	logger.Section("Writing layer environment")

	env := layer.BuildEnv(handle.Path, multiarch)

	return handle.WriteEnv(env)
}
