// Package main implements the buildpack's detect phase: it applies whenever
// the app directory carries a deb-packages configuration file, matching the
// CNB detect contract described only as an external interface in
// spec.md §1/§6 ("detection... described only by the interfaces the core
// consumes").
package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/heroku/deb-packages-buildpack/internal/logger"
)

const configFileName = "project.toml"

var rootCmd = &cobra.Command{
	Use:           "detect <app-dir> <platform-dir> <plan-path>",
	Short:         "Detect whether the app directory declares deb-packages configuration",
	Args:          cobra.ExactArgs(3),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(_ *cobra.Command, args []string) error {
		appDir := args[0]

		if _, err := os.Stat(filepath.Join(appDir, configFileName)); err != nil {
			logger.Detail("no %s found in %s", configFileName, appDir)
			os.Exit(100) //nolint:revive // CNB detect contract: exit 100 means "does not apply"

			return nil
		}

		return nil
	},
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}
