// Package logger provides structured, build-output-oriented logging for the
// buildpack, matching the CNB convention of indented "## Section" headers
// followed by two-space-indented detail lines.
package logger

import (
	"os"
	"sync/atomic"

	"github.com/pterm/pterm"
)

var colorDisabled atomic.Bool

// SetColorDisabled toggles ANSI styling, mirroring NO_COLOR/TERM=dumb handling.
func SetColorDisabled(disabled bool) {
	colorDisabled.Store(disabled)

	if disabled {
		pterm.DisableColor()
	} else {
		pterm.EnableColor()
	}
}

// IsColorDisabled reports the current color preference.
func IsColorDisabled() bool {
	return colorDisabled.Load()
}

//nolint:gochecknoinits // matches the color-preference detection the teacher performs at package init
func init() {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		SetColorDisabled(true)
	}
}

// Section prints a top-level "## Title" heading as used throughout the build
// output (determining packages, installing packages, writing layer env).
func Section(title string) {
	pterm.Println()
	pterm.Println(pterm.Bold.Sprintf("## %s", title))
	pterm.Println()
}

// Detail prints a two-space-indented progress line under the current section.
func Detail(format string, args ...any) {
	pterm.Printf("  "+format+"\n", args...)
}

// Warn prints a two-space-indented "!" prefixed cautionary line.
func Warn(format string, args ...any) {
	pterm.Printf("  ! "+format+"\n", args...)
}

// Error prints an error to stderr via pterm's error printer.
func Error(err error) {
	pterm.Error.Println(err.Error())
}
