// Package debug gates diagnostic and informational output behind the
// --verbose/--quiet flags and the TBCLEAN_DEBUG environment variable.
package debug

import (
	"fmt"
	"os"
)

var (
	enabled     = os.Getenv("TBCLEAN_DEBUG") != ""
	verboseMode = false
	quietMode   = false
)

// SetVerbose enables verbose/debug output
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet enables quiet mode (suppress non-essential output)
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// Logf writes diagnostic output to stderr when verbose mode is on.
func Logf(format string, args ...interface{}) {
	if enabled || verboseMode {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// Printf writes to stdout when verbose mode is on.
func Printf(format string, args ...interface{}) {
	if enabled || verboseMode {
		fmt.Printf(format, args...)
	}
}

// PrintNormal prints output unless quiet mode is enabled.
// Use this for informational output that should be suppressed by --quiet.
func PrintNormal(format string, args ...interface{}) {
	if !quietMode {
		fmt.Printf(format, args...)
	}
}

// PrintlnNormal prints a line unless quiet mode is enabled
func PrintlnNormal(args ...interface{}) {
	if !quietMode {
		fmt.Println(args...)
	}
}
