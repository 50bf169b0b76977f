// Package misc holds build time information and small helpers shared by all
// packages.
package misc

import "runtime"

// Set at build time with -ldflags "-X autoprefix/misc.version=...".
var (
	version = "dev"
	githash = "unknown"
)

const appName = "autoprefix"

// GetAppName returns name of the program suitable for file names.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns git hash of the build.
func GetGitHash() string {
	return githash
}

// Linefeed is the host line separator, used when text is appended to
// generated files.
func Linefeed() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}
