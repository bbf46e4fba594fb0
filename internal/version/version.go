package version

import (
	"fmt"
	"runtime"
)

// Build information, set via ldflags
var (
	// Version is the current version of qadash
	Version = "dev"

	// Commit is the git commit hash
	Commit = "unknown"

	// Date is the build date
	Date = "unknown"

	// BuiltBy indicates how the binary was built
	BuiltBy = "source"
)

// Info is the build information as reported by `qadash version --json`
// and by the MCP server.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	BuiltBy   string `json:"built_by"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersion returns the current version
func GetVersion() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// GetInfo returns the full build information
func GetInfo() Info {
	return Info{
		Version:   GetVersion(),
		Commit:    Commit,
		Date:      Date,
		BuiltBy:   BuiltBy,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// GetFullVersion returns the full version information on one line
func GetFullVersion() string {
	info := GetInfo()
	return fmt.Sprintf("%s (commit: %s, built: %s, by: %s, %s %s)",
		info.Version, info.Commit, info.Date, info.BuiltBy, info.GoVersion, info.Platform)
}
