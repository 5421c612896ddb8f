package config

import "fmt"

// Build arguments, statically linked at compile time via ldflags.
var (
	// ModuleName is the name of the go module as specified in go.mod.
	ModuleName = "github.com/portara/walletcore"
	// Commit is the git commit hash the binary was built from.
	Commit = "local"
	// BuildDate is the RFC3339 timestamp of the build.
	BuildDate = "1970-01-01T00:00:00+00:00"
)

// GetFormattedBuildArgs returns "<ModuleName> @ <Commit> (<BuildDate>)".
func GetFormattedBuildArgs() string {
	return fmt.Sprintf("%v @ %v (%v)", ModuleName, Commit, BuildDate)
}
