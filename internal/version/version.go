package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the release version, set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/tutorialbuilder/internal/version.Version=v1.0.0".
var Version = "unknown"

// Build metadata, also set via ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Resolved returns Version, falling back to the module version recorded by
// go install when no ldflags were given.
func Resolved() string {
	if Version != "unknown" && Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// String renders the full version line shown by the CLI.
func String() string {
	return fmt.Sprintf("tutorialbuilder %s (commit %s, built %s, %s)", Resolved(), GitCommit, BuildTime, runtime.Version())
}
