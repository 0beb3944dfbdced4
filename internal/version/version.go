// Package version reports the build identity of the schemapilot binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via ldflags. Release is empty for development builds.
var (
	Release   = ""
	Commit    = "unknown"
	BuildTime = "unknown"
)

var readBuildInfo = debug.ReadBuildInfo

// String returns the release tag when set, otherwise a commit-based dev version.
// Binaries built without ldflags fall back to the module build info.
func String() string {
	release, commit, built := Release, Commit, BuildTime
	if info, ok := readBuildInfo(); ok {
		if release == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			release = info.Main.Version
		}
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && commit == "unknown":
				commit = s.Value
			case s.Key == "vcs.time" && built == "unknown":
				built = s.Value
			}
		}
	}

	if release == "" {
		release = "dev"
	}
	return fmt.Sprintf("schemapilot %s (commit: %s, built: %s)", release, short(commit), built)
}

func short(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
