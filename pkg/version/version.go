// Package version reports the build identity of the usefold binary.
package version

import (
	"runtime/debug"
	"time"
)

const (
	unknown  = "unknown"
	devBuild = "dev"
)

// Set at link time with -ldflags "-X github.com/Sumatoshi-tech/usefold/pkg/version.Version=...".
var (
	Version = devBuild
	Commit  = unknown
	Date    = unknown
)

// InitBinaryVersion fills Version, Commit and Date from the module build
// info for binaries built with `go install`, leaving ldflags values alone.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == devBuild && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == unknown && setting.Value != "" {
				Commit = shortRevision(setting.Value)
			}
		case "vcs.time":
			if Date == unknown {
				if ts, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					Date = ts.UTC().Format(time.RFC3339)
				}
			}
		}
	}
}

func shortRevision(rev string) string {
	const shortLen = 12

	if len(rev) > shortLen {
		return rev[:shortLen]
	}

	return rev
}
