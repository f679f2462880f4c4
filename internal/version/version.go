// Package version reports the build identity of storeassist binaries.
package version

import (
	"runtime/debug"
	"sync"
)

// Set via -ldflags "-X github.com/kailas-cloud/storeassist/internal/version.Version=...".
//
//nolint:gochecknoglobals,revive // linker-injected
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Build describes one binary.
type Build struct {
	Version string
	Commit  string
	Date    string
}

var (
	once   sync.Once
	cached Build
)

// Get returns the linker-injected values, filling gaps from the Go build info
// that `go install` and VCS-stamped builds carry.
func Get() Build {
	once.Do(func() {
		cached = resolve(Version, Commit, Date, debug.ReadBuildInfo)
	})
	return cached
}

func resolve(v, commit, date string, read func() (*debug.BuildInfo, bool)) Build {
	b := Build{Version: v, Commit: commit, Date: date}
	info, ok := read()
	if !ok {
		return b.withDefaults()
	}
	if b.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "" {
				b.Commit = s.Value
			}
		case "vcs.time":
			if b.Date == "" {
				b.Date = s.Value
			}
		}
	}
	return b.withDefaults()
}

func (b Build) withDefaults() Build {
	if len(b.Commit) > 12 {
		b.Commit = b.Commit[:12]
	}
	if b.Commit == "" {
		b.Commit = "unknown"
	}
	if b.Date == "" {
		b.Date = "unknown"
	}
	return b
}

// String renders "version (commit, date)".
func (b Build) String() string {
	return b.Version + " (" + b.Commit + ", " + b.Date + ")"
}
