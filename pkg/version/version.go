// Package version reports build information for ai-snap.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// AppName is the program name used in help output and log fields.
const AppName = "ai-snap"

// Stamped at build time, e.g.
//
//	go build -ldflags "-X aisnap/pkg/version.Version=0.4.0 -X aisnap/pkg/version.Commit=1a2b3c4"
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// Info describes the running binary.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	GoVersion string
	Platform  string
}

// Get returns the stamped build information. Fields left unstamped fall back
// to what the Go toolchain recorded in the binary, as with `go install`.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.BuildTime == "":
			info.BuildTime = s.Value
		}
	}
	return info
}

// String renders a one-line summary:
//
//	ai-snap 0.4.0 (1a2b3c4, 2024-05-01T10:00:00Z) go1.23.1 linux/amd64
func (i Info) String() string {
	commit, built := i.Commit, i.BuildTime
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if commit == "" {
		commit = "unknown commit"
	}
	if built == "" {
		built = "unknown time"
	}
	return fmt.Sprintf("%s %s (%s, %s) %s %s", AppName, i.Version, commit, built, i.GoVersion, i.Platform)
}
