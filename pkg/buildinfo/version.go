// Package buildinfo reports the version of the running binary.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/pedigree/pkg/buildinfo.Version=v0.3.0" ./cmd/pedigree
//
// Anything left unstamped falls back to the VCS metadata the Go toolchain
// embeds, so a plain `go install` still reports its commit.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Info is the JSON shape served by the /version endpoint.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the stamped build information, completed from the embedded
// VCS settings where a field was not stamped.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return fill(info)
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "" {
				info.Date = s.Value
			}
		}
	}
	return fill(info)
}

func fill(info Info) Info {
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return info
}

// Template returns the version template for cobra.
func Template() string {
	info := Get()
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", info.Version, info.Commit, info.Date)
}
