// Package app provides the core application structure of the strassen CLI.
// It handles application lifecycle, mode dispatching, and version management.
package app

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Build-time variables set via -ldflags:
//
//	go build -ldflags="-X github.com/agbru/strassen/internal/app.Version=v1.2.3 -X github.com/agbru/strassen/internal/app.Commit=abc123 -X github.com/agbru/strassen/internal/app.BuildDate=2025-01-01T00:00:00Z" ./cmd/strassen
var (
	// Version is the semantic version of the application (e.g., "v1.0.0").
	Version = "dev"
	// Commit is the short Git commit hash (e.g., "abc123").
	Commit = "unknown"
	// BuildDate is the ISO 8601 timestamp of the build (e.g., "2025-01-01T00:00:00Z").
	BuildDate = "unknown"
)

// HasVersionFlag checks if any argument is a version flag, so that
// -version works in any position (e.g., "strassen -server -version").
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--version" || arg == "-version" || arg == "-V" {
			return true
		}
	}
	return false
}

// VersionData holds the version information of the running binary.
type VersionData struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetVersionInfo returns the current version information. Without -ldflags,
// the commit and date recorded by the Go toolchain are used when present.
func GetVersionInfo() VersionData {
	info := VersionData{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.Commit == "unknown" && s.Value != "":
				info.Commit = shortRevision(s.Value)
			case s.Key == "vcs.time" && info.BuildDate == "unknown" && s.Value != "":
				info.BuildDate = s.Value
			}
		}
	}
	return info
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// PrintVersion writes the application version, commit hash, build date,
// Go version, and OS/architecture to out.
func PrintVersion(out io.Writer) {
	info := GetVersionInfo()
	fmt.Fprintf(out, "strassen %s\n", info.Version)
	fmt.Fprintf(out, "  Commit:     %s\n", info.Commit)
	fmt.Fprintf(out, "  Built:      %s\n", info.BuildDate)
	fmt.Fprintf(out, "  Go version: %s\n", info.GoVersion)
	fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", info.OS, info.Arch)
}
