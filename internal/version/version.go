// Package version reports build information set through -ldflags, falling
// back to the module build info embedded by the Go toolchain.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/conneroisu/rsc/internal/version.Version=v1.2.3"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Info is the build information printed by `rsc version`.
type Info struct {
	Version   string    `json:"version" yaml:"version"`
	GitCommit string    `json:"git_commit" yaml:"git_commit"`
	BuildTime time.Time `json:"build_time,omitempty" yaml:"build_time,omitempty"`
	GoVersion string    `json:"go_version" yaml:"go_version"`
	Platform  string    `json:"platform" yaml:"platform"`
	Dirty     bool      `json:"dirty,omitempty" yaml:"dirty,omitempty"`
}

// Get collects the current build information.
func Get() Info {
	settings := buildSettings()

	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: parseTime(BuildTime),
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Dirty:     settings["vcs.modified"] == "true",
	}

	if info.GitCommit == "" || info.GitCommit == "unknown" {
		if rev, ok := settings["vcs.revision"]; ok {
			info.GitCommit = rev
		}
	}

	if info.Version == "" || info.Version == "dev" {
		info.Version = "dev"
		if mod := mainVersion(); mod != "" {
			info.Version = mod
		} else if len(info.GitCommit) >= 7 && info.GitCommit != "unknown" {
			info.Version = "dev-" + info.GitCommit[:7]
		}
	}

	if info.BuildTime.IsZero() {
		info.BuildTime = parseTime(settings["vcs.time"])
	}

	return info
}

// Short returns a one-line version such as "v1.2.3 (abc1234)".
func (i Info) Short() string {
	if len(i.GitCommit) >= 7 && i.GitCommit != "unknown" && i.Version != "dev-"+i.GitCommit[:7] {
		return fmt.Sprintf("%s (%s)", i.Version, i.GitCommit[:7])
	}
	return i.Version
}

// IsRelease reports whether the binary carries a release version.
func (i Info) IsRelease() bool {
	return i.Version != "dev" && !(len(i.Version) > 4 && i.Version[:4] == "dev-")
}

func buildSettings() map[string]string {
	out := make(map[string]string)
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			out[s.Key] = s.Value
		}
	}
	return out
}

func mainVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return ""
}

func parseTime(s string) time.Time {
	if s == "" || s == "unknown" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
