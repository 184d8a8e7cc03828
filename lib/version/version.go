// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty indicates whether there were uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version. This is set manually for releases.
	Version = "0.1.0-dev"
)

// Build is the resolved build information.
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

var (
	resolveOnce sync.Once
	resolved    Build
)

// Current returns the build information, filling fields the linker did
// not set from the embedded VCS stamp.
func Current() Build {
	resolveOnce.Do(func() {
		resolved = resolve(GitCommit, GitDirty, BuildTime, readSettings())
	})
	return resolved
}

func readSettings() map[string]string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	settings := make(map[string]string, len(info.Settings))
	for _, setting := range info.Settings {
		settings[setting.Key] = setting.Value
	}
	return settings
}

// resolve merges linker-injected values with VCS build settings.
func resolve(commit, dirty, buildTime string, settings map[string]string) Build {
	build := Build{
		Version:   Version,
		Commit:    commit,
		Dirty:     dirty == "true",
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if build.Commit == "unknown" {
		if revision := settings["vcs.revision"]; revision != "" {
			if len(revision) > 12 {
				revision = revision[:12]
			}
			build.Commit = revision
			build.Dirty = settings["vcs.modified"] == "true"
		}
	}
	if build.BuildTime == "unknown" {
		if stamp := settings["vcs.time"]; stamp != "" {
			build.BuildTime = stamp
		}
	}
	return build
}

// Info returns a formatted version string suitable for --version output.
func Info() string {
	return Current().String()
}

func (b Build) String() string {
	dirty := ""
	if b.Dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", b.Version, b.Commit, dirty, b.BuildTime)
}

// Full returns detailed version information including Go version.
func Full() string {
	build := Current()
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s", build, build.GoVersion, build.Platform)
}

// Short returns just the version number.
func Short() string {
	return Version
}
