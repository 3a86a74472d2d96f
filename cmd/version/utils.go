package version

import (
	"runtime/debug"
	"strings"
	"time"
)

// These variables can be overridden at build time with ldflags
var (
	Version   string // -X github.com/trufnetwork/authorid/cmd/version.Version=...
	Commit    string // -X github.com/trufnetwork/authorid/cmd/version.Commit=...
	BuildTime string // -X github.com/trufnetwork/authorid/cmd/version.BuildTime=...
)

const (
	settingRevision = "vcs.revision"
	settingTime     = "vcs.time"
	settingModified = "vcs.modified"
	develVersion    = "(devel)"
)

func buildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// getVersion returns the ldflags version if set, otherwise the module version
func getVersion() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return develVersion
}

// getCommit returns the commit (short form) from ldflags or VCS build info
func getCommit() string {
	commit := Commit
	if commit == "" {
		commit = buildSetting(settingRevision)
	}

	// Return short form (9 chars) for readability
	const shortHashLength = 9
	if len(commit) > shortHashLength {
		return commit[:shortHashLength]
	}
	return commit
}

// getBuildTimeDisplay returns a formatted build time with context about whether it's commit or build time
func getBuildTimeDisplay() string {
	if BuildTime != "" {
		t, err := time.Parse(time.RFC3339, BuildTime)
		if err != nil {
			return "unknown"
		}
		if strings.HasSuffix(Version, "dirty") {
			return t.Format(time.RFC3339) + " (build time)"
		}
		return t.Format(time.RFC3339) + " (commit time)"
	}

	vcsTime := buildSetting(settingTime)
	if vcsTime == "" {
		return "unknown"
	}
	if buildSetting(settingModified) == "true" {
		return vcsTime + " (commit time, modified)"
	}
	return vcsTime + " (commit time)"
}
