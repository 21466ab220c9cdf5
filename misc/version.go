// Package misc holds program identity, set at link time when building
// releases.
package misc

import (
	"runtime/debug"
	"sync"
)

// Overwritten with -ldflags "-X wemd/misc.version=... -X wemd/misc.gitHash=...".
var (
	appName = "wemd"
	version = "dev"
	gitHash = ""
)

var buildInfo = sync.OnceValue(func() map[string]string {
	settings := make(map[string]string)
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return settings
	}
	if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		settings["version"] = bi.Main.Version
	}
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}
	return settings
})

func GetAppName() string {
	return appName
}

// GetVersion returns linked in version, module version when installed with
// "go install" and "dev" otherwise.
func GetVersion() string {
	if version != "dev" {
		return version
	}
	if v, ok := buildInfo()["version"]; ok {
		return v
	}
	return version
}

// GetGitHash returns short revision of the source tree the program was built
// from, marked when tree had local modifications.
func GetGitHash() string {
	if gitHash != "" {
		return gitHash
	}
	rev := buildInfo()["vcs.revision"]
	if rev == "" {
		return "unknown"
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if buildInfo()["vcs.modified"] == "true" {
		rev += "+"
	}
	return rev
}
