package version

import (
	"runtime/debug"
	"sync"
)

// Set at build time with
// -ldflags "-X github.com/shindakun/loginpage/internal/version.Version=v1.2.0 -X ...Commit=abc1234"
var (
	Version = ""
	Commit  = ""
)

var (
	version     string
	gitCommit   string
	versionOnce sync.Once
)

// getVersionInfo resolves version and commit from ldflags, falling back to the
// module and VCS information the Go toolchain embeds in the binary
func getVersionInfo() (string, string) {
	versionOnce.Do(func() {
		version, gitCommit = resolve(Version, Commit, debug.ReadBuildInfo)
	})
	return version, gitCommit
}

func resolve(ver, commit string, readBuildInfo func() (*debug.BuildInfo, bool)) (string, string) {
	if ver != "" && commit != "" {
		return ver, shortCommit(commit)
	}

	info, ok := readBuildInfo()
	if ok && info != nil {
		if ver == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			ver = info.Main.Version
		}
		if commit == "" {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" {
					commit = setting.Value
					break
				}
			}
		}
	}

	if ver == "" {
		ver = "dev"
	}
	return ver, shortCommit(commit)
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

// GetVersion returns the version string with git commit if available
func GetVersion() string {
	ver, commit := getVersionInfo()
	if commit != "" && ver != "dev" {
		return ver + "-" + commit
	}
	return ver
}

// GetFullVersion returns version with commit info
func GetFullVersion() string {
	ver, commit := getVersionInfo()
	if commit != "" {
		return ver + " (commit: " + commit + ")"
	}
	return ver
}
