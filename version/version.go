package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// ModulePath is the import path of the container module.
const ModulePath = "github.com/kbukum/lambdacontainer"

// Set at build time with -ldflags -X.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info describes the running binary and the container module it links.
type Info struct {
	Version          string    `json:"version"`
	GitCommit        string    `json:"git_commit,omitempty"`
	BuildTime        string    `json:"build_time"`
	BuildDate        time.Time `json:"-"`
	GoVersion        string    `json:"go_version"`
	ContainerVersion string    `json:"container_version"`
	IsRelease        bool      `json:"is_release"`
	IsDirty          bool      `json:"is_dirty"`
}

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// GetVersionInfo collects ldflags values, filling gaps from the embedded
// VCS settings.
func GetVersionInfo() *Info {
	info := &Info{
		Version:          Version,
		GitCommit:        GitCommit,
		BuildTime:        BuildTime,
		ContainerVersion: "(devel)",
		IsRelease:        Version != "dev" && !strings.Contains(Version, "dirty"),
	}
	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			info.BuildDate = t
		}
	}

	if bi, ok := readBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		info.ContainerVersion = containerVersion(bi)
		applyVCS(info, bi.Settings)
	}

	if info.BuildDate.IsZero() {
		info.BuildDate = time.Now().UTC()
		info.BuildTime = info.BuildDate.Format(time.RFC3339)
	}
	return info
}

// containerVersion finds the container module among the dependencies, or
// reports the main module's version when the binary is the module itself.
func containerVersion(bi *debug.BuildInfo) string {
	if bi.Main.Path == ModulePath {
		return bi.Main.Version
	}
	for _, dep := range bi.Deps {
		if dep.Path != ModulePath {
			continue
		}
		if dep.Replace != nil {
			return dep.Replace.Version + " (replaced)"
		}
		return dep.Version
	}
	return "(devel)"
}

func applyVCS(info *Info, settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.modified":
			info.IsDirty = s.Value == "true"
		case "vcs.time":
			if info.BuildDate.IsZero() {
				if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
					info.BuildDate = t
					info.BuildTime = s.Value
				}
			}
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
}

// GetShortVersion returns version-commit, with -dirty for modified trees.
func GetShortVersion() string {
	info := GetVersionInfo()
	if info.GitCommit == "" {
		return info.Version
	}
	s := fmt.Sprintf("%s-%s", info.Version, info.GitCommit)
	if info.IsDirty {
		s += "-dirty"
	}
	return s
}
