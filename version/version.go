package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time with -ldflags -X.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info describes the running binary.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit"`
	BuildTime string    `json:"build_time"`
	GoVersion string    `json:"go_version"`
	BuildDate time.Time `json:"build_date"`
	IsRelease bool      `json:"is_release"`
	IsDirty   bool      `json:"is_dirty"`
}

// GetVersionInfo merges the ldflags values with the VCS stamps the Go
// toolchain embeds. Ldflags values win.
func GetVersionInfo() *Info {
	info := &Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		IsRelease: Version != "dev" && !strings.Contains(Version, "dirty"),
	}
	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			info.BuildDate = t
		}
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		for _, s := range bi.Settings {
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
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	return info
}

// Short returns "version[-commit][-dirty]", used as the telemetry service
// version.
func Short() string {
	info := GetVersionInfo()
	parts := []string{info.Version}
	if info.GitCommit != "" {
		parts = append(parts, info.GitCommit)
	}
	if info.IsDirty {
		parts = append(parts, "dirty")
	}
	return strings.Join(parts, "-")
}

// String returns the line printed by "riv version".
func String() string {
	info := GetVersionInfo()
	s := "riv " + Short()
	if !info.BuildDate.IsZero() {
		s += " (built " + info.BuildDate.UTC().Format("2006-01-02T15:04:05Z") + ")"
	}
	if info.GoVersion != "" {
		s += fmt.Sprintf(" %s", info.GoVersion)
	}
	return s
}
