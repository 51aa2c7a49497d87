package version

import (
	"strings"
	"testing"
)

func saveAndRestore() func() {
	v, c, b := Version, GitCommit, BuildTime
	return func() { Version, GitCommit, BuildTime = v, c, b }
}

func TestGetVersionInfo_Dev(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "dev", "", ""

	info := GetVersionInfo()
	if info.Version != "dev" {
		t.Errorf("got %q, want dev", info.Version)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
}

func TestGetVersionInfo_Ldflags(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "1.0.0", "abc1234def", "2024-01-15T10:30:00Z"

	info := GetVersionInfo()
	if !info.IsRelease {
		t.Error("1.0.0 should be a release")
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("commit = %q, want abc1234", info.GitCommit)
	}
	if info.BuildDate.Year() != 2024 || info.BuildTime != "2024-01-15T10:30:00Z" {
		t.Errorf("build date = %v (%s)", info.BuildDate, info.BuildTime)
	}
}

func TestGetVersionInfo_DirtyIsNotRelease(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.0.0-dirty"
	if GetVersionInfo().IsRelease {
		t.Error("dirty version should not be a release")
	}
}

func TestShort(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit = "1.0.0", "abc1234"

	if got := Short(); !strings.HasPrefix(got, "1.0.0-abc1234") {
		t.Errorf("Short() = %q", got)
	}
}

func TestString(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "1.0.0", "abc1234", "2024-01-15T10:30:00Z"

	s := String()
	if !strings.HasPrefix(s, "riv 1.0.0-abc1234") {
		t.Errorf("String() = %q", s)
	}
	if !strings.Contains(s, "(built 2024-01-15T10:30:00Z)") {
		t.Errorf("String() = %q, want build date", s)
	}
}
