package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func stubBuildInfo(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	old := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
	t.Cleanup(func() { readBuildInfo = old })
}

func stamp(t *testing.T, version, commit, date string) {
	t.Helper()
	v, c, d := Version, Commit, Date
	Version, Commit, Date = version, commit, date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })
}

func TestGetPrefersStampedValues(t *testing.T) {
	stamp(t, "v1.2.3", "abc123", "2026-01-02T03:04:05Z")
	stubBuildInfo(t, &debug.BuildInfo{
		Main:     debug.Module{Version: "v9.9.9"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "fff"}},
	})

	want := Info{Version: "v1.2.3", Commit: "abc123", Date: "2026-01-02T03:04:05Z"}
	if got := Get(); got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestGetFallsBackToBuildInfo(t *testing.T) {
	stamp(t, "dev", "none", "unknown")
	stubBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "deadbeef"},
			{Key: "vcs.time", Value: "2026-05-06T07:08:09Z"},
			{Key: "vcs.modified", Value: "false"},
		},
	})

	want := Info{Version: "v0.3.1", Commit: "deadbeef", Date: "2026-05-06T07:08:09Z"}
	if got := Get(); got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestGetDevelBuild(t *testing.T) {
	stamp(t, "dev", "none", "unknown")
	stubBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if got := Get().Version; got != "dev" {
		t.Errorf("Version = %q, want dev", got)
	}

	stubBuildInfo(t, nil)
	if got := Get(); got != (Info{"dev", "none", "unknown"}) {
		t.Errorf("Get() without build info = %+v", got)
	}
}

func TestTemplate(t *testing.T) {
	stamp(t, "v1.2.3", "abc", "today")
	got := Template()
	if !strings.HasPrefix(got, "{{.Name}} version v1.2.3\n") {
		t.Errorf("Template() = %q", got)
	}
	if !strings.Contains(got, "commit: abc\n") || !strings.Contains(got, "built: today\n") {
		t.Errorf("Template() = %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	stamp(t, "v0.4.0", "none", "unknown")
	if got := UserAgent(); got != "graphrender/v0.4.0" {
		t.Errorf("UserAgent() = %q", got)
	}
}
