package version

import (
	"runtime"
	"strings"
	"testing"
)

func withBuild(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, Commit, Date
	Version, Commit, Date = v, commit, date
	t.Cleanup(func() {
		Version, Commit, Date = origVersion, origCommit, origDate
	})
}

func TestGetInfo(t *testing.T) {
	withBuild(t, "1.2.0", "abc123def456", "2026-01-01T12:00:00Z")

	info := GetInfo()
	if info.Version != "1.2.0" {
		t.Errorf("Version = %q, want 1.2.0", info.Version)
	}
	if info.Commit != "abc123def456" {
		t.Errorf("Commit = %q, want abc123def456", info.Commit)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
	if want := runtime.GOOS + "/" + runtime.GOARCH; info.Platform != want {
		t.Errorf("Platform = %q, want %q", info.Platform, want)
	}
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		name   string
		commit string
		want   string
	}{
		{"long commit is truncated", "abc123def456", "(abc123de)"},
		{"short commit is kept", "abc", "(abc)"},
		{"unknown commit", "unknown", "(unknown)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Info{Version: "1.0.0", Commit: tt.commit, Date: "today", GoVersion: "go1.24", Platform: "linux/amd64"}
			got := info.String()
			if !strings.HasPrefix(got, "poetryctl 1.0.0 ") {
				t.Errorf("String() = %q, want prefix %q", got, "poetryctl 1.0.0 ")
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("String() = %q, want it to contain %q", got, tt.want)
			}
			if !strings.HasSuffix(got, "with go1.24 for linux/amd64") {
				t.Errorf("String() = %q, missing toolchain suffix", got)
			}
		})
	}
}

func TestUserAgent(t *testing.T) {
	withBuild(t, "0.3.1", "unknown", "unknown")

	want := "poetryctl/0.3.1 (" + runtime.GOOS + "/" + runtime.GOARCH + ")"
	if got := UserAgent(); got != want {
		t.Errorf("UserAgent() = %q, want %q", got, want)
	}
}

func TestDefaultValues(t *testing.T) {
	if Version == "" || Commit == "" || Date == "" {
		t.Error("build variables must never be empty")
	}
}
