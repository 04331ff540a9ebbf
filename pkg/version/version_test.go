package version

import (
	"strings"
	"testing"
)

func TestInfoString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		info Info
		want string
	}{
		{
			Info{Version: "0.4.0", Commit: "1a2b3c4", BuildTime: "2024-05-01T10:00:00Z", GoVersion: "go1.23.1", Platform: "linux/amd64"},
			"ai-snap 0.4.0 (1a2b3c4, 2024-05-01T10:00:00Z) go1.23.1 linux/amd64",
		},
		{
			Info{Version: "dev", Commit: "0123456789abcdef0123", GoVersion: "go1.23.1", Platform: "darwin/arm64"},
			"ai-snap dev (0123456789ab, unknown time) go1.23.1 darwin/arm64",
		},
		{
			Info{Version: "dev", GoVersion: "go1.23.1", Platform: "windows/amd64"},
			"ai-snap dev (unknown commit, unknown time) go1.23.1 windows/amd64",
		},
	}

	for _, tt := range cases {
		if got := tt.info.String(); got != tt.want {
			t.Errorf("String() = %q; want %q", got, tt.want)
		}
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	info := Get()
	if info.Version == "" {
		t.Fatal("Version must never be empty")
	}
	if !strings.Contains(info.GoVersion, "go") {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
	if !strings.Contains(info.Platform, "/") {
		t.Errorf("Platform = %q", info.Platform)
	}
}
