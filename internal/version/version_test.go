package version

import (
	"runtime/debug"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	cases := []struct {
		name     string
		version  string
		settings []debug.BuildSetting
		want     string
	}{
		{name: "tagged", version: "v1.4.0", want: "v1.4.0"},
		{name: "devel without vcs", version: "(devel)", want: "(devel)"},
		{
			name:    "pseudo version",
			version: "v0.0.0-20250716020515-7a30fe114040",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "7a30fe1140401234567890abcdef"},
			},
			want: "(devel) 7a30fe114040",
		},
		{
			name:    "prerelease pseudo version",
			version: "v1.2.4-0.20250716020515-7a30fe114040",
			want:    "(devel)",
		},
		{
			name:    "dirty",
			version: "v1.4.0+dirty",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc123"},
				{Key: "vcs.modified", Value: "true"},
			},
			want: "(devel) abc123-dirty",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info := &debug.BuildInfo{Settings: tc.settings}
			info.Main.Version = tc.version
			if got := fromBuildInfo(info); got != tc.want {
				t.Fatalf("fromBuildInfo = %q, want %q", got, tc.want)
			}
		})
	}
}
