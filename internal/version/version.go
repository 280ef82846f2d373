package version

import (
	"runtime/debug"
	"strings"
)

const devel = "(devel)"

// String reports the module version for tagged builds. Untagged, dirty, and
// pseudo-versioned builds report (devel), with the VCS revision when known.
func String() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return devel
	}
	return fromBuildInfo(info)
}

func fromBuildInfo(info *debug.BuildInfo) string {
	v := info.Main.Version
	if v != "" && v != devel && !strings.Contains(v, "+dirty") && !isPseudoVersion(v) {
		return v
	}

	var rev string
	var modified bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if rev == "" {
		return devel
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if modified {
		rev += "-dirty"
	}
	return devel + " " + rev
}

// isPseudoVersion matches vX.Y.Z-yyyymmddhhmmss-abcdefabcdef and the
// pre-release variants whose last two dash fields carry the same shape.
func isPseudoVersion(v string) bool {
	v, _, _ = strings.Cut(v, "+")
	parts := strings.Split(v, "-")
	if len(parts) < 3 {
		return false
	}
	ts := parts[len(parts)-2]
	if i := strings.LastIndexByte(ts, '.'); i >= 0 {
		ts = ts[i+1:]
	}
	hash := parts[len(parts)-1]
	return len(ts) == 14 && strings.Trim(ts, "0123456789") == "" &&
		len(hash) >= 12 && strings.Trim(hash, "0123456789abcdef") == ""
}
