// Package version resolves current module version.
package version

import (
	"runtime/debug"
	"strings"
	"sync"

	"github.com/hashicorp/go-version"
)

const modulePath = "github.com/SkyTemple/skytemple-files-sub002"

var once struct {
	version Value
	sync.Once
}

// Value describes module version.
type Value struct {
	Major  int
	Minor  int
	Patch  int
	Name   string
	Raw    string
	Commit string // vcs.revision of main module, if stamped
}

func commit(info *debug.BuildInfo) string {
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}

// Extract version Value from BuildInfo.
func Extract(info *debug.BuildInfo) Value {
	var raw string
	if strings.HasPrefix(info.Main.Path, modulePath) {
		raw = info.Main.Version
	}
	for _, d := range info.Deps {
		if strings.HasPrefix(d.Path, modulePath) {
			raw = d.Version
			break
		}
	}
	if v, err := version.NewVersion(raw); err == nil {
		ver := Value{
			Name:   v.Prerelease(), // "alpha", "beta.1"
			Raw:    raw,
			Commit: commit(info),
		}
		if s := v.Segments(); len(s) > 2 {
			ver.Major, ver.Minor, ver.Patch = s[0], s[1], s[2]
		}
		return ver
	}
	return Value{
		// Zero-versioned dev version.
		Name:   "dev",
		Raw:    "0.0.1-dev",
		Commit: commit(info),
	}
}

// Get optimistically gets current module version.
//
// Does not handle replace directives.
func Get() Value {
	once.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			once.version = Value{Name: "dev", Raw: "0.0.1-dev"}
			return
		}
		once.version = Extract(info)
	})

	return once.version
}
