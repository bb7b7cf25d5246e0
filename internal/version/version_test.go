package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	for _, tc := range []struct {
		Name   string
		Input  debug.BuildInfo
		Output Value
	}{
		{
			Name:   "Empty",
			Output: Value{Name: "dev", Raw: "0.0.1-dev"},
		},
		{
			Name: "Main",
			Input: debug.BuildInfo{
				Main: debug.Module{
					Path:    "github.com/SkyTemple/skytemple-files-sub002/internal/cmd/px",
					Version: "0.3.2",
				},
			},
			Output: Value{Major: 0, Minor: 3, Patch: 2, Raw: "0.3.2"},
		},
		{
			Name: "Devel",
			Input: debug.BuildInfo{
				Main: debug.Module{
					Path:    "github.com/SkyTemple/skytemple-files-sub002",
					Version: "(devel)",
				},
				Settings: []debug.BuildSetting{
					{Key: "vcs", Value: "git"},
					{Key: "vcs.revision", Value: "4f1e2a9"},
				},
			},
			Output: Value{Name: "dev", Raw: "0.0.1-dev", Commit: "4f1e2a9"},
		},
		{
			Name: "Dependency",
			Input: debug.BuildInfo{
				Main: debug.Module{
					Path: "example.com/rom-tools",
				},
				Deps: []*debug.Module{
					{
						Path:    "github.com/SkyTemple/skytemple-files-sub002",
						Version: "1.8.14-beta.1",
					},
				},
			},
			Output: Value{Major: 1, Minor: 8, Patch: 14, Name: "beta.1", Raw: "1.8.14-beta.1"},
		},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			require.Equal(t, tc.Output, Extract(&tc.Input))
		})
	}
}

func TestGet(t *testing.T) {
	v := Get()
	require.NotEmpty(t, v.Raw)
	require.Equal(t, v, Get())
}
