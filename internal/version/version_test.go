package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillFromBuildInfo(t *testing.T) {
	v, c, b := Version, Commit, BuildDate
	t.Cleanup(func() { Version, Commit, BuildDate = v, c, b })

	Version, Commit, BuildDate = "dev", "none", "unknown"
	fillFromBuildInfo(&debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2025-08-11T18:42:00Z"},
		},
	})
	assert.Equal(t, "v1.2.3", Version)
	assert.Equal(t, "0123456", Commit)
	assert.Equal(t, "2025-08-11T18:42:00Z", BuildDate)

	// ldflags values win
	Version, Commit = "v9.9.9", "feedbee"
	fillFromBuildInfo(&debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffffffffff"}},
	})
	assert.Equal(t, "v9.9.9", Version)
	assert.Equal(t, "feedbee", Commit)
}
