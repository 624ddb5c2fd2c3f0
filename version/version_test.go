package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func saveAndRestore() func() {
	v, c, b := Version, Commit, BuildTime
	return func() { Version, Commit, BuildTime = v, c, b }
}

func TestGetLinkTimeValues(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.4.0"
	Commit = "abc1234def"
	BuildTime = "2026-01-15T10:30:00Z"

	info := Get()
	assert.Equal(t, "1.4.0", info.Version)
	assert.Equal(t, "abc1234", info.Commit, "commit is shortened")
	assert.Equal(t, "2026-01-15T10:30:00Z", info.BuildTime)
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.0.0", Commit: "abc1234"}, "1.0.0-abc1234"},
		{Info{Version: "1.0.0", Commit: "abc1234", Dirty: true}, "1.0.0-abc1234-dirty"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.info.String())
	}
}

func TestIsRelease(t *testing.T) {
	assert.False(t, Info{Version: "dev"}.IsRelease(), "dev is not a release")
	assert.False(t, Info{Version: "1.0.0", Dirty: true}.IsRelease(), "dirty build is not a release")
	assert.True(t, Info{Version: "1.0.0"}.IsRelease())
}

func TestShortDev(t *testing.T) {
	defer saveAndRestore()()
	Version = "dev"
	Commit = ""

	assert.Regexp(t, "^dev", Short())
}
