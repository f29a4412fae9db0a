package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func setBuildInfo(t *testing.T, v, commit, built string) {
	t.Helper()
	oldV, oldC, oldB := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldV, oldC, oldB })
	Version, GitCommit, BuildTime = v, commit, built
}

func TestFull(t *testing.T) {
	setBuildInfo(t, "v1.2.0", "unknown", "unknown")
	assert.Equal(t, "v1.2.0", Full())

	setBuildInfo(t, "v1.2.0", "abc123", "2026-01-02")
	assert.Equal(t, "v1.2.0 (commit abc123, built 2026-01-02)", Full())

	setBuildInfo(t, "v1.2.0", "", "2026-01-02")
	assert.Equal(t, "v1.2.0 (built 2026-01-02)", Full())
}

func TestUserAgent(t *testing.T) {
	setBuildInfo(t, "v0.9.0", "unknown", "unknown")
	assert.Equal(t, "easyblogger/v0.9.0", UserAgent())
}
