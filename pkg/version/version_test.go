package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	assert.Equal(t, GetVersion(), info.Version)
	assert.Equal(t, GetBuildID(), info.BuildID)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, "dev (build: dev)", GetFullVersion())
}
