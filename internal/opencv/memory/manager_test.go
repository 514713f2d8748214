package memory

import (
	"testing"

	"panorama-stitcher/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestManagerTracksLifecycle(t *testing.T) {
	m := NewManager(logger.NewNop())

	a, err := m.GetMat(10, 10, gocv.MatTypeCV8UC3, "canvas")
	require.NoError(t, err)

	src := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer src.Close()
	b, err := m.Adopt(src, "image")
	require.NoError(t, err)

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats.ActiveMats)
	assert.Equal(t, int64(10*10*3+4*4*3), stats.TotalAllocated)

	a.Close()
	stats = m.GetStats()
	assert.Equal(t, int64(1), stats.ActiveMats)
	assert.Equal(t, int64(300), stats.TotalReleased)

	m.Cleanup()
	assert.False(t, b.IsValid())
	stats = m.GetStats()
	assert.Zero(t, stats.ActiveMats)
	assert.Equal(t, int64(2), stats.PeakMats)
}

func TestAdoptRejectsEmpty(t *testing.T) {
	m := NewManager(logger.NewNop())
	empty := gocv.NewMat()
	defer empty.Close()

	_, err := m.Adopt(empty, "empty")
	assert.Error(t, err)
	assert.Zero(t, m.GetStats().ActiveMats)
}
