package geometry

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityApply(t *testing.T) {
	p, ok := Identity().Apply(Point{X: 12, Y: -3})
	require.True(t, ok)
	assert.Equal(t, Point{X: 12, Y: -3}, p)
	assert.InDelta(t, 1.0, Identity().Determinant(), 1e-12)
}

func TestTranslationApply(t *testing.T) {
	h := Homography{1, 0, 100, 0, 1, 5, 0, 0, 1}
	p, ok := h.Apply(Point{X: 1, Y: 2})
	require.True(t, ok)
	assert.InDelta(t, 101, p.X, 1e-9)
	assert.InDelta(t, 7, p.Y, 1e-9)
}

func TestApplyAtInfinity(t *testing.T) {
	h := Homography{1, 0, 0, 0, 1, 0, 1, 0, 0}
	_, ok := h.Apply(Point{X: 0, Y: 4})
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Identity().Validate())

	singular := Homography{1, 2, 3, 2, 4, 6, 0, 0, 1}
	assert.ErrorIs(t, singular.Validate(), ErrSingular)

	bad := Identity()
	bad[4] = math.NaN()
	assert.Error(t, bad.Validate())

	assert.ErrorIs(t, Homography{}.Validate(), ErrSingular)
}

func TestReprojectionError(t *testing.T) {
	h := Homography{1, 0, 10, 0, 1, 0, 0, 0, 1}
	src := []Point{{0, 0}, {1, 1}}
	dst := []Point{{10, 0}, {11, 1}}
	assert.InDelta(t, 0, h.ReprojectionError(src, dst), 1e-12)

	dst[1] = Point{X: 11, Y: 3}
	assert.InDelta(t, 1, h.ReprojectionError(src, dst), 1e-12)

	assert.True(t, math.IsInf(h.ReprojectionError(src, dst[:1]), 1))
}

func TestImagePointRounds(t *testing.T) {
	assert.Equal(t, image.Pt(3, 5), Point{X: 2.6, Y: 4.5}.ImagePoint())
}
