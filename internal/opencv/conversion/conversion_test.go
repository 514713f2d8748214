package conversion

import (
	"image"
	"image/color"
	"testing"

	"panorama-stitcher/internal/opencv/safe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestMatToImageSwapsChannels(t *testing.T) {
	src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 20, 30, 0), 2, 3, gocv.MatTypeCV8UC3)
	defer src.Close()
	m, err := safe.NewMatFromMat(src)
	require.NoError(t, err)
	defer m.Close()

	img, err := MatToImage(m)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, color.RGBA{R: 30, G: 20, B: 10, A: 255}, img.At(2, 1))
}

func TestMatToImageGray(t *testing.T) {
	src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(77, 0, 0, 0), 2, 2, gocv.MatTypeCV8UC1)
	defer src.Close()
	m, err := safe.NewMatFromMat(src)
	require.NoError(t, err)
	defer m.Close()

	img, err := MatToImage(m)
	require.NoError(t, err)
	assert.Equal(t, color.Gray{Y: 77}, img.At(1, 1))
}

func TestMatToImageRejectsClosed(t *testing.T) {
	m, err := safe.NewMat(1, 1, gocv.MatTypeCV8UC3)
	require.NoError(t, err)
	m.Close()

	_, err = MatToImage(m)
	assert.Error(t, err)
}

func TestFitWidth(t *testing.T) {
	img := Placeholder(400, 100)

	assert.Same(t, img, FitWidth(img, 500))
	assert.Same(t, img, FitWidth(img, 0))

	small := FitWidth(img, 200)
	assert.Equal(t, image.Rect(0, 0, 200, 50), small.Bounds())
}
