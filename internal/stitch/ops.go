package stitch

import (
	"errors"
	"fmt"
	"image"

	"panorama-stitcher/internal/geometry"
	"panorama-stitcher/internal/opencv/safe"
	"panorama-stitcher/internal/selection"

	"gocv.io/x/gocv"
)

var (
	ErrHeightMismatch       = errors.New("images differ in height")
	ErrDegenerateHomography = errors.New("homography estimation failed")
	ErrPointCount           = errors.New("wrong number of point correspondences")
)

// Allocator hands out tracked Mats.
type Allocator interface {
	GetMat(rows, cols int, matType gocv.MatType, tag string) (*safe.Mat, error)
	Adopt(src gocv.Mat, tag string) (*safe.Mat, error)
}

type RansacParams struct {
	ReprojThreshold float64
	MaxIters        int
	Confidence      float64
}

// BuildStrip concatenates mats left to right. All mats must share height
// and type. A single mat yields a copy of itself.
func BuildStrip(mats []*safe.Mat, alloc Allocator) (*safe.Mat, error) {
	if len(mats) == 0 {
		return nil, fmt.Errorf("no images to concatenate")
	}
	for i, m := range mats {
		if err := safe.ValidateMatForOperation(m, "strip"); err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		if m.Rows() != mats[0].Rows() {
			return nil, fmt.Errorf("%w: image %d is %d rows, image 0 is %d", ErrHeightMismatch, i, m.Rows(), mats[0].Rows())
		}
	}
	if err := safe.ValidateSameType(mats, "strip"); err != nil {
		return nil, err
	}

	first := mats[0].GetMat()
	acc := first.Clone()
	for _, m := range mats[1:] {
		next := gocv.NewMat()
		gocv.Hconcat(acc, m.GetMat(), &next)
		acc.Close()
		acc = next
	}
	defer acc.Close()

	return alloc.Adopt(acc, "strip")
}

// EstimateHomography finds H with H(src[i]) ≈ dst[i] using RANSAC.
func EstimateHomography(src, dst []geometry.Point, params RansacParams) (geometry.Homography, error) {
	if len(src) != len(dst) {
		return geometry.Homography{}, fmt.Errorf("%w: %d vs %d", ErrPointCount, len(src), len(dst))
	}
	if len(src) < selection.PointsPerImage {
		return geometry.Homography{}, fmt.Errorf("%w: need %d, got %d", ErrPointCount, selection.PointsPerImage, len(src))
	}

	srcMat := pointsToMat(src)
	defer srcMat.Close()
	dstMat := pointsToMat(dst)
	defer dstMat.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	hMat := gocv.FindHomography(srcMat, dstMat, gocv.HomographyMethodRANSAC,
		params.ReprojThreshold, &mask, params.MaxIters, params.Confidence)
	defer hMat.Close()

	if hMat.Empty() || hMat.Rows() != 3 || hMat.Cols() != 3 {
		return geometry.Homography{}, fmt.Errorf("%w: no model fits the points", ErrDegenerateHomography)
	}

	var h geometry.Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			h[r*3+c] = hMat.GetDoubleAt(r, c)
		}
	}

	if err := h.Validate(); err != nil {
		return geometry.Homography{}, fmt.Errorf("%w: %v", ErrDegenerateHomography, err)
	}
	return h, nil
}

// pointsToMat packs points as an Nx2 float32 Mat.
func pointsToMat(points []geometry.Point) gocv.Mat {
	m := gocv.NewMatWithSize(len(points), 2, gocv.MatTypeCV32F)
	for i, p := range points {
		m.SetFloatAt(i, 0, float32(p.X))
		m.SetFloatAt(i, 1, float32(p.Y))
	}
	return m
}

func homographyToMat(h geometry.Homography) gocv.Mat {
	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m.SetDoubleAt(r, c, h[r*3+c])
		}
	}
	return m
}

// Warp applies h to src and renders into a width x height buffer. Pixels
// outside the mapped region are zero.
func Warp(src *safe.Mat, h geometry.Homography, width, height int, alloc Allocator) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "warp"); err != nil {
		return nil, err
	}
	if err := safe.ValidateDimensions(width, height, "warp"); err != nil {
		return nil, err
	}

	hMat := homographyToMat(h)
	defer hMat.Close()

	warped := gocv.NewMat()
	defer warped.Close()
	gocv.WarpPerspective(src.GetMat(), &warped, hMat, image.Pt(width, height))

	return alloc.Adopt(warped, "warped")
}

// Compose places result on the left and the first imageWidth columns of
// warped on the right, at x = result width. Nothing is blended.
func Compose(result, warped *safe.Mat, imageWidth int, alloc Allocator) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(result, "compose"); err != nil {
		return nil, err
	}
	if err := safe.ValidateMatForOperation(warped, "compose"); err != nil {
		return nil, err
	}
	if err := safe.ValidateSameType([]*safe.Mat{result, warped}, "compose"); err != nil {
		return nil, err
	}

	width := result.Cols() + imageWidth
	height := result.Rows()
	if warped.Cols() < imageWidth || warped.Rows() < height {
		return nil, fmt.Errorf("warped buffer %dx%d smaller than %dx%d", warped.Cols(), warped.Rows(), imageWidth, height)
	}

	canvas, err := alloc.GetMat(height, width, result.Type(), "canvas")
	if err != nil {
		return nil, err
	}

	if err := result.CopyToRegion(canvas, image.Pt(0, 0)); err != nil {
		canvas.Close()
		return nil, fmt.Errorf("copy result: %w", err)
	}
	if err := warped.CopyRegionTo(image.Rect(0, 0, imageWidth, height), canvas, image.Pt(result.Cols(), 0)); err != nil {
		canvas.Close()
		return nil, fmt.Errorf("copy warped image: %w", err)
	}

	return canvas, nil
}
