// Package stitch builds the panorama strip: it estimates one homography per
// image from user-picked points, warps the image with it and appends the
// result to the right of the canvas.
package stitch

import (
	"context"
	"errors"
	"fmt"

	"panorama-stitcher/internal/geometry"
	"panorama-stitcher/internal/logger"
	"panorama-stitcher/internal/opencv/safe"
)

// PointPicker collects correspondences between the current canvas (base)
// and the image being added (current).
type PointPicker interface {
	PickPoints(ctx context.Context, base, current *safe.Mat) (basePts, currentPts []geometry.Point, err error)
}

// Presenter shows a canvas and returns once the user acknowledges it.
type Presenter interface {
	Present(ctx context.Context, canvas *safe.Mat, final bool) error
}

type Assembler struct {
	picker    PointPicker
	presenter Presenter
	alloc     Allocator
	params    RansacParams
	logger    logger.Logger
}

// Result is the finished panorama. Skipped lists image indexes whose
// homography could not be estimated.
type Result struct {
	Canvas  *safe.Mat
	Steps   int
	Skipped []int
}

func NewAssembler(picker PointPicker, presenter Presenter, alloc Allocator, params RansacParams, log logger.Logger) *Assembler {
	return &Assembler{
		picker:    picker,
		presenter: presenter,
		alloc:     alloc,
		params:    params,
		logger:    log,
	}
}

// Run stitches images in order. images[0] seeds the canvas and is not
// modified. The caller owns the returned canvas.
func (a *Assembler) Run(ctx context.Context, images []*safe.Mat) (*Result, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no images to stitch")
	}

	canvas, err := images[0].Clone()
	if err != nil {
		return nil, fmt.Errorf("seed canvas: %w", err)
	}

	result := &Result{}
	for i := 1; i < len(images); i++ {
		next, err := a.step(ctx, canvas, images[i], i)
		if errors.Is(err, ErrDegenerateHomography) {
			a.logger.Warning("Assembler", "skipping image, no usable homography", map[string]interface{}{
				"index": i,
				"error": err.Error(),
			})
			result.Skipped = append(result.Skipped, i)
			continue
		}
		if err != nil {
			canvas.Close()
			return nil, fmt.Errorf("stitch image %d: %w", i, err)
		}

		canvas.Close()
		canvas = next
		result.Steps++

		if err := a.presenter.Present(ctx, canvas, false); err != nil {
			canvas.Close()
			return nil, err
		}
	}

	if err := a.presenter.Present(ctx, canvas, true); err != nil {
		canvas.Close()
		return nil, err
	}

	result.Canvas = canvas
	return result, nil
}

func (a *Assembler) step(ctx context.Context, canvas, img *safe.Mat, index int) (*safe.Mat, error) {
	basePts, currentPts, err := a.picker.PickPoints(ctx, canvas, img)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Assembler", "points selected", map[string]interface{}{
		"index":   index,
		"base":    basePts,
		"current": currentPts,
	})

	h, err := EstimateHomography(currentPts, basePts, a.params)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Assembler", "homography estimated", map[string]interface{}{
		"index":        index,
		"homography":   h.String(),
		"reproj_error": h.ReprojectionError(currentPts, basePts),
	})

	warped, err := Warp(img, h, canvas.Cols()+img.Cols(), canvas.Rows(), a.alloc)
	if err != nil {
		return nil, err
	}
	defer warped.Close()

	next, err := Compose(canvas, warped, img.Cols(), a.alloc)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Assembler", "image appended", map[string]interface{}{
		"index":  index,
		"width":  next.Cols(),
		"height": next.Rows(),
	})
	return next, nil
}
