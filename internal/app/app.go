// Package app wires loading, the interactive stages and stitching together
// for the two programs. Everything here runs on the workflow goroutine and
// talks to windows only through display.Display.
package app

import (
	"context"
	"errors"
	"fmt"

	"panorama-stitcher/internal/config"
	"panorama-stitcher/internal/display"
	"panorama-stitcher/internal/imageset"
	"panorama-stitcher/internal/logger"
	"panorama-stitcher/internal/stitch"
)

const (
	ExitSuccess = 0
	ExitFailure = 1
)

// ExitCode maps a workflow error to the process status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.Canceled):
		return ExitSuccess
	default:
		return ExitFailure
	}
}

// Viewer shows one image until a key is pressed.
type Viewer struct {
	display display.Display
	alloc   imageset.Allocator
	title   string
	logger  logger.Logger
}

func NewViewer(d display.Display, alloc imageset.Allocator, title string, log logger.Logger) *Viewer {
	return &Viewer{display: d, alloc: alloc, title: title, logger: log}
}

// Run decodes path before touching the display, so a failed load never
// opens a window.
func (v *Viewer) Run(ctx context.Context, path string) error {
	img, err := imageset.Decode(path, v.alloc)
	if err != nil {
		return err
	}
	defer img.Mat.Close()

	v.logger.Info("Viewer", "image opened", map[string]interface{}{
		"path":   path,
		"width":  img.Width(),
		"height": img.Height(),
	})

	if err := v.display.Show(v.title, img.Mat); err != nil {
		return err
	}
	defer v.display.Destroy(v.title)

	return display.WaitKey(ctx, v.display)
}

// Stitcher runs load, reorder and assembly in sequence.
type Stitcher struct {
	cfg     *config.Config
	display display.Display
	alloc   stitch.Allocator
	logger  logger.Logger
}

func NewStitcher(cfg *config.Config, d display.Display, alloc stitch.Allocator, log logger.Logger) *Stitcher {
	return &Stitcher{cfg: cfg, display: d, alloc: alloc, logger: log}
}

func (s *Stitcher) Run(ctx context.Context) (*stitch.Result, error) {
	defer s.display.CloseAll()

	set, err := imageset.Load(s.cfg.Images, s.alloc, s.logger)
	if err != nil {
		return nil, err
	}
	defer set.Close()

	if err := Reorder(ctx, s.display, s.cfg.Windows.Strip, set, s.alloc, s.logger); err != nil {
		return nil, fmt.Errorf("reorder: %w", err)
	}

	params := stitch.RansacParams{
		ReprojThreshold: s.cfg.Ransac.ReprojThreshold,
		MaxIters:        s.cfg.Ransac.MaxIters,
		Confidence:      s.cfg.Ransac.Confidence,
	}
	assembler := stitch.NewAssembler(
		NewPointPicker(s.display, s.cfg.Windows, s.logger),
		NewPresenter(s.display, s.cfg.Windows.Result, s.logger),
		s.alloc, params, s.logger,
	)

	result, err := assembler.Run(ctx, set.Mats())
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stitcher", "panorama complete", map[string]interface{}{
		"order":   set.Paths(),
		"steps":   result.Steps,
		"skipped": result.Skipped,
		"width":   result.Canvas.Cols(),
		"height":  result.Canvas.Rows(),
	})
	return result, nil
}
