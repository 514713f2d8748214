package app

import (
	"context"

	"panorama-stitcher/internal/display"
	"panorama-stitcher/internal/imageset"
	"panorama-stitcher/internal/logger"
	"panorama-stitcher/internal/opencv/safe"
	"panorama-stitcher/internal/reorder"
	"panorama-stitcher/internal/stitch"
)

// Reorder lets the user permute set by clicking pairs of zones on a strip of
// all images. Any key ends it and destroys the strip window.
func Reorder(ctx context.Context, d display.Display, title string, set *imageset.Collection, alloc stitch.Allocator, log logger.Logger) error {
	strip, err := stitch.BuildStrip(set.Mats(), alloc)
	if err != nil {
		return err
	}
	defer func() { strip.Close() }()

	if err := d.Show(title, strip); err != nil {
		return err
	}
	defer d.Destroy(title)

	var sel reorder.Selector
	for {
		ev, err := d.Next(ctx)
		if err != nil {
			return err
		}

		if ev.Kind == display.Key {
			log.Info("Reorder", "order confirmed", map[string]interface{}{"order": set.Paths()})
			return nil
		}
		if ev.Window != title {
			continue
		}

		index := reorder.ZoneIndex(ev.Point.X, strip.Cols(), set.Len())
		swap, done := sel.Click(index)
		if !done {
			log.Info("Reorder", "image selected", map[string]interface{}{"index": index})
			continue
		}

		if err := set.Swap(swap.A, swap.B); err != nil {
			return err
		}
		log.Info("Reorder", "images swapped", map[string]interface{}{
			"a":     swap.A,
			"b":     swap.B,
			"order": set.Paths(),
		})

		rebuilt, err := rebuildStrip(set, strip, alloc)
		if err != nil {
			return err
		}
		strip = rebuilt
		if err := d.Show(title, strip); err != nil {
			return err
		}
	}
}

func rebuildStrip(set *imageset.Collection, old *safe.Mat, alloc stitch.Allocator) (*safe.Mat, error) {
	strip, err := stitch.BuildStrip(set.Mats(), alloc)
	if err != nil {
		return nil, err
	}
	old.Close()
	return strip, nil
}
