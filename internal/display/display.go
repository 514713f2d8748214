// Package display defines the window surface the interactive loops drive.
// Windows are addressed by title.
package display

import (
	"context"

	"panorama-stitcher/internal/geometry"
	"panorama-stitcher/internal/opencv/safe"
)

type EventKind int

const (
	Click EventKind = iota
	Key
)

func (k EventKind) String() string {
	if k == Key {
		return "key"
	}
	return "click"
}

// Event is one user input. Point is in source pixel coordinates of the Mat
// shown in Window and is only set for clicks.
type Event struct {
	Kind   EventKind
	Window string
	Point  geometry.Point
	Key    string
}

type Display interface {
	// Show creates the window titled title, or replaces its content.
	Show(title string, mat *safe.Mat) error
	Destroy(title string)
	// Next blocks until an input event arrives or ctx is done.
	Next(ctx context.Context) (Event, error)
	CloseAll()
}

// WaitKey consumes events until a key press.
func WaitKey(ctx context.Context, d Display) error {
	for {
		ev, err := d.Next(ctx)
		if err != nil {
			return err
		}
		if ev.Kind == Key {
			return nil
		}
	}
}
