// Package displaytest provides a scripted display.Display for tests.
package displaytest

import (
	"context"
	"errors"
	"image"

	"panorama-stitcher/internal/display"
	"panorama-stitcher/internal/geometry"
	"panorama-stitcher/internal/opencv/safe"
)

var ErrExhausted = errors.New("scripted events exhausted")

type Shown struct {
	Title  string
	Bounds image.Rectangle
	Pixels []byte
}

// Fake replays Events in order and records every call.
type Fake struct {
	Events    []display.Event
	Shows     []Shown
	Destroyed []string
	Closed    bool
	open      map[string]bool
}

func New(events ...display.Event) *Fake {
	return &Fake{Events: events, open: make(map[string]bool)}
}

func ClickAt(window string, x, y float64) display.Event {
	return display.Event{Kind: display.Click, Window: window, Point: geometry.Point{X: x, Y: y}}
}

func Press(window string) display.Event {
	return display.Event{Kind: display.Key, Window: window, Key: "Space"}
}

func (f *Fake) Show(title string, mat *safe.Mat) error {
	f.open[title] = true
	f.Shows = append(f.Shows, Shown{Title: title, Bounds: mat.Bounds(), Pixels: mat.Bytes()})
	return nil
}

func (f *Fake) Destroy(title string) {
	delete(f.open, title)
	f.Destroyed = append(f.Destroyed, title)
}

func (f *Fake) Next(ctx context.Context) (display.Event, error) {
	if err := ctx.Err(); err != nil {
		return display.Event{}, err
	}
	if len(f.Events) == 0 {
		return display.Event{}, ErrExhausted
	}
	ev := f.Events[0]
	f.Events = f.Events[1:]
	return ev, nil
}

func (f *Fake) CloseAll() {
	f.open = make(map[string]bool)
	f.Closed = true
}

// Open reports whether a window titled title is currently shown.
func (f *Fake) Open(title string) bool {
	return f.open[title]
}

// ShowsOf returns the recorded Show calls for one window.
func (f *Fake) ShowsOf(title string) []Shown {
	var out []Shown
	for _, s := range f.Shows {
		if s.Title == title {
			out = append(out, s)
		}
	}
	return out
}
