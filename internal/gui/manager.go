// Package gui implements display.Display with fyne windows. Windows are
// keyed by title. Taps and key presses from every window are queued on one
// channel and consumed by the workflow goroutine.
package gui

import (
	"context"
	"image"

	"panorama-stitcher/internal/display"
	"panorama-stitcher/internal/geometry"
	"panorama-stitcher/internal/gui/widgets"
	"panorama-stitcher/internal/logger"
	"panorama-stitcher/internal/opencv/conversion"
	"panorama-stitcher/internal/opencv/safe"

	"fyne.io/fyne/v2"
)

const (
	eventBuffer = 64
	// DefaultMaxWidth caps the width of the preview handed to fyne.
	DefaultMaxWidth = 1600
)

type window struct {
	win  fyne.Window
	view *widgets.ImageDisplay
}

type Manager struct {
	app      fyne.App
	logger   logger.Logger
	events   chan display.Event
	maxWidth int

	// windows and holder are only touched on the fyne goroutine.
	windows map[string]*window
	// holder is never shown. The driver quits once no window is left, and
	// the workflow briefly has none open between two stages.
	holder fyne.Window

	onUserClose func()
}

func NewManager(app fyne.App, log logger.Logger) *Manager {
	return &Manager{
		app:      app,
		logger:   log,
		events:   make(chan display.Event, eventBuffer),
		maxWidth: DefaultMaxWidth,
		windows:  make(map[string]*window),
	}
}

// SetMaxWidth changes the preview width cap. Zero disables downscaling.
func (m *Manager) SetMaxWidth(width int) {
	m.maxWidth = width
}

// SetOnUserClose registers fn to run when the user closes a window that
// the program did not destroy itself.
func (m *Manager) SetOnUserClose(fn func()) {
	m.onUserClose = fn
}

func (m *Manager) Show(title string, mat *safe.Mat) error {
	img, err := conversion.MatToImage(mat)
	if err != nil {
		return err
	}
	preview := conversion.FitWidth(img, m.maxWidth)
	source := image.Pt(mat.Cols(), mat.Rows())

	fyne.DoAndWait(func() {
		if m.holder == nil {
			m.holder = m.app.NewWindow("")
		}
		w, ok := m.windows[title]
		if !ok {
			w = m.newWindow(title)
			m.windows[title] = w
		}
		w.view.SetImage(preview, source)

		bounds := preview.Bounds()
		w.win.Resize(fyne.NewSize(float32(bounds.Dx()), float32(bounds.Dy())))
		w.win.Show()
	})

	m.logger.Debug("GUIManager", "window shown", map[string]interface{}{
		"title":  title,
		"width":  source.X,
		"height": source.Y,
	})
	return nil
}

func (m *Manager) newWindow(title string) *window {
	win := m.app.NewWindow(title)
	view := widgets.NewImageDisplay()
	view.OnTapped = func(p geometry.Point) {
		m.emit(display.Event{Kind: display.Click, Window: title, Point: p})
	}

	win.SetContent(view)
	win.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		m.emit(display.Event{Kind: display.Key, Window: title, Key: string(ev.Name)})
	})
	win.SetOnClosed(func() {
		if _, tracked := m.windows[title]; !tracked {
			return
		}
		delete(m.windows, title)
		m.logger.Info("GUIManager", "window closed by user", map[string]interface{}{"title": title})
		if m.onUserClose != nil {
			m.onUserClose()
		}
	})

	return &window{win: win, view: view}
}

// emit runs on the fyne goroutine and must not block it.
func (m *Manager) emit(ev display.Event) {
	select {
	case m.events <- ev:
	default:
		m.logger.Warning("GUIManager", "event queue full, input dropped", map[string]interface{}{
			"kind":   ev.Kind.String(),
			"window": ev.Window,
		})
	}
}

func (m *Manager) Next(ctx context.Context) (display.Event, error) {
	select {
	case ev := <-m.events:
		return ev, nil
	case <-ctx.Done():
		return display.Event{}, ctx.Err()
	}
}

func (m *Manager) Destroy(title string) {
	fyne.DoAndWait(func() {
		if m.holder == nil {
			m.holder = m.app.NewWindow("")
		}
		w, ok := m.windows[title]
		if !ok {
			return
		}
		delete(m.windows, title)
		w.win.Close()
	})
}

func (m *Manager) CloseAll() {
	fyne.DoAndWait(func() {
		for title, w := range m.windows {
			delete(m.windows, title)
			w.win.Close()
		}
		if m.holder != nil {
			m.holder.Close()
			m.holder = nil
		}
	})
}

// Shutdown satisfies shutdown.Shutdownable.
func (m *Manager) Shutdown() {
	m.CloseAll()
}
