package app

import (
	"context"

	"panorama-stitcher/internal/config"
	"panorama-stitcher/internal/display"
	"panorama-stitcher/internal/geometry"
	"panorama-stitcher/internal/logger"
	"panorama-stitcher/internal/opencv/safe"
	"panorama-stitcher/internal/selection"
)

// PointPicker collects four points on the base window and then four on the
// current window. Clicks from either window feed the same session.
type PointPicker struct {
	display display.Display
	titles  config.WindowTitles
	session *selection.Session
	logger  logger.Logger
}

func NewPointPicker(d display.Display, titles config.WindowTitles, log logger.Logger) *PointPicker {
	return &PointPicker{
		display: d,
		titles:  titles,
		session: selection.NewSession(),
		logger:  log,
	}
}

func (p *PointPicker) PickPoints(ctx context.Context, base, current *safe.Mat) ([]geometry.Point, []geometry.Point, error) {
	p.session.Reset()
	defer p.display.Destroy(p.titles.Base)
	defer p.display.Destroy(p.titles.Current)

	if err := p.display.Show(p.titles.Base, base); err != nil {
		return nil, nil, err
	}
	if err := p.collectUntil(ctx, selection.AwaitingCurrentPoints); err != nil {
		return nil, nil, err
	}

	if err := p.display.Show(p.titles.Current, current); err != nil {
		return nil, nil, err
	}
	if err := p.collectUntil(ctx, selection.Ready); err != nil {
		return nil, nil, err
	}

	return p.session.Base(), p.session.Current(), nil
}

func (p *PointPicker) collectUntil(ctx context.Context, want selection.State) error {
	for p.session.State() < want {
		ev, err := p.display.Next(ctx)
		if err != nil {
			return err
		}
		if ev.Kind != display.Click {
			continue
		}

		target := p.session.Click(ev.Point)
		counts := p.session.Counts()
		p.logger.Info("PointPicker", "point selected", map[string]interface{}{
			"list":    targetName(target),
			"window":  ev.Window,
			"x":       ev.Point.X,
			"y":       ev.Point.Y,
			"base":    counts.Base,
			"current": counts.Current,
		})
	}
	return nil
}

func targetName(t selection.Target) string {
	switch t {
	case selection.Base:
		return "base"
	case selection.Current:
		return "current"
	default:
		return "dropped"
	}
}

// Presenter shows each intermediate canvas and the final one in the result
// window and waits for a key after each.
type Presenter struct {
	display display.Display
	title   string
	logger  logger.Logger
}

func NewPresenter(d display.Display, title string, log logger.Logger) *Presenter {
	return &Presenter{display: d, title: title, logger: log}
}

func (p *Presenter) Present(ctx context.Context, canvas *safe.Mat, final bool) error {
	if err := p.display.Show(p.title, canvas); err != nil {
		return err
	}
	p.logger.Info("Presenter", "press any key to continue", map[string]interface{}{
		"width":  canvas.Cols(),
		"height": canvas.Rows(),
		"final":  final,
	})
	return display.WaitKey(ctx, p.display)
}
