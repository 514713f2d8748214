package widgets

import (
	"image"

	"panorama-stitcher/internal/geometry"
	"panorama-stitcher/internal/opencv/conversion"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const (
	MinAreaWidth  = 320
	MinAreaHeight = 240
)

// ImageDisplay shows one image scaled to fit and reports primary taps in
// the pixel coordinates of the source image. Secondary taps are ignored.
type ImageDisplay struct {
	widget.BaseWidget

	image      *canvas.Image
	sourceSize image.Point

	OnTapped func(geometry.Point)
}

func NewImageDisplay() *ImageDisplay {
	display := &ImageDisplay{}
	display.createComponents()
	display.ExtendBaseWidget(display)
	return display
}

func (id *ImageDisplay) createComponents() {
	id.image = canvas.NewImageFromImage(conversion.Placeholder(MinAreaWidth, MinAreaHeight))
	id.image.FillMode = canvas.ImageFillContain
	id.image.ScaleMode = canvas.ImageScaleSmooth
	id.image.SetMinSize(fyne.NewSize(MinAreaWidth, MinAreaHeight))
}

func (id *ImageDisplay) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(id.image)
}

// SetImage replaces the displayed image. source is the size of the image
// the tap coordinates refer to, which may be larger than img when img is a
// downscaled preview.
func (id *ImageDisplay) SetImage(img image.Image, source image.Point) {
	id.image.Image = img
	id.sourceSize = source
	id.image.Refresh()
}

func (id *ImageDisplay) SourceSize() image.Point {
	return id.sourceSize
}

func (id *ImageDisplay) Tapped(ev *fyne.PointEvent) {
	if id.OnTapped == nil || id.sourceSize.X <= 0 || id.sourceSize.Y <= 0 {
		return
	}
	id.OnTapped(SourcePoint(ev.Position, id.Size(), id.sourceSize))
}

// SourcePoint inverts ImageFillContain: the source is scaled uniformly to
// fit area and centred. Positions in the letterbox map outside the source.
func SourcePoint(pos fyne.Position, area fyne.Size, source image.Point) geometry.Point {
	sw, sh := float64(source.X), float64(source.Y)
	aw, ah := float64(area.Width), float64(area.Height)
	if aw <= 0 || ah <= 0 || sw <= 0 || sh <= 0 {
		return geometry.Point{X: float64(pos.X), Y: float64(pos.Y)}
	}

	scale := aw / sw
	if s := ah / sh; s < scale {
		scale = s
	}
	offX := (aw - sw*scale) / 2
	offY := (ah - sh*scale) / 2

	return geometry.Point{
		X: (float64(pos.X) - offX) / scale,
		Y: (float64(pos.Y) - offY) / scale,
	}
}
