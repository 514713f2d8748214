package conversion

import (
	"fmt"
	"image"
	"image/color"

	"panorama-stitcher/internal/opencv/safe"

	"golang.org/x/image/draw"
)

// MatToImage converts an 8-bit Mat to a standard Go image
func MatToImage(src *safe.Mat) (image.Image, error) {
	if err := safe.ValidateMatForOperation(src, "Mat to image conversion"); err != nil {
		return nil, err
	}
	if err := safe.ValidateMatType(src.Type(), "Mat to image conversion"); err != nil {
		return nil, err
	}

	rows := src.Rows()
	cols := src.Cols()
	channels := src.Channels()
	data := src.Bytes()

	if len(data) != rows*cols*channels {
		return nil, fmt.Errorf("unexpected buffer size %d for %dx%dx%d", len(data), cols, rows, channels)
	}

	switch channels {
	case 1:
		img := image.NewGray(image.Rect(0, 0, cols, rows))
		copy(img.Pix, data)
		return img, nil
	case 3:
		return bgrToRGBA(data, rows, cols, 3), nil
	case 4:
		return bgrToRGBA(data, rows, cols, 4), nil
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
}

// bgrToRGBA swaps OpenCV's BGR(A) order to RGBA
func bgrToRGBA(data []byte, rows, cols, channels int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cols, rows))

	for i, j := 0, 0; i < len(data); i, j = i+channels, j+4 {
		img.Pix[j] = data[i+2]
		img.Pix[j+1] = data[i+1]
		img.Pix[j+2] = data[i]
		if channels == 4 {
			img.Pix[j+3] = data[i+3]
		} else {
			img.Pix[j+3] = 255
		}
	}

	return img
}

// FitWidth downsizes img so it is at most maxWidth pixels wide. Images
// already narrow enough are returned unchanged.
func FitWidth(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	if maxWidth <= 0 || bounds.Dx() <= maxWidth {
		return img
	}

	height := bounds.Dy() * maxWidth / bounds.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// Placeholder is a flat image shown before real content arrives.
func Placeholder(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{R: 240, G: 240, B: 240, A: 255}}, image.Point{}, draw.Src)
	return img
}
