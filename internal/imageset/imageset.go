// Package imageset loads the stitcher's input images and keeps them in the
// order the user chose.
package imageset

import (
	"errors"
	"fmt"

	"panorama-stitcher/internal/logger"
	"panorama-stitcher/internal/opencv/safe"

	"gocv.io/x/gocv"
)

var ErrLoad = errors.New("image load failed")

// Allocator creates tracked copies of decoded Mats.
type Allocator interface {
	Adopt(src gocv.Mat, tag string) (*safe.Mat, error)
}

type Image struct {
	Path string
	Mat  *safe.Mat
}

func (img *Image) Width() int  { return img.Mat.Cols() }
func (img *Image) Height() int { return img.Mat.Rows() }

// Decode reads one file as 8-bit BGR.
func Decode(path string, alloc Allocator) (*Image, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("%w: %s: file missing or not a decodable image", ErrLoad, path)
	}

	safeMat, err := alloc.Adopt(mat, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoad, path, err)
	}

	return &Image{Path: path, Mat: safeMat}, nil
}

// Collection is an ordered, fixed-size set of images.
type Collection struct {
	images []*Image
}

// Load decodes paths in order and stops at the first failure. Images loaded
// before the failure are closed and no Collection is returned.
func Load(paths []string, alloc Allocator, log logger.Logger) (*Collection, error) {
	images := make([]*Image, 0, len(paths))

	for i, path := range paths {
		img, err := Decode(path, alloc)
		if err != nil {
			for _, loaded := range images {
				loaded.Mat.Close()
			}
			return nil, err
		}

		log.Info("ImageLoader", "image loaded", map[string]interface{}{
			"index":  i,
			"path":   path,
			"width":  img.Width(),
			"height": img.Height(),
		})
		images = append(images, img)
	}

	return &Collection{images: images}, nil
}

// NewCollection wraps already decoded images.
func NewCollection(images []*Image) *Collection {
	return &Collection{images: images}
}

func (c *Collection) Len() int {
	return len(c.images)
}

func (c *Collection) At(i int) *Image {
	return c.images[i]
}

// Images returns the images in their current order. The slice is a copy.
func (c *Collection) Images() []*Image {
	out := make([]*Image, len(c.images))
	copy(out, c.images)
	return out
}

func (c *Collection) Mats() []*safe.Mat {
	out := make([]*safe.Mat, len(c.images))
	for i, img := range c.images {
		out[i] = img.Mat
	}
	return out
}

// Swap exchanges the images at a and b. a == b is a no-op.
func (c *Collection) Swap(a, b int) error {
	if a < 0 || a >= len(c.images) || b < 0 || b >= len(c.images) {
		return fmt.Errorf("swap (%d, %d) out of range for %d images", a, b, len(c.images))
	}
	c.images[a], c.images[b] = c.images[b], c.images[a]
	return nil
}

func (c *Collection) Paths() []string {
	out := make([]string, len(c.images))
	for i, img := range c.images {
		out[i] = img.Path
	}
	return out
}

func (c *Collection) Close() {
	for _, img := range c.images {
		img.Mat.Close()
	}
}
