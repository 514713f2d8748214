// Package geometry provides the point and projective transform types used
// by the stitcher.
package geometry

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point is a 2D coordinate in image pixel space.
type Point struct {
	X, Y float64
}

func (p Point) String() string {
	return fmt.Sprintf("(%.1f, %.1f)", p.X, p.Y)
}

func (p Point) Distance(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// ImagePoint rounds to the nearest pixel.
func (p Point) ImagePoint() image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}

// minDeterminant is the smallest |det(H)| accepted as invertible.
const minDeterminant = 1e-9

var ErrSingular = errors.New("homography is singular")

// Homography is a row-major 3x3 projective transform.
type Homography [9]float64

func Identity() Homography {
	return Homography{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

func (h Homography) Dense() *mat.Dense {
	return mat.NewDense(3, 3, h[:])
}

func (h Homography) Determinant() float64 {
	return mat.Det(h.Dense())
}

// Apply maps p through h. ok is false when p lands on the line at infinity.
func (h Homography) Apply(p Point) (Point, bool) {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if math.Abs(w) < 1e-12 {
		return Point{}, false
	}
	return Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}, true
}

// Validate rejects matrices with non-finite entries or that cannot be inverted.
func (h Homography) Validate() error {
	for i, v := range h {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("homography entry %d is not finite", i)
		}
	}
	if det := h.Determinant(); math.Abs(det) < minDeterminant {
		return fmt.Errorf("%w: det=%g", ErrSingular, det)
	}
	return nil
}

// ReprojectionError is the mean distance between h(src[i]) and dst[i].
func (h Homography) ReprojectionError(src, dst []Point) float64 {
	if len(src) != len(dst) || len(src) == 0 {
		return math.Inf(1)
	}

	var total float64
	for i := range src {
		mapped, ok := h.Apply(src[i])
		if !ok {
			return math.Inf(1)
		}
		total += mapped.Distance(dst[i])
	}
	return total / float64(len(src))
}

func (h Homography) String() string {
	return fmt.Sprintf("[%.4g %.4g %.4g; %.4g %.4g %.4g; %.4g %.4g %.4g]",
		h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7], h[8])
}
