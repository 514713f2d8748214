// Package reorder implements the click-to-swap selection used to put the
// input images in stitching order.
//
// Zones are assumed to be equally wide: a strip of width W holding n images
// gives every image W/n columns, whatever its real width. Clicks near a
// boundary between images of different widths can therefore land on the
// neighbouring image.
package reorder

// ZoneIndex maps a strip x coordinate to an image index. Results are
// clamped to [0, count-1]. count must be positive.
func ZoneIndex(x float64, stripWidth, count int) int {
	if count <= 1 || stripWidth <= 0 {
		return 0
	}

	zoneWidth := stripWidth / count
	if zoneWidth <= 0 {
		return count - 1
	}

	if x < 0 {
		return 0
	}
	index := int(x) / zoneWidth
	if index >= count {
		return count - 1
	}
	return index
}

// Swap is the outcome of a completed two-click selection.
type Swap struct {
	A, B int
}

// Noop reports whether the swap leaves the order unchanged.
func (s Swap) Noop() bool {
	return s.A == s.B
}

// Selector tracks the pending first click of a swap.
type Selector struct {
	pending int
	armed   bool
}

// Click feeds one zone click. The second click of a pair completes a Swap.
func (s *Selector) Click(index int) (Swap, bool) {
	if !s.armed {
		s.pending = index
		s.armed = true
		return Swap{}, false
	}

	swap := Swap{A: s.pending, B: index}
	s.armed = false
	s.pending = 0
	return swap, true
}

// Pending returns the first click of an unfinished pair.
func (s *Selector) Pending() (int, bool) {
	return s.pending, s.armed
}

func (s *Selector) Reset() {
	*s = Selector{}
}
