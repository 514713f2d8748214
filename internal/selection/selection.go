// Package selection collects the four point correspondences needed for one
// stitch step.
package selection

import "panorama-stitcher/internal/geometry"

// PointsPerImage is the minimum number of pairs that fixes a homography.
const PointsPerImage = 4

// State values are ordered: a later stage compares greater.
type State int

const (
	AwaitingBasePoints State = iota
	AwaitingCurrentPoints
	Ready
)

func (s State) String() string {
	switch s {
	case AwaitingBasePoints:
		return "AwaitingBasePoints"
	case AwaitingCurrentPoints:
		return "AwaitingCurrentPoints"
	case Ready:
		return "Ready"
	default:
		return "Unknown"
	}
}

// Target names the list a click was stored in.
type Target int

const (
	Dropped Target = iota
	Base
	Current
)

// Counts is the fill level of both lists.
type Counts struct {
	Base, Current int
}

// Transition decides where a click goes and what state follows. The window
// that received the click plays no part: the base list is always filled
// first.
func Transition(counts Counts) (Target, State) {
	switch {
	case counts.Base < PointsPerImage:
		counts.Base++
		return Base, stateFor(counts)
	case counts.Current < PointsPerImage:
		counts.Current++
		return Current, stateFor(counts)
	default:
		return Dropped, Ready
	}
}

func stateFor(c Counts) State {
	switch {
	case c.Base < PointsPerImage:
		return AwaitingBasePoints
	case c.Current < PointsPerImage:
		return AwaitingCurrentPoints
	default:
		return Ready
	}
}

// Session holds both point lists of one stitch step.
type Session struct {
	base    []geometry.Point
	current []geometry.Point
	state   State
}

func NewSession() *Session {
	s := &Session{}
	s.Reset()
	return s
}

func (s *Session) Reset() {
	s.base = make([]geometry.Point, 0, PointsPerImage)
	s.current = make([]geometry.Point, 0, PointsPerImage)
	s.state = AwaitingBasePoints
}

// Click records p and returns the list it went to.
func (s *Session) Click(p geometry.Point) Target {
	target, next := Transition(s.Counts())
	switch target {
	case Base:
		s.base = append(s.base, p)
	case Current:
		s.current = append(s.current, p)
	}
	s.state = next
	return target
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Counts() Counts {
	return Counts{Base: len(s.base), Current: len(s.current)}
}

// Base returns a copy of the base list.
func (s *Session) Base() []geometry.Point {
	return append([]geometry.Point(nil), s.base...)
}

// Current returns a copy of the current list.
func (s *Session) Current() []geometry.Point {
	return append([]geometry.Point(nil), s.current...)
}
