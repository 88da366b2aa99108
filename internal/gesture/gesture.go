// Package gesture implements the direct-manipulation state machine for a
// single element: drag, corner resize, rotate and arrow endpoint edits.
//
// Every frame is computed from the snapshot taken at pointer-down and the
// total pointer displacement, never from the previous frame. The result for
// a given final pointer position does not depend on how many move events
// arrived in between.
package gesture

import (
	"math"

	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/geom"
	"github.com/museboard/museboard/internal/viewport"
)

type Kind string

const (
	Idle             Kind = "idle"
	Drag             Kind = "drag"
	Resize           Kind = "resize"
	Rotate           Kind = "rotate"
	ResizeArrowStart Kind = "resize-arrow-start"
	ResizeArrowEnd   Kind = "resize-arrow-end"
)

const (
	// MinSize is the smallest width or height a resize can produce.
	MinSize = 20.0
	// MinArrowWidth is the floor applied when an arrow endpoint is dragged.
	MinArrowWidth = 10.0
)

// Applies reports whether a gesture of this kind can act on an element of
// the given kind.
func (k Kind) Applies(el document.Kind) bool {
	switch k {
	case Drag:
		return true
	case Resize, Rotate:
		return el == document.KindNote || el == document.KindImage
	case ResizeArrowStart, ResizeArrowEnd:
		return el == document.KindArrow
	case Idle:
		return false
	}
	return false
}

// Gesture is the immutable record of an active gesture.
type Gesture struct {
	Kind Kind
	// Origin is the screen point of pointer-down.
	Origin geom.Point
	// Snapshot is the element as it was at pointer-down.
	Snapshot document.Element
	// Zoom at pointer-down, used to turn screen deltas into world units.
	Zoom float64

	// Rotate only: the element's screen-space centre and the pointer's
	// starting angle around it, in radians.
	Center     geom.Point
	StartAngle float64
}

// New records a gesture starting at the screen point origin. ok is false
// when kind does not apply to el.
func New(kind Kind, el document.Element, origin geom.Point, view viewport.State) (g Gesture, ok bool) {
	if !kind.Applies(el.Kind) {
		return Gesture{}, false
	}

	zoom := view.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	g = Gesture{
		Kind:     kind,
		Origin:   origin,
		Snapshot: el.Clone(),
		Zoom:     zoom,
	}
	if kind == Rotate {
		g.Center = view.WorldToScreen(el.Position)
		v := origin.Sub(g.Center)
		g.StartAngle = math.Atan2(v.Y, v.X)
	}
	return g, true
}

// WorldDelta returns the pointer displacement since pointer-down in world
// units.
func (g Gesture) WorldDelta(pointer geom.Point) geom.Point {
	return pointer.Sub(g.Origin).Div(g.Zoom)
}

// Apply computes the element for the current pointer position. dragDelta is
// the world-space displacement for drag gestures and nil otherwise.
func (g Gesture) Apply(pointer geom.Point) (el document.Element, dragDelta *geom.Point) {
	snap := g.Snapshot
	delta := g.WorldDelta(pointer)

	switch g.Kind {
	case Drag:
		d := delta
		return snap.Translated(d), &d

	case Resize:
		local := geom.Rotate(delta, -snap.Rotation)
		w := math.Max(MinSize, snap.Width+local.X)
		h := math.Max(MinSize, snap.Height+local.Y)

		// Growing from the bottom-right handle shifts the centre by half the
		// size change, rotated back into world space; the opposite corner
		// stays put.
		shift := geom.Rotate(geom.Pt((w-snap.Width)/2, (h-snap.Height)/2), snap.Rotation)

		out := snap.Clone()
		out.Width = w
		out.Height = h
		out.Position = snap.Position.Add(shift)
		return out, nil

	case Rotate:
		v := pointer.Sub(g.Center)
		current := math.Atan2(v.Y, v.X)

		out := snap.Clone()
		out.Rotation = snap.Rotation + geom.Degrees(current-g.StartAngle)
		return out, nil

	case ResizeArrowStart:
		out := snap.Clone()
		out.Arrow.Start = snap.Arrow.Start.Add(delta)
		return out.SyncArrow(MinArrowWidth), nil

	case ResizeArrowEnd:
		out := snap.Clone()
		out.Arrow.End = snap.Arrow.End.Add(delta)
		return out.SyncArrow(MinArrowWidth), nil

	case Idle:
	}
	return snap.Clone(), nil
}
