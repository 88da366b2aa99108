// Package viewport owns the pan offset and zoom factor of the infinite
// canvas and converts between screen pixels and world units.
//
// Rendering applies translate(pan) then scale(zoom), so
// screen = world*zoom + pan and world = (screen - pan) / zoom.
package viewport

import (
	"math"

	"github.com/museboard/museboard/internal/geom"
)

const (
	MinZoom = 0.1
	MaxZoom = 5.0

	// Wheel zoom steps.
	ZoomInFactor  = 1.1
	ZoomOutFactor = 0.9
)

// State is an immutable copy of the viewport mapping.
type State struct {
	Pan  geom.Point `json:"pan"`
	Zoom float64    `json:"zoom"`
}

// ScreenToWorld maps a screen point to world space.
func (s State) ScreenToWorld(p geom.Point) geom.Point {
	return geom.Point{X: (p.X - s.Pan.X) / s.Zoom, Y: (p.Y - s.Pan.Y) / s.Zoom}
}

// WorldToScreen maps a world point to screen space.
func (s State) WorldToScreen(p geom.Point) geom.Point {
	return geom.Point{X: p.X*s.Zoom + s.Pan.X, Y: p.Y*s.Zoom + s.Pan.Y}
}

// Matrix returns translate(pan) * scale(zoom), the transform of the single
// world layer.
func (s State) Matrix() geom.Matrix2D {
	return geom.Translate(s.Pan.X, s.Pan.Y).Multiply(geom.Scale(s.Zoom, s.Zoom))
}

// Viewport is the pan/zoom controller. The zero value is not usable; call New.
type Viewport struct {
	pan  geom.Point
	zoom float64

	width, height float64

	panning     bool
	panOrigin   geom.Point
	panStartPtr geom.Point
}

// New returns a viewport with zoom 1 and no pan.
func New() *Viewport {
	return &Viewport{zoom: 1}
}

// State returns the current mapping.
func (v *Viewport) State() State {
	return State{Pan: v.pan, Zoom: v.zoom}
}

// Zoom returns the current zoom factor.
func (v *Viewport) Zoom() float64 { return v.zoom }

// Pan returns the current pan offset in screen pixels.
func (v *Viewport) Pan() geom.Point { return v.pan }

// Size returns the rendered viewport's pixel dimensions.
func (v *Viewport) Size() (width, height float64) { return v.width, v.height }

// ScreenToWorld maps a screen point to world space.
func (v *Viewport) ScreenToWorld(p geom.Point) geom.Point {
	return v.State().ScreenToWorld(p)
}

// WorldToScreen maps a world point to screen space.
func (v *Viewport) WorldToScreen(p geom.Point) geom.Point {
	return v.State().WorldToScreen(p)
}

// Resize records the rendered viewport's pixel dimensions, used by Reset.
func (v *Viewport) Resize(width, height float64) {
	v.width = math.Max(0, width)
	v.height = math.Max(0, height)
}

// Reset sets zoom to 1 and centres the world origin in the viewport.
func (v *Viewport) Reset() {
	v.zoom = 1
	v.pan = geom.Point{X: v.width / 2, Y: v.height / 2}
}

// Set replaces pan and zoom, clamping zoom into bounds.
func (v *Viewport) Set(pan geom.Point, zoom float64) {
	v.pan = pan
	v.zoom = ClampZoom(zoom)
}

// ZoomAt scales by factor while keeping the world point under screenPoint
// fixed on screen.
func (v *Viewport) ZoomAt(screenPoint geom.Point, factor float64) {
	world := v.ScreenToWorld(screenPoint)
	newZoom := ClampZoom(v.zoom * factor)
	v.pan = screenPoint.Sub(world.Scale(newZoom))
	v.zoom = newZoom
}

// BeginPan starts a pan gesture at the given screen point.
func (v *Viewport) BeginPan(screenPoint geom.Point) {
	v.panning = true
	v.panOrigin = v.pan
	v.panStartPtr = screenPoint
}

// UpdatePan moves the pan to follow the pointer. It is a no-op unless a pan
// gesture is active.
func (v *Viewport) UpdatePan(screenPoint geom.Point) {
	if !v.panning {
		return
	}
	v.pan = v.panOrigin.Add(screenPoint.Sub(v.panStartPtr))
}

// EndPan finishes the pan gesture.
func (v *Viewport) EndPan() {
	v.panning = false
}

// Panning reports whether a pan gesture is active.
func (v *Viewport) Panning() bool { return v.panning }

// ClampZoom bounds z to [MinZoom, MaxZoom]. NaN maps to 1.
func ClampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return 1
	}
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// WheelFactor converts a wheel delta to a zoom factor: scrolling down
// (positive delta) zooms out.
func WheelFactor(deltaY float64) float64 {
	switch {
	case deltaY > 0:
		return ZoomOutFactor
	case deltaY < 0:
		return ZoomInFactor
	default:
		return 1
	}
}
