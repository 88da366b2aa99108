// Package geom holds the stateless 2D math shared by the canvas: points,
// axis-aligned rectangles, affine matrices and rotated-box helpers.
//
// Whether a Point is in screen pixels or world units depends on the caller;
// nothing in this package mixes the two.
package geom

import "math"

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale multiplies both coordinates by s.
func (p Point) Scale(s float64) Point { return Point{X: p.X * s, Y: p.Y * s} }

// Div divides both coordinates by s. Callers guarantee s != 0.
func (p Point) Div(s float64) Point { return Point{X: p.X / s, Y: p.Y / s} }

// Len returns the Euclidean length of p treated as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Mid returns the midpoint between p and q.
func Mid(p, q Point) Point { return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2} }

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromPoints returns the rect spanned by two opposite corners given in
// any order, as produced by a drag in any direction.
func RectFromPoints(a, b Point) Rect {
	minX, maxX := min(a.X, b.X), max(a.X, b.X)
	minY, maxY := min(a.Y, b.Y), max(a.Y, b.Y)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Contains checks if a point is inside the rect. Edges are inclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Min returns the top-left corner.
func (r Rect) Min() Point { return Point{X: r.X, Y: r.Y} }

// Max returns the bottom-right corner.
func (r Rect) Max() Point { return Point{X: r.X + r.Width, Y: r.Y + r.Height} }

// Inset grows (negative d) or shrinks the rect on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
}

// ApproxEqual reports whether a and b differ by less than eps on both axes.
func ApproxEqual(a, b Point, eps float64) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}
