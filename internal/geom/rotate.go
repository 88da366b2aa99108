package geom

import "math"

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180.0 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180.0 / math.Pi }

// Rotate rotates v about the origin by deg degrees. Positive angles turn
// clockwise on a y-down screen.
func Rotate(v Point, deg float64) Point {
	rad := Radians(deg)
	cos, sin := math.Cos(rad), math.Sin(rad)
	return Point{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// Angle returns the direction of v in degrees, atan2(v.y, v.x).
func Angle(v Point) float64 {
	return Degrees(math.Atan2(v.Y, v.X))
}

// RotatedCorners returns the four corners of a width x height box centred
// at center and rotated by deg, in the order top-left, top-right,
// bottom-right, bottom-left of the unrotated box.
func RotatedCorners(center Point, width, height, deg float64) [4]Point {
	hw, hh := width/2, height/2
	local := [4]Point{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}

	var out [4]Point
	for i, c := range local {
		out[i] = center.Add(Rotate(c, deg))
	}
	return out
}

// ToLocal maps p into the unrotated frame of a box centred at center and
// rotated by deg, so that the box occupies [-w/2,w/2]x[-h/2,h/2].
func ToLocal(p, center Point, deg float64) Point {
	return Rotate(p.Sub(center), -deg)
}

// UnionBoundingBox returns the axis-aligned box around every point of every
// set. ok is false when there are no points at all.
func UnionBoundingBox(sets ...[]Point) (r Rect, ok bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, set := range sets {
		for _, p := range set {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
			ok = true
		}
	}
	if !ok {
		return Rect{}, false
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

// SegmentDistance returns the distance from p to the segment a-b.
func SegmentDistance(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return p.Sub(a).Len()
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Sub(a.Add(ab.Scale(t))).Len()
}
