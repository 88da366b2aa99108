package engine

import (
	"math"

	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/geom"
	"github.com/museboard/museboard/internal/gesture"
)

// Handle geometry in screen pixels. Hit testing divides by zoom so handles
// keep a constant on-screen size.
const (
	HandleRadius       = 8.0
	RotateHandleOffset = 24.0
)

// Region identifies which part of an element a point falls on.
type Region string

const (
	RegionNone       Region = ""
	RegionBody       Region = "body"
	RegionResize     Region = "resize"
	RegionRotate     Region = "rotate"
	RegionArrowStart Region = "arrow-start"
	RegionArrowEnd   Region = "arrow-end"
)

// Gesture maps a hit region to the gesture it starts.
func (r Region) Gesture() gesture.Kind {
	switch r {
	case RegionBody:
		return gesture.Drag
	case RegionResize:
		return gesture.Resize
	case RegionRotate:
		return gesture.Rotate
	case RegionArrowStart:
		return gesture.ResizeArrowStart
	case RegionArrowEnd:
		return gesture.ResizeArrowEnd
	case RegionNone:
	}
	return gesture.Idle
}

// Hit is the result of a hit test. ElementID is empty on a miss.
type Hit struct {
	ElementID string `json:"elementId,omitempty"`
	Region    Region `json:"region,omitempty"`
}

// Handle is a transform handle of a selected element, in world space.
type Handle struct {
	ElementID string     `json:"elementId"`
	Region    Region     `json:"region"`
	Position  geom.Point `json:"position"`
}

// Handles returns the transform handles of el at the given zoom.
func Handles(el document.Element, zoom float64) []Handle {
	switch el.Kind {
	case document.KindNote, document.KindImage:
		corners := el.Corners()
		lift := el.Height/2 + RotateHandleOffset/zoom
		return []Handle{
			{ElementID: el.ID, Region: RegionResize, Position: corners[2]},
			{ElementID: el.ID, Region: RegionRotate, Position: el.Position.Add(geom.Rotate(geom.Pt(0, -lift), el.Rotation))},
		}
	case document.KindArrow:
		return []Handle{
			{ElementID: el.ID, Region: RegionArrowStart, Position: el.Arrow.Start},
			{ElementID: el.ID, Region: RegionArrowEnd, Position: el.Arrow.End},
		}
	}
	return nil
}

// HitTest finds the top-most element under the world point p. ordered must
// be in ascending z order. Handles are only live on selected elements and
// take precedence over that element's body.
func HitTest(ordered []document.Element, selected func(id string) bool, p geom.Point, zoom float64) Hit {
	radius := HandleRadius / zoom

	for i := len(ordered) - 1; i >= 0; i-- {
		el := ordered[i]

		if selected(el.ID) {
			for _, h := range Handles(el, zoom) {
				if p.Sub(h.Position).Len() <= radius {
					return Hit{ElementID: el.ID, Region: h.Region}
				}
			}
		}
		if bodyContains(el, p, zoom) {
			return Hit{ElementID: el.ID, Region: RegionBody}
		}
	}
	return Hit{}
}

func bodyContains(el document.Element, p geom.Point, zoom float64) bool {
	switch el.Kind {
	case document.KindNote, document.KindImage:
		local := geom.ToLocal(p, el.Position, el.Rotation)
		return math.Abs(local.X) <= el.Width/2 && math.Abs(local.Y) <= el.Height/2
	case document.KindArrow:
		slop := math.Max(el.Height/2, HandleRadius/zoom)
		return geom.SegmentDistance(p, el.Arrow.Start, el.Arrow.End) <= slop
	}
	return false
}
