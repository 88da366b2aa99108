package document

import (
	"errors"
	"fmt"
	"math"

	"github.com/museboard/museboard/internal/geom"
	"github.com/museboard/museboard/internal/typeid"
)

type Kind string

const (
	KindNote  Kind = "note"
	KindImage Kind = "image"
	KindArrow Kind = "arrow"
)

const (
	DefaultNoteWidth  = 200.0
	DefaultNoteHeight = 150.0
	DefaultNoteColor  = "#fef08a"
	DefaultArrowColor = "#1f2937"

	// ArrowHeight is the thickness of an arrow's hit box. It is not derived
	// from the endpoints.
	ArrowHeight = 20.0
)

var (
	ErrNotFound     = errors.New("element not found")
	ErrInvalidKind  = errors.New("invalid element kind")
	ErrDuplicateID  = errors.New("duplicate element id")
	ErrWrongVariant = errors.New("operation not supported for element kind")
)

type Note struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

type Image struct {
	// Source is opaque to the canvas: a URL, an asset path or a data URL.
	Source string `json:"source"`
}

type Arrow struct {
	Start geom.Point `json:"start"`
	End   geom.Point `json:"end"`
	Color string     `json:"color"`
}

// Element is a closed tagged union over Kind. Exactly one of Note, Image or
// Arrow is set, matching Kind.
//
// Position is the world-space centre. Rotation is in degrees, clockwise,
// and unbounded. For arrows Position, Width and Rotation are derived from
// Start and End; see SyncArrow.
type Element struct {
	ID       string     `json:"id"`
	Kind     Kind       `json:"kind"`
	Position geom.Point `json:"position"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	Rotation float64    `json:"rotation"`
	ZIndex   int        `json:"zIndex"`

	Note  *Note  `json:"note,omitempty"`
	Image *Image `json:"image,omitempty"`
	Arrow *Arrow `json:"arrow,omitempty"`
}

// NewNote creates a note centred at pos with a fresh id.
func NewNote(pos geom.Point, text, color string) Element {
	if color == "" {
		color = DefaultNoteColor
	}
	return Element{
		ID:       typeid.NewNoteID(),
		Kind:     KindNote,
		Position: pos,
		Width:    DefaultNoteWidth,
		Height:   DefaultNoteHeight,
		Note:     &Note{Text: text, Color: color},
	}
}

// NewImage creates an image element centred at pos with a fresh id.
func NewImage(pos geom.Point, width, height float64, source string) Element {
	return Element{
		ID:       typeid.NewImageID(),
		Kind:     KindImage,
		Position: pos,
		Width:    width,
		Height:   height,
		Image:    &Image{Source: source},
	}
}

// NewArrow creates an arrow between start and end with a fresh id.
func NewArrow(start, end geom.Point, color string) Element {
	if color == "" {
		color = DefaultArrowColor
	}
	el := Element{
		ID:     typeid.NewArrowID(),
		Kind:   KindArrow,
		Height: ArrowHeight,
		Arrow:  &Arrow{Start: start, End: end, Color: color},
	}
	return el.SyncArrow(0)
}

// Clone returns a deep copy, so that gesture snapshots never alias the
// live element's variant payload.
func (e Element) Clone() Element {
	out := e
	if e.Note != nil {
		n := *e.Note
		out.Note = &n
	}
	if e.Image != nil {
		img := *e.Image
		out.Image = &img
	}
	if e.Arrow != nil {
		a := *e.Arrow
		out.Arrow = &a
	}
	return out
}

// Validate checks that the variant payload matches Kind.
func (e Element) Validate() error {
	set := 0
	for _, ok := range []bool{e.Note != nil, e.Image != nil, e.Arrow != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("element %s has %d variant payloads: %w", e.ID, set, ErrInvalidKind)
	}

	switch e.Kind {
	case KindNote:
		if e.Note == nil {
			return fmt.Errorf("note %s without note data: %w", e.ID, ErrInvalidKind)
		}
	case KindImage:
		if e.Image == nil {
			return fmt.Errorf("image %s without image data: %w", e.ID, ErrInvalidKind)
		}
	case KindArrow:
		if e.Arrow == nil {
			return fmt.Errorf("arrow %s without arrow data: %w", e.ID, ErrInvalidKind)
		}
	default:
		return fmt.Errorf("element %s has kind %q: %w", e.ID, e.Kind, ErrInvalidKind)
	}
	return nil
}

// SyncArrow recomputes an arrow's position, width and rotation from its
// endpoints. Width is floored at minWidth. Non-arrows are returned as is.
func (e Element) SyncArrow(minWidth float64) Element {
	if e.Kind != KindArrow || e.Arrow == nil {
		return e
	}
	out := e.Clone()
	d := out.Arrow.End.Sub(out.Arrow.Start)
	out.Position = geom.Mid(out.Arrow.Start, out.Arrow.End)
	out.Width = math.Max(minWidth, d.Len())
	out.Rotation = geom.Angle(d)
	return out
}

// Translated returns a copy moved rigidly by delta. Arrow endpoints move
// with the element, which keeps the arrow invariant.
func (e Element) Translated(delta geom.Point) Element {
	out := e.Clone()
	out.Position = out.Position.Add(delta)

	switch out.Kind {
	case KindArrow:
		out.Arrow.Start = out.Arrow.Start.Add(delta)
		out.Arrow.End = out.Arrow.End.Add(delta)
	case KindNote, KindImage:
	}
	return out
}

// Corners returns the element's rotated corners in world space.
func (e Element) Corners() [4]geom.Point {
	return geom.RotatedCorners(e.Position, e.Width, e.Height, e.Rotation)
}

// Color returns the element's colour, or "" for kinds without one.
func (e Element) Color() string {
	switch e.Kind {
	case KindNote:
		return e.Note.Color
	case KindArrow:
		return e.Arrow.Color
	case KindImage:
		return ""
	}
	return ""
}

// IsArrow reports whether the element is an arrow.
func (e Element) IsArrow() bool { return e.Kind == KindArrow }
