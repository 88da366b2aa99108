package document

import (
	"github.com/museboard/museboard/internal/geom"
)

// NewSampleBoard returns a small board used by the playground and demos:
// two notes joined by an arrow, plus a rotated note.
func NewSampleBoard(id string) *Board {
	b := NewBoard(id, "Sample board")

	idea := NewNote(geom.Pt(-220, -60), "A lighthouse at dusk", "#fef08a")
	mood := NewNote(geom.Pt(220, -60), "Warm, painterly, low horizon", "#bbf7d0")
	mood.Rotation = -4

	palette := NewNote(geom.Pt(0, 180), "Palette: amber, slate, teal", "#bfdbfe")
	palette.Width = 240
	palette.Height = 110
	palette.Rotation = 6

	link := NewArrow(geom.Pt(-110, -60), geom.Pt(110, -60), DefaultArrowColor)

	for _, el := range []Element{idea, mood, palette, link} {
		// Sample content is static and valid.
		if _, err := b.Add(el); err != nil {
			panic(err)
		}
	}
	return b
}
