package engine

import (
	"fmt"
	"math"

	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/geom"
	"github.com/museboard/museboard/internal/selection"
)

// Placement of generated content relative to the selection bounds.
const (
	GeneratedGap      = 40.0
	GeneratedMaxSide  = 320.0
	GeneratedNoteSide = document.DefaultNoteWidth
)

// AddNote places a note centred at the world point at.
func (e *Engine) AddNote(at geom.Point, text, color string) (document.Element, error) {
	return e.add(document.NewNote(at, text, color))
}

// AddImage places an image centred at the world point at.
func (e *Engine) AddImage(at geom.Point, width, height float64, source string) (document.Element, error) {
	return e.add(document.NewImage(at, width, height, source))
}

// AddArrow places an arrow between two world points.
func (e *Engine) AddArrow(start, end geom.Point, color string) (document.Element, error) {
	return e.add(document.NewArrow(start, end, color))
}

func (e *Engine) add(el document.Element) (document.Element, error) {
	stored, err := e.board.Add(el)
	if err != nil {
		return document.Element{}, fmt.Errorf("add %s: %w", el.Kind, err)
	}
	e.dirty = true
	return stored, nil
}

// Delete removes an element and drops it from the selection.
func (e *Engine) Delete(id string) error {
	if !e.board.Delete(id) {
		return fmt.Errorf("delete %s: %w", id, document.ErrNotFound)
	}
	e.sel.Remove(id)
	delete(e.group, id)
	e.dirty = true
	return nil
}

// DeleteSelected removes every selected element and returns how many were
// removed.
func (e *Engine) DeleteSelected() int {
	n := 0
	for _, id := range e.Selected() {
		if e.Delete(id) == nil {
			n++
		}
	}
	return n
}

// SetText edits a note's text.
func (e *Engine) SetText(id, text string) error {
	if err := e.board.SetText(id, text); err != nil {
		return err
	}
	e.dirty = true
	return nil
}

// SetColor recolours a note or arrow.
func (e *Engine) SetColor(id, color string) error {
	if err := e.board.SetColor(id, color); err != nil {
		return err
	}
	e.dirty = true
	return nil
}

func (e *Engine) BringToFront(id string) error {
	if err := e.board.BringToFront(id); err != nil {
		return err
	}
	e.dirty = true
	return nil
}

func (e *Engine) SendToBack(id string) error {
	if err := e.board.SendToBack(id); err != nil {
		return err
	}
	e.dirty = true
	return nil
}

// Generate hands the selected elements to the Generate hook. With nothing
// selected it does nothing and returns ErrEmptySelection.
func (e *Engine) Generate() ([]document.Element, error) {
	els := e.SelectedElements()
	if len(els) == 0 {
		return nil, ErrEmptySelection
	}
	if e.hooks.Generate != nil {
		e.hooks.Generate(els)
	}
	return els, nil
}

// GeneratedImage is one image produced by generation.
type GeneratedImage struct {
	Source string  `json:"source"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Generated is the output of a generation request.
type Generated struct {
	Images []GeneratedImage `json:"images"`
	Text   string           `json:"text"`
}

// PlaceGenerated adds generated content in a row to the right of anchor,
// vertically centred on it, and selects the new elements. Images are scaled
// to fit GeneratedMaxSide; text becomes a note at the end of the row.
func (e *Engine) PlaceGenerated(anchor geom.Rect, g Generated) ([]document.Element, error) {
	x := anchor.X + anchor.Width + GeneratedGap
	y := anchor.Y + anchor.Height/2

	var added []document.Element
	for _, img := range g.Images {
		w, h := fitSide(img.Width, img.Height, GeneratedMaxSide)
		el, err := e.AddImage(geom.Pt(x+w/2, y), w, h, img.Source)
		if err != nil {
			return added, err
		}
		added = append(added, el)
		x += w + GeneratedGap
	}
	if g.Text != "" {
		el, err := e.AddNote(geom.Pt(x+GeneratedNoteSide/2, y), g.Text, "")
		if err != nil {
			return added, err
		}
		added = append(added, el)
	}

	if len(added) > 0 {
		ids := make([]string, len(added))
		for i, el := range added {
			ids[i] = el.ID
		}
		e.selectMarquee(ids, false)
	}
	return added, nil
}

// SelectionBounds returns the world bounds of the selection.
func (e *Engine) SelectionBounds() (geom.Rect, bool) {
	return selection.Bounds(e.SelectedElements())
}

// fitSide scales w x h down so the longer side is at most limit. Unknown
// sizes become a square of limit.
func fitSide(w, h, limit float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return limit, limit
	}
	long := math.Max(w, h)
	if long <= limit {
		return w, h
	}
	s := limit / long
	return w * s, h * s
}
