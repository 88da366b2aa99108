package engine

import (
	"encoding/json"

	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/geom"
	"github.com/museboard/museboard/internal/gesture"
	"github.com/museboard/museboard/internal/selection"
)

// DrawCommand is a single drawing operation for the UI layer. Element
// commands are in world space; the UI applies Frame.View once for the whole
// world layer.
type DrawCommand struct {
	Op        string    `json:"op"`                  // "note", "image", "arrow", "handle"
	ElementID string    `json:"elementId,omitempty"` // for hit correlation
	Transform []float64 `json:"transform,omitempty"` // [a, b, c, d, e, f], element centre and rotation
	Width     float64   `json:"width,omitempty"`
	Height    float64   `json:"height,omitempty"`
	Fill      string    `json:"fill,omitempty"`
	Stroke    string    `json:"stroke,omitempty"`
	Text      string    `json:"text,omitempty"`
	Source    string    `json:"source,omitempty"`

	// Arrows and handles
	From     *geom.Point `json:"from,omitempty"`
	To       *geom.Point `json:"to,omitempty"`
	Region   Region      `json:"region,omitempty"`
	Selected bool        `json:"selected,omitempty"`
}

// CompileDrawCommands generates the command buffer for a board in painter's
// order (back to front). Selected elements are followed by their handles.
func CompileDrawCommands(ordered []document.Element, selected func(id string) bool, zoom float64) []DrawCommand {
	commands := make([]DrawCommand, 0, len(ordered))
	for _, el := range ordered {
		sel := selected(el.ID)
		commands = append(commands, compileElement(el, sel))
		if !sel {
			continue
		}
		for _, h := range Handles(el, zoom) {
			pos := h.Position
			commands = append(commands, DrawCommand{
				Op:        "handle",
				ElementID: h.ElementID,
				Region:    h.Region,
				From:      &pos,
			})
		}
	}
	return commands
}

func compileElement(el document.Element, selected bool) DrawCommand {
	cmd := DrawCommand{
		ElementID: el.ID,
		Transform: geom.ElementMatrix(el.Position, el.Rotation).ToSlice(),
		Width:     el.Width,
		Height:    el.Height,
		Selected:  selected,
	}

	switch el.Kind {
	case document.KindNote:
		cmd.Op = "note"
		cmd.Fill = el.Note.Color
		cmd.Text = el.Note.Text
	case document.KindImage:
		cmd.Op = "image"
		cmd.Source = el.Image.Source
	case document.KindArrow:
		cmd.Op = "arrow"
		cmd.Stroke = el.Arrow.Color
		start, end := el.Arrow.Start, el.Arrow.End
		cmd.From = &start
		cmd.To = &end
	}
	return cmd
}

// Frame is everything the UI layer needs to draw one frame.
type Frame struct {
	// View is translate(pan) * scale(zoom) as [a, b, c, d, e, f].
	View     []float64     `json:"view"`
	Pan      geom.Point    `json:"pan"`
	Zoom     float64       `json:"zoom"`
	Commands []DrawCommand `json:"commands"`

	Selection []string `json:"selection"`
	// Bounds is the world-space union of the selected elements' corners.
	Bounds *geom.Rect `json:"bounds,omitempty"`
	// Affordance is the screen point for the generate trigger.
	Affordance *geom.Point `json:"affordance,omitempty"`
	// Marquee is the world rectangle of a marquee drag in progress.
	Marquee *geom.Rect `json:"marquee,omitempty"`

	Gesture gesture.Kind `json:"gesture"`
	Panning bool         `json:"panning"`
}

// Frame returns the current frame and clears the dirty flag. Draw commands
// are recompiled only when something changed.
func (e *Engine) Frame() Frame {
	state := e.view.State()
	selected := e.Selected()

	if e.dirty || e.scene == nil {
		e.scene = CompileDrawCommands(e.board.Ordered(), e.sel.Contains, state.Zoom)
		e.dirty = false
	}

	f := Frame{
		View:      state.Matrix().ToSlice(),
		Pan:       state.Pan,
		Zoom:      state.Zoom,
		Commands:  e.scene,
		Selection: selected,
		Gesture:   e.gestures.State(),
		Panning:   e.view.Panning(),
	}
	if bounds, ok := selection.Bounds(e.board.Lookup(selected)); ok {
		anchor := selection.AffordanceAnchor(bounds, state)
		f.Bounds = &bounds
		f.Affordance = &anchor
	}
	if e.marquee != nil {
		r := e.marquee.rect()
		f.Marquee = &r
	}
	return f
}

// FrameJSON returns Frame encoded as JSON.
func (e *Engine) FrameJSON() string {
	data, err := json.Marshal(e.Frame())
	if err != nil {
		return "{}"
	}
	return string(data)
}
