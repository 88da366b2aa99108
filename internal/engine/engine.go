// Package engine wires the canvas components together: it owns the board,
// viewport, selection and gesture state of one canvas and routes pointer
// input between them. Commands mutate state and mark the engine dirty;
// queries read it.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/geom"
	"github.com/museboard/museboard/internal/gesture"
	"github.com/museboard/museboard/internal/selection"
	"github.com/museboard/museboard/internal/viewport"
)

var ErrEmptySelection = errors.New("selection is empty")

// Hooks are notified after the engine has applied a change. Any of them may
// be nil.
type Hooks struct {
	// SelectElement is normally called on pointer-down. Pressing a member of
	// a multi-selection without shift keeps the group for a drag, so the call
	// is deferred to pointer-up and skipped if the pointer moved.
	SelectElement func(id string, additive bool)
	MarqueeSelect func(ids []string, additive bool)
	// UpdateElement receives every gesture frame. dragDelta is set for drag
	// gestures only.
	UpdateElement func(el document.Element, dragDelta *geom.Point)
	ContextMenu   func(world geom.Point, elementID string)
	// Generate receives the full selected elements when generation is
	// triggered on a non-empty selection.
	Generate func(elements []document.Element)
}

// Engine is the interaction controller of a single board.
type Engine struct {
	board    *document.Board
	view     *viewport.Viewport
	sel      *selection.Set
	gestures *gesture.Engine
	hooks    Hooks

	// marquee is non-nil while a marquee drag is in progress.
	marquee *marquee
	// group holds the co-selected elements as they were when a drag began.
	group map[string]document.Element
	// Screen positions of the last pointer-down and the latest pointer event.
	down, pointer geom.Point
	// collapse names a member of a multi-selection that was pressed without
	// shift. If the pointer is released without moving, the selection
	// collapses to it; otherwise the whole group was dragged.
	collapse string

	// Cached draw commands, rebuilt when dirty.
	scene []DrawCommand
	dirty bool
}

type marquee struct {
	start, end geom.Point // world
	additive   bool
}

func (m *marquee) rect() geom.Rect {
	return geom.RectFromPoints(m.start, m.end)
}

// NewEngine returns an engine editing an empty board.
func NewEngine(hooks Hooks) *Engine {
	e := &Engine{
		board: document.NewBoard("", ""),
		view:  viewport.New(),
		sel:   selection.New(),
		hooks: hooks,
		dirty: true,
	}
	e.gestures = gesture.NewEngine(sink{e})
	return e
}

// --- Commands ---

// LoadBoard replaces the board and resets all transient state. The
// viewport keeps its size and mapping.
func (e *Engine) LoadBoard(b *document.Board) {
	e.release()
	e.board = b
	e.sel.Clear()
	e.dirty = true
}

// LoadBoardJSON decodes and loads a board.
func (e *Engine) LoadBoardJSON(data []byte) error {
	b := document.NewBoard("", "")
	if err := json.Unmarshal(data, b); err != nil {
		return fmt.Errorf("decode board: %w", err)
	}
	e.LoadBoard(b)
	return nil
}

// LoadSampleBoard loads the built-in demo board.
func (e *Engine) LoadSampleBoard(boardID string) {
	e.LoadBoard(document.NewSampleBoard(boardID))
}

// SetHooks replaces the notification hooks.
func (e *Engine) SetHooks(h Hooks) {
	e.hooks = h
}

// Resize records the pixel size of the rendered viewport.
func (e *Engine) Resize(width, height float64) {
	e.view.Resize(width, height)
	e.dirty = true
}

// ResetView centres the world origin at zoom 1.
func (e *Engine) ResetView() {
	e.view.Reset()
	e.dirty = true
}

// ResetViewFunc exposes ResetView for registration with a toolbar or other
// external control.
func (e *Engine) ResetViewFunc() func() {
	return e.ResetView
}

// SetView sets pan and zoom directly. Zoom is clamped.
func (e *Engine) SetView(pan geom.Point, zoom float64) {
	e.view.Set(pan, zoom)
	e.dirty = true
}

// --- Queries ---

// Board returns the board being edited. Callers must not mutate it while
// the engine is in use.
func (e *Engine) Board() *document.Board { return e.board }

// ViewState returns the current viewport mapping.
func (e *Engine) ViewState() viewport.State { return e.view.State() }

// ViewCenter returns the world point at the centre of the viewport.
func (e *Engine) ViewCenter() geom.Point {
	w, h := e.view.Size()
	return e.view.ScreenToWorld(geom.Pt(w/2, h/2))
}

// Selected returns the selected ids, sorted, after dropping ids whose
// elements no longer exist.
func (e *Engine) Selected() []string {
	e.sel.Prune(e.board.Has)
	return e.sel.IDs()
}

// SelectedElements returns the selected elements in z order.
func (e *Engine) SelectedElements() []document.Element {
	return e.board.Lookup(e.Selected())
}

// GestureState returns the active gesture kind, or gesture.Idle.
func (e *Engine) GestureState() gesture.Kind { return e.gestures.State() }

// Panning reports whether a pan is in progress.
func (e *Engine) Panning() bool { return e.view.Panning() }

// Dirty reports whether anything changed since the last Frame.
func (e *Engine) Dirty() bool { return e.dirty }

// --- gesture.Sink ---

// sink applies gesture side effects to the engine's own selection and
// board, then forwards them to the hooks.
type sink struct{ e *Engine }

func (s sink) SelectElement(id string, additive bool) {
	e := s.e
	if !additive && e.sel.Contains(id) && e.sel.Len() > 1 {
		e.collapse = id
		return
	}
	e.selectElement(id, additive)
}

func (s sink) UpdateElement(el document.Element, dragDelta *geom.Point) {
	e := s.e
	el, ok := e.replace(el)
	if !ok {
		// Deleted mid-gesture; nothing left to move.
		return
	}
	if dragDelta != nil {
		for _, origin := range e.group {
			e.replace(origin.Translated(*dragDelta))
		}
	}
	e.dirty = true
	if e.hooks.UpdateElement != nil {
		e.hooks.UpdateElement(el, dragDelta)
	}
}

// replace stores a gesture result, keeping the element's current z-index
// so reordering during a gesture is not undone by the snapshot.
func (e *Engine) replace(el document.Element) (document.Element, bool) {
	cur, ok := e.board.Get(el.ID)
	if !ok {
		return document.Element{}, false
	}
	el.ZIndex = cur.ZIndex
	if err := e.board.Replace(el); err != nil {
		return document.Element{}, false
	}
	return el, true
}

func (e *Engine) selectElement(id string, additive bool) {
	e.sel.SelectSingle(id, additive)
	e.dirty = true
	if e.hooks.SelectElement != nil {
		e.hooks.SelectElement(id, additive)
	}
}

func (e *Engine) selectMarquee(ids []string, additive bool) {
	e.sel.SelectMarquee(ids, additive)
	e.dirty = true
	if e.hooks.MarqueeSelect != nil {
		e.hooks.MarqueeSelect(ids, additive)
	}
}
