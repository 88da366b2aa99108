package gesture

import (
	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/geom"
	"github.com/museboard/museboard/internal/viewport"
)

// Sink receives the side effects of a gesture.
type Sink interface {
	// SelectElement is called once when a gesture starts.
	SelectElement(id string, additive bool)
	// UpdateElement is called on every move with the recomputed element.
	// dragDelta is non-nil for drag gestures only and holds the total
	// world-space displacement since pointer-down.
	UpdateElement(el document.Element, dragDelta *geom.Point)
}

// Engine holds at most one active gesture.
type Engine struct {
	sink   Sink
	active *Gesture
}

// NewEngine returns an idle engine reporting to sink.
func NewEngine(sink Sink) *Engine {
	return &Engine{sink: sink}
}

// State returns the kind of the active gesture, or Idle.
func (e *Engine) State() Kind {
	if e.active == nil {
		return Idle
	}
	return e.active.Kind
}

// Active returns the active gesture.
func (e *Engine) Active() (Gesture, bool) {
	if e.active == nil {
		return Gesture{}, false
	}
	return *e.active, true
}

// Begin starts a gesture on el at the screen point pointer and selects the
// element. It does nothing and returns false while another gesture is
// active or when kind does not apply to el.
func (e *Engine) Begin(kind Kind, el document.Element, pointer geom.Point, view viewport.State, additive bool) bool {
	if e.active != nil {
		return false
	}
	g, ok := New(kind, el, pointer, view)
	if !ok {
		return false
	}
	e.active = &g
	e.sink.SelectElement(el.ID, additive)
	return true
}

// Move recomputes the element from the snapshot for the pointer position
// and reports it to the sink. It returns false when idle.
func (e *Engine) Move(pointer geom.Point) bool {
	if e.active == nil {
		return false
	}
	el, delta := e.active.Apply(pointer)
	e.sink.UpdateElement(el, delta)
	return true
}

// End returns the engine to idle, keeping whatever the last move produced.
// It returns the kind of gesture that ended, or Idle.
func (e *Engine) End() Kind {
	kind := e.State()
	e.active = nil
	return kind
}

// Cancel ends a gesture abandoned by pointer-leave or focus loss. It
// behaves exactly like End.
func (e *Engine) Cancel() Kind {
	return e.End()
}
