package engine

import (
	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/geom"
	"github.com/museboard/museboard/internal/gesture"
	"github.com/museboard/museboard/internal/selection"
	"github.com/museboard/museboard/internal/viewport"
)

// Modifiers is the keyboard state accompanying a pointer event.
type Modifiers struct {
	Shift bool `json:"shift"`
	// Pan is the designated pan modifier. While held, pointer-down pans
	// regardless of what is under the pointer.
	Pan bool `json:"pan"`
}

// HitTest resolves a screen point against the board.
func (e *Engine) HitTest(screen geom.Point) Hit {
	world := e.view.ScreenToWorld(screen)
	return HitTest(e.board.Ordered(), e.sel.Contains, world, e.view.Zoom())
}

// PointerDown starts a pan, an element gesture or a marquee. Any
// interaction still in progress is resolved first.
func (e *Engine) PointerDown(screen geom.Point, mods Modifiers) {
	e.release()
	e.down = screen
	e.pointer = screen

	if mods.Pan {
		e.view.BeginPan(screen)
		e.dirty = true
		return
	}

	if hit := e.HitTest(screen); hit.ElementID != "" {
		el, _ := e.board.Get(hit.ElementID)
		if e.gestures.Begin(hit.Region.Gesture(), el, screen, e.view.State(), mods.Shift) {
			if e.gestures.State() == gesture.Drag {
				e.snapshotGroup(el.ID)
			}
			return
		}
	}

	e.selectElement("", mods.Shift)
	world := e.view.ScreenToWorld(screen)
	e.marquee = &marquee{start: world, end: world, additive: mods.Shift}
}

// snapshotGroup records the other selected elements so a drag can move them
// in lockstep from their starting positions.
func (e *Engine) snapshotGroup(dragged string) {
	e.group = make(map[string]document.Element)
	for _, el := range e.board.Lookup(e.sel.IDs()) {
		if el.ID == dragged {
			continue
		}
		e.group[el.ID] = el
	}
}

// PointerMove routes the pointer to whichever interaction is active.
func (e *Engine) PointerMove(screen geom.Point) {
	e.pointer = screen

	switch {
	case e.view.Panning():
		e.view.UpdatePan(screen)
		e.dirty = true
	case e.marquee != nil:
		e.marquee.end = e.view.ScreenToWorld(screen)
		e.dirty = true
	default:
		e.gestures.Move(screen)
	}
}

// PointerUp commits a marquee or ends the pan or gesture in progress.
func (e *Engine) PointerUp(screen geom.Point) {
	if e.marquee != nil {
		e.marquee.end = e.view.ScreenToWorld(screen)
	}
	e.pointer = screen
	e.release()
}

// PointerLeave is handled as a pointer-up at the last known position.
func (e *Engine) PointerLeave() {
	e.release()
}

// Blur is handled as a pointer-up at the last known position. A window that
// loses focus never delivers the pointer-up.
func (e *Engine) Blur() {
	e.release()
}

// release resolves every in-progress interaction and leaves the engine idle.
func (e *Engine) release() {
	if e.marquee != nil {
		m := e.marquee
		e.marquee = nil
		e.selectMarquee(selection.MarqueeHits(e.board.Ordered(), m.rect()), m.additive)
	}
	if e.view.Panning() {
		e.view.EndPan()
		e.dirty = true
	}
	if e.gestures.State() != gesture.Idle {
		e.gestures.End()
		e.dirty = true
		if e.collapse != "" && e.pointer == e.down {
			e.selectElement(e.collapse, false)
		}
	}
	e.collapse = ""
	e.group = nil
}

// Wheel zooms around the pointer. Negative deltaY zooms in.
func (e *Engine) Wheel(screen geom.Point, deltaY float64) {
	e.ZoomAt(screen, viewport.WheelFactor(deltaY))
}

// ZoomAt scales the view by factor, keeping the world point under screen
// fixed.
func (e *Engine) ZoomAt(screen geom.Point, factor float64) {
	e.view.ZoomAt(screen, factor)
	e.dirty = true
}

// ContextMenuEvent is what a right-click resolves to.
type ContextMenuEvent struct {
	Screen    geom.Point `json:"screen"`
	World     geom.Point `json:"world"`
	ElementID string     `json:"elementId,omitempty"`
}

// ContextMenu resolves a right-click to a world point and the element under
// it, if any, and reports it to the ContextMenu hook.
func (e *Engine) ContextMenu(screen geom.Point) ContextMenuEvent {
	ev := ContextMenuEvent{
		Screen:    screen,
		World:     e.view.ScreenToWorld(screen),
		ElementID: e.HitTest(screen).ElementID,
	}
	if e.hooks.ContextMenu != nil {
		e.hooks.ContextMenu(ev.World, ev.ElementID)
	}
	return ev
}
