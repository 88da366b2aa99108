package engine

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/geom"
	"github.com/museboard/museboard/internal/gesture"
)

const eps = 1e-6

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(Hooks{})
	e.Resize(800, 600)
	return e
}

func mustAddNote(t *testing.T, e *Engine, at geom.Point, w, h float64) document.Element {
	t.Helper()
	el := document.NewNote(at, "", "")
	el.Width = w
	el.Height = h
	stored, err := e.Board().Add(el)
	if err != nil {
		t.Fatalf("add note: %v", err)
	}
	return stored
}

func get(t *testing.T, e *Engine, id string) document.Element {
	t.Helper()
	el, ok := e.Board().Get(id)
	if !ok {
		t.Fatalf("element %s not found", id)
	}
	return el
}

func click(e *Engine, p geom.Point, mods Modifiers) {
	e.PointerDown(p, mods)
	e.PointerUp(p)
}

func drag(e *Engine, from, to geom.Point, steps int, mods Modifiers) {
	e.PointerDown(from, mods)
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		e.PointerMove(from.Add(to.Sub(from).Scale(f)))
	}
	e.PointerUp(to)
}

func TestDragScenario(t *testing.T) {
	e := newTestEngine(t)
	note := mustAddNote(t, e, geom.Pt(0, 0), 100, 50)

	drag(e, geom.Pt(0, 0), geom.Pt(30, 0), 1, Modifiers{})
	if got := get(t, e, note.ID).Position; !geom.ApproxEqual(got, geom.Pt(30, 0), eps) {
		t.Fatalf("expected (30,0), got %+v", got)
	}
	if e.GestureState() != gesture.Idle {
		t.Fatalf("expected idle after pointer-up, got %s", e.GestureState())
	}

	drag(e, geom.Pt(30, 0), geom.Pt(30, 0), 1, Modifiers{})
	if got := get(t, e, note.ID).Position; !geom.ApproxEqual(got, geom.Pt(30, 0), eps) {
		t.Errorf("expected position unchanged at (30,0), got %+v", got)
	}
	if !reflect.DeepEqual(e.Selected(), []string{note.ID}) {
		t.Errorf("expected %s selected, got %v", note.ID, e.Selected())
	}
}

func TestDragRescalesByZoom(t *testing.T) {
	e := newTestEngine(t)
	note := mustAddNote(t, e, geom.Pt(0, 0), 100, 50)
	e.SetView(geom.Pt(100, 100), 2)

	// World (0,0) is at screen (100,100).
	drag(e, geom.Pt(100, 100), geom.Pt(160, 120), 3, Modifiers{})
	if got := get(t, e, note.ID).Position; !geom.ApproxEqual(got, geom.Pt(30, 10), eps) {
		t.Errorf("expected (30,10), got %+v", got)
	}
}

func TestGroupDrag(t *testing.T) {
	e := newTestEngine(t)
	a := mustAddNote(t, e, geom.Pt(0, 0), 100, 100)
	b := mustAddNote(t, e, geom.Pt(300, 0), 100, 100)
	c := mustAddNote(t, e, geom.Pt(0, 400), 100, 100)

	// Marquee around a and b.
	drag(e, geom.Pt(-100, -100), geom.Pt(400, 100), 4, Modifiers{})
	if !reflect.DeepEqual(e.Selected(), sorted(a.ID, b.ID)) {
		t.Fatalf("expected a and b selected, got %v", e.Selected())
	}

	drag(e, geom.Pt(0, 0), geom.Pt(10, 20), 7, Modifiers{})
	if got := get(t, e, a.ID).Position; !geom.ApproxEqual(got, geom.Pt(10, 20), eps) {
		t.Errorf("expected a at (10,20), got %+v", got)
	}
	if got := get(t, e, b.ID).Position; !geom.ApproxEqual(got, geom.Pt(310, 20), eps) {
		t.Errorf("expected b at (310,20), got %+v", got)
	}
	if got := get(t, e, c.ID).Position; !geom.ApproxEqual(got, geom.Pt(0, 400), eps) {
		t.Errorf("expected c untouched, got %+v", got)
	}
	if !reflect.DeepEqual(e.Selected(), sorted(a.ID, b.ID)) {
		t.Errorf("expected group selection kept after drag, got %v", e.Selected())
	}

	// A click without movement collapses the group.
	click(e, geom.Pt(10, 20), Modifiers{})
	if !reflect.DeepEqual(e.Selected(), []string{a.ID}) {
		t.Errorf("expected click to collapse selection to a, got %v", e.Selected())
	}
}

func sorted(ids ...string) []string {
	out := append([]string(nil), ids...)
	for i := range out {
		for j := i + 1; j < len(out); j++ {
			if out[j] < out[i] {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

func TestClickSelection(t *testing.T) {
	e := newTestEngine(t)
	a := mustAddNote(t, e, geom.Pt(0, 0), 100, 100)
	b := mustAddNote(t, e, geom.Pt(300, 0), 100, 100)

	click(e, geom.Pt(0, 0), Modifiers{})
	click(e, geom.Pt(300, 0), Modifiers{Shift: true})
	if !reflect.DeepEqual(e.Selected(), sorted(a.ID, b.ID)) {
		t.Fatalf("expected a and b, got %v", e.Selected())
	}

	// Shift-click on empty space keeps the selection.
	click(e, geom.Pt(150, 300), Modifiers{Shift: true})
	if len(e.Selected()) != 2 {
		t.Errorf("expected selection kept, got %v", e.Selected())
	}

	// Shift-click on a selected element toggles it off.
	click(e, geom.Pt(300, 0), Modifiers{Shift: true})
	if !reflect.DeepEqual(e.Selected(), []string{a.ID}) {
		t.Errorf("expected only a, got %v", e.Selected())
	}

	// Plain click on empty space clears.
	click(e, geom.Pt(150, 300), Modifiers{})
	if len(e.Selected()) != 0 {
		t.Errorf("expected empty selection, got %v", e.Selected())
	}
}

func TestMarqueeIsCenterOnly(t *testing.T) {
	e := newTestEngine(t)
	big := mustAddNote(t, e, geom.Pt(10, 10), 100, 100)
	small := mustAddNote(t, e, geom.Pt(300, 300), 20, 20)

	// Starts on empty space, overlaps big's body but not its centre.
	drag(e, geom.Pt(-200, -200), geom.Pt(5, 5), 2, Modifiers{})
	if len(e.Selected()) != 0 {
		t.Errorf("expected nothing selected, got %v", e.Selected())
	}

	drag(e, geom.Pt(250, 250), geom.Pt(350, 350), 2, Modifiers{})
	if !reflect.DeepEqual(e.Selected(), []string{small.ID}) {
		t.Errorf("expected only small, got %v", e.Selected())
	}

	// Additive marquee unions.
	drag(e, geom.Pt(-60, 100), geom.Pt(80, -100), 2, Modifiers{Shift: true})
	if !reflect.DeepEqual(e.Selected(), sorted(big.ID, small.ID)) {
		t.Errorf("expected both, got %v", e.Selected())
	}
}

func TestMarqueeInFrame(t *testing.T) {
	e := newTestEngine(t)
	e.PointerDown(geom.Pt(10, 10), Modifiers{})
	e.PointerMove(geom.Pt(50, 30))

	f := e.Frame()
	if f.Marquee == nil {
		t.Fatal("expected marquee in frame")
	}
	want := geom.Rect{X: 10, Y: 10, Width: 40, Height: 20}
	if *f.Marquee != want {
		t.Errorf("expected %+v, got %+v", want, *f.Marquee)
	}

	e.PointerUp(geom.Pt(50, 30))
	if e.Frame().Marquee != nil {
		t.Error("expected marquee cleared after pointer-up")
	}
}

func TestPanModifierTakesPrecedence(t *testing.T) {
	e := newTestEngine(t)
	note := mustAddNote(t, e, geom.Pt(0, 0), 100, 100)

	e.PointerDown(geom.Pt(0, 0), Modifiers{Pan: true})
	if !e.Panning() {
		t.Fatal("expected pan")
	}
	e.PointerMove(geom.Pt(40, -10))
	e.PointerUp(geom.Pt(40, -10))

	if got := e.ViewState().Pan; !geom.ApproxEqual(got, geom.Pt(40, -10), eps) {
		t.Errorf("expected pan (40,-10), got %+v", got)
	}
	if got := get(t, e, note.ID).Position; !geom.ApproxEqual(got, geom.Pt(0, 0), eps) {
		t.Errorf("pan moved the note to %+v", got)
	}
	if len(e.Selected()) != 0 {
		t.Errorf("pan changed selection: %v", e.Selected())
	}
	if e.Panning() {
		t.Error("expected pan to end on pointer-up")
	}
}

func TestLeaveAndBlurEndInteraction(t *testing.T) {
	e := newTestEngine(t)
	note := mustAddNote(t, e, geom.Pt(0, 0), 100, 100)

	e.PointerDown(geom.Pt(0, 0), Modifiers{})
	e.PointerMove(geom.Pt(25, 5))
	e.PointerLeave()
	if e.GestureState() != gesture.Idle {
		t.Fatalf("expected idle after leave, got %s", e.GestureState())
	}
	if got := get(t, e, note.ID).Position; !geom.ApproxEqual(got, geom.Pt(25, 5), eps) {
		t.Errorf("expected last move kept at (25,5), got %+v", got)
	}

	// Moves after the leave do nothing.
	e.PointerMove(geom.Pt(400, 400))
	if got := get(t, e, note.ID).Position; !geom.ApproxEqual(got, geom.Pt(25, 5), eps) {
		t.Errorf("stale move changed the note: %+v", got)
	}

	// Blur commits a marquee in progress.
	e.PointerDown(geom.Pt(-300, -300), Modifiers{})
	e.PointerMove(geom.Pt(100, 100))
	e.Blur()
	if !reflect.DeepEqual(e.Selected(), []string{note.ID}) {
		t.Errorf("expected marquee committed on blur, got %v", e.Selected())
	}

	e.PointerDown(geom.Pt(300, 300), Modifiers{Pan: true})
	e.Blur()
	if e.Panning() {
		t.Error("expected pan ended on blur")
	}
}

func TestResizeHandle(t *testing.T) {
	e := newTestEngine(t)
	note := mustAddNote(t, e, geom.Pt(0, 0), 100, 50)

	// Handles are only live once selected.
	if hit := e.HitTest(geom.Pt(50, 25)); hit.Region != RegionBody {
		t.Fatalf("expected body before selection, got %+v", hit)
	}
	click(e, geom.Pt(0, 0), Modifiers{})
	if hit := e.HitTest(geom.Pt(52, 27)); hit.Region != RegionResize || hit.ElementID != note.ID {
		t.Fatalf("expected resize handle, got %+v", hit)
	}

	drag(e, geom.Pt(50, 25), geom.Pt(80, 45), 5, Modifiers{})
	got := get(t, e, note.ID)
	if math.Abs(got.Width-130) > eps || math.Abs(got.Height-70) > eps {
		t.Errorf("expected 130x70, got %vx%v", got.Width, got.Height)
	}
	if !geom.ApproxEqual(got.Corners()[0], geom.Pt(-50, -25), eps) {
		t.Errorf("expected top-left anchored at (-50,-25), got %+v", got.Corners()[0])
	}
}

func TestRotateHandle(t *testing.T) {
	e := newTestEngine(t)
	note := mustAddNote(t, e, geom.Pt(0, 0), 100, 100)
	click(e, geom.Pt(0, 0), Modifiers{})

	handle := geom.Pt(0, -50-RotateHandleOffset)
	if hit := e.HitTest(handle); hit.Region != RegionRotate {
		t.Fatalf("expected rotate handle, got %+v", hit)
	}

	// Quarter turn clockwise around the centre.
	drag(e, handle, geom.Pt(50+RotateHandleOffset, 0), 3, Modifiers{})
	if got := get(t, e, note.ID).Rotation; math.Abs(got-90) > eps {
		t.Errorf("expected rotation 90, got %v", got)
	}
}

func TestArrowEndpointScenario(t *testing.T) {
	e := newTestEngine(t)
	arrow, err := e.AddArrow(geom.Pt(0, 0), geom.Pt(100, 0), "")
	if err != nil {
		t.Fatal(err)
	}
	click(e, geom.Pt(50, 0), Modifiers{})
	if hit := e.HitTest(geom.Pt(100, 0)); hit.Region != RegionArrowEnd {
		t.Fatalf("expected arrow end handle, got %+v", hit)
	}

	drag(e, geom.Pt(100, 0), geom.Pt(100, 100), 10, Modifiers{})
	got := get(t, e, arrow.ID)
	if !geom.ApproxEqual(got.Arrow.End, geom.Pt(100, 100), eps) {
		t.Errorf("expected end (100,100), got %+v", got.Arrow.End)
	}
	if math.Abs(got.Width-141.42135623) > 1e-6 || math.Abs(got.Rotation-45) > eps {
		t.Errorf("expected width 141.42 rotation 45, got %v %v", got.Width, got.Rotation)
	}
	if !geom.ApproxEqual(got.Position, geom.Pt(50, 50), eps) {
		t.Errorf("expected position (50,50), got %+v", got.Position)
	}
}

func TestTopmostHitWins(t *testing.T) {
	e := newTestEngine(t)
	mustAddNote(t, e, geom.Pt(0, 0), 100, 100)
	top := mustAddNote(t, e, geom.Pt(20, 0), 100, 100)

	if hit := e.HitTest(geom.Pt(10, 0)); hit.ElementID != top.ID {
		t.Errorf("expected %s, got %+v", top.ID, hit)
	}
}

func TestRotatedBodyHit(t *testing.T) {
	e := newTestEngine(t)
	el := document.NewNote(geom.Pt(0, 0), "", "")
	el.Width, el.Height, el.Rotation = 200, 20, 90
	stored, _ := e.Board().Add(el)

	if hit := e.HitTest(geom.Pt(0, 90)); hit.ElementID != stored.ID {
		t.Errorf("expected hit along the rotated long axis, got %+v", hit)
	}
	if hit := e.HitTest(geom.Pt(90, 0)); hit.ElementID != "" {
		t.Errorf("expected miss along the unrotated axis, got %+v", hit)
	}
}

func TestWheelZoomScenario(t *testing.T) {
	e := newTestEngine(t)
	e.ZoomAt(geom.Pt(100, 100), 2)

	s := e.ViewState()
	if s.Zoom != 2 || !geom.ApproxEqual(s.Pan, geom.Pt(-100, -100), eps) {
		t.Errorf("expected zoom 2 pan (-100,-100), got %v %+v", s.Zoom, s.Pan)
	}

	e.Wheel(geom.Pt(0, 0), 120)
	if got := e.ViewState().Zoom; math.Abs(got-1.8) > eps {
		t.Errorf("expected zoom 1.8 after wheel out, got %v", got)
	}
}

func TestContextMenuHook(t *testing.T) {
	e := newTestEngine(t)
	note := mustAddNote(t, e, geom.Pt(0, 0), 100, 100)
	e.SetView(geom.Pt(100, 100), 1)

	var gotWorld geom.Point
	var gotID string
	e.SetHooks(Hooks{ContextMenu: func(world geom.Point, id string) {
		gotWorld, gotID = world, id
	}})

	ev := e.ContextMenu(geom.Pt(110, 120))
	if gotID != note.ID || !geom.ApproxEqual(gotWorld, geom.Pt(10, 20), eps) {
		t.Errorf("expected %s at (10,20), got %q at %+v", note.ID, gotID, gotWorld)
	}
	if ev.ElementID != note.ID {
		t.Errorf("expected event element %s, got %q", note.ID, ev.ElementID)
	}

	e.ContextMenu(geom.Pt(700, 500))
	if gotID != "" {
		t.Errorf("expected no element on empty space, got %q", gotID)
	}
}

func TestHooksObserveChanges(t *testing.T) {
	var selects, marquees, updates int
	var lastDelta *geom.Point
	e := NewEngine(Hooks{
		SelectElement: func(string, bool) { selects++ },
		MarqueeSelect: func([]string, bool) { marquees++ },
		UpdateElement: func(_ document.Element, d *geom.Point) {
			updates++
			lastDelta = d
		},
	})
	mustAddNote(t, e, geom.Pt(0, 0), 100, 100)

	drag(e, geom.Pt(0, 0), geom.Pt(8, 6), 4, Modifiers{})
	if selects != 1 || updates != 4 {
		t.Errorf("expected 1 select and 4 updates, got %d and %d", selects, updates)
	}
	if lastDelta == nil || !geom.ApproxEqual(*lastDelta, geom.Pt(8, 6), eps) {
		t.Errorf("expected total drag delta (8,6), got %v", lastDelta)
	}

	drag(e, geom.Pt(300, 300), geom.Pt(350, 350), 1, Modifiers{})
	if marquees != 1 {
		t.Errorf("expected 1 marquee select, got %d", marquees)
	}
}

func TestGroupPressDefersSelectHook(t *testing.T) {
	var selected []string
	e := NewEngine(Hooks{
		SelectElement: func(id string, _ bool) { selected = append(selected, id) },
	})
	e.Resize(800, 600)
	a := mustAddNote(t, e, geom.Pt(0, 0), 100, 100)
	mustAddNote(t, e, geom.Pt(300, 0), 100, 100)
	drag(e, geom.Pt(-100, -100), geom.Pt(400, 100), 4, Modifiers{})

	e.PointerDown(geom.Pt(0, 0), Modifiers{})
	if len(selected) != 0 {
		t.Fatalf("expected no select on pressing a group member, got %v", selected)
	}
	e.PointerUp(geom.Pt(0, 0))
	if !reflect.DeepEqual(selected, []string{a.ID}) {
		t.Fatalf("expected select of %s on release, got %v", a.ID, selected)
	}

	// Dragging the group never reports a select.
	selected = nil
	drag(e, geom.Pt(-100, -100), geom.Pt(400, 100), 4, Modifiers{})
	drag(e, geom.Pt(0, 0), geom.Pt(10, 10), 2, Modifiers{})
	if len(selected) != 0 {
		t.Fatalf("expected no select after a group drag, got %v", selected)
	}
}

func TestDeleteDropsSelection(t *testing.T) {
	e := newTestEngine(t)
	a := mustAddNote(t, e, geom.Pt(0, 0), 100, 100)
	b := mustAddNote(t, e, geom.Pt(300, 0), 100, 100)
	click(e, geom.Pt(0, 0), Modifiers{})
	click(e, geom.Pt(300, 0), Modifiers{Shift: true})

	if err := e.Delete(a.ID); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(e.Selected(), []string{b.ID}) {
		t.Errorf("expected only b selected, got %v", e.Selected())
	}
	if err := e.Delete(a.ID); !errors.Is(err, document.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if n := e.DeleteSelected(); n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}
	if e.Board().Len() != 0 || len(e.Selected()) != 0 {
		t.Errorf("expected empty board and selection, got %d and %v", e.Board().Len(), e.Selected())
	}
}

func TestGenerate(t *testing.T) {
	var handed []document.Element
	e := NewEngine(Hooks{Generate: func(els []document.Element) { handed = els }})

	if _, err := e.Generate(); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
	if handed != nil {
		t.Fatal("hook called on empty selection")
	}

	note, _ := e.AddNote(geom.Pt(0, 0), "a red kite", "")
	click(e, geom.Pt(0, 0), Modifiers{})
	els, err := e.Generate()
	if err != nil {
		t.Fatal(err)
	}
	if len(handed) != 1 || handed[0].ID != note.ID || handed[0].Note.Text != "a red kite" {
		t.Errorf("expected the note handed off, got %+v", handed)
	}
	if len(els) != 1 {
		t.Errorf("expected 1 element returned, got %d", len(els))
	}
}

func TestPlaceGenerated(t *testing.T) {
	e := newTestEngine(t)
	anchor := geom.Rect{X: -100, Y: -50, Width: 200, Height: 100}

	added, err := e.PlaceGenerated(anchor, Generated{
		Images: []GeneratedImage{{Source: "/assets/a.png", Width: 1024, Height: 512}},
		Text:   "caption",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(added))
	}

	img := added[0]
	if img.Kind != document.KindImage || img.Width != GeneratedMaxSide || img.Height != GeneratedMaxSide/2 {
		t.Errorf("unexpected image %+v", img)
	}
	wantX := 100 + GeneratedGap + GeneratedMaxSide/2
	if !geom.ApproxEqual(img.Position, geom.Pt(wantX, 0), eps) {
		t.Errorf("expected image at (%v,0), got %+v", wantX, img.Position)
	}
	if added[1].Kind != document.KindNote || added[1].Note.Text != "caption" {
		t.Errorf("expected caption note, got %+v", added[1])
	}
	if !reflect.DeepEqual(e.Selected(), sorted(added[0].ID, added[1].ID)) {
		t.Errorf("expected generated elements selected, got %v", e.Selected())
	}
}

func TestResetViewFunc(t *testing.T) {
	e := newTestEngine(t)
	e.SetView(geom.Pt(-40, 12), 3)

	reset := e.ResetViewFunc()
	reset()

	s := e.ViewState()
	if s.Zoom != 1 || !geom.ApproxEqual(s.Pan, geom.Pt(400, 300), eps) {
		t.Errorf("expected zoom 1 pan (400,300), got %v %+v", s.Zoom, s.Pan)
	}
	if !geom.ApproxEqual(e.ViewCenter(), geom.Pt(0, 0), eps) {
		t.Errorf("expected origin at the view centre, got %+v", e.ViewCenter())
	}
}

func TestFrame(t *testing.T) {
	e := newTestEngine(t)
	note := mustAddNote(t, e, geom.Pt(0, 0), 100, 100)
	arrow, _ := e.AddArrow(geom.Pt(200, 0), geom.Pt(300, 0), "")

	f := e.Frame()
	if len(f.Commands) != 2 || f.Commands[0].Op != "note" || f.Commands[1].Op != "arrow" {
		t.Fatalf("unexpected commands %+v", f.Commands)
	}
	if f.Bounds != nil || f.Affordance != nil {
		t.Error("expected no bounds without a selection")
	}
	if e.Dirty() {
		t.Error("expected frame to clear dirty")
	}

	click(e, geom.Pt(0, 0), Modifiers{})
	f = e.Frame()

	var handles int
	for _, c := range f.Commands {
		if c.Op == "handle" {
			handles++
			if c.ElementID != note.ID {
				t.Errorf("handle for unselected element %s", c.ElementID)
			}
		}
	}
	if handles != 2 {
		t.Errorf("expected 2 handles, got %d", handles)
	}
	if f.Bounds == nil || *f.Bounds != (geom.Rect{X: -50, Y: -50, Width: 100, Height: 100}) {
		t.Errorf("unexpected bounds %+v", f.Bounds)
	}
	if f.Affordance == nil || !geom.ApproxEqual(*f.Affordance, geom.Pt(62, 62), eps) {
		t.Errorf("unexpected affordance %+v", f.Affordance)
	}
	if f.Commands[len(f.Commands)-1].ElementID != arrow.ID {
		t.Error("expected arrow drawn last")
	}
}
