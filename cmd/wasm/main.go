//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/engine"
	"github.com/museboard/museboard/internal/geom"
)

var eng *engine.Engine

// callbacks holds the JS functions registered with setCallbacks.
var callbacks js.Value

func main() {
	callbacks = js.Undefined()
	eng = engine.NewEngine(engine.Hooks{
		SelectElement: func(string, bool) { notify("onSelection", eng.Selected()) },
		MarqueeSelect: func([]string, bool) { notify("onSelection", eng.Selected()) },
		UpdateElement: func(el document.Element, _ *geom.Point) { notify("onUpdate", el) },
		ContextMenu: func(world geom.Point, id string) {
			notify("onContextMenu", map[string]any{"world": world, "elementId": id})
		},
		Generate: func(els []document.Element) { notify("onGenerate", els) },
	})

	// Create the engine API object
	museboard := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	museboard.Set("setCallbacks", js.FuncOf(setCallbacks))
	museboard.Set("loadBoard", js.FuncOf(loadBoard))
	museboard.Set("loadSampleBoard", js.FuncOf(loadSampleBoard))
	museboard.Set("resize", js.FuncOf(resize))
	museboard.Set("resetView", js.FuncOf(func(js.Value, []js.Value) interface{} {
		eng.ResetView()
		return nil
	}))
	museboard.Set("setView", js.FuncOf(setView))
	museboard.Set("pointerDown", js.FuncOf(pointerDown))
	museboard.Set("pointerMove", js.FuncOf(pointerMove))
	museboard.Set("pointerUp", js.FuncOf(pointerUp))
	museboard.Set("pointerLeave", js.FuncOf(func(js.Value, []js.Value) interface{} {
		eng.PointerLeave()
		return nil
	}))
	museboard.Set("blur", js.FuncOf(func(js.Value, []js.Value) interface{} {
		eng.Blur()
		return nil
	}))
	museboard.Set("wheel", js.FuncOf(wheel))
	museboard.Set("contextMenu", js.FuncOf(contextMenu))
	museboard.Set("addNote", js.FuncOf(addNote))
	museboard.Set("addImage", js.FuncOf(addImage))
	museboard.Set("addArrow", js.FuncOf(addArrow))
	museboard.Set("deleteElement", js.FuncOf(deleteElement))
	museboard.Set("deleteSelected", js.FuncOf(func(js.Value, []js.Value) interface{} {
		return js.ValueOf(eng.DeleteSelected())
	}))
	museboard.Set("setText", js.FuncOf(setText))
	museboard.Set("setColor", js.FuncOf(setColor))
	museboard.Set("bringToFront", js.FuncOf(bringToFront))
	museboard.Set("sendToBack", js.FuncOf(sendToBack))
	museboard.Set("generate", js.FuncOf(generate))
	museboard.Set("placeGenerated", js.FuncOf(placeGenerated))

	// --- Queries (frontend ← engine) ---
	museboard.Set("frame", js.FuncOf(func(js.Value, []js.Value) interface{} {
		return js.ValueOf(eng.FrameJSON())
	}))
	museboard.Set("isDirty", js.FuncOf(func(js.Value, []js.Value) interface{} {
		return js.ValueOf(eng.Dirty())
	}))
	museboard.Set("hitTest", js.FuncOf(hitTest))
	museboard.Set("getBoard", js.FuncOf(func(js.Value, []js.Value) interface{} {
		return js.ValueOf(toJSON(eng.Board()))
	}))
	museboard.Set("getSelection", js.FuncOf(func(js.Value, []js.Value) interface{} {
		return js.ValueOf(toJSON(eng.Selected()))
	}))

	// The toolbar registers this as its "reset view" control.
	museboard.Set("resetViewCallback", js.FuncOf(func(js.Value, []js.Value) interface{} {
		eng.ResetViewFunc()()
		return nil
	}))

	// Register on global scope
	js.Global().Set("museboard", museboard)

	// Signal that WASM is ready
	js.Global().Set("museboardWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func notify(name string, payload any) {
	if callbacks.Type() != js.TypeObject {
		return
	}
	fn := callbacks.Get(name)
	if fn.Type() != js.TypeFunction {
		return
	}
	fn.Invoke(toJSON(payload))
}

func toJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

func result(err error) interface{} {
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func missing(what string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": "missing " + what})
}

func point(args []js.Value, i int) geom.Point {
	return geom.Pt(args[i].Float(), args[i+1].Float())
}

func optString(args []js.Value, i int) string {
	if len(args) > i && args[i].Type() == js.TypeString {
		return args[i].String()
	}
	return ""
}

// --- Command Handlers ---

func setCallbacks(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		callbacks = js.Undefined()
		return nil
	}
	callbacks = args[0]
	return nil
}

func loadBoard(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("board JSON")
	}
	return result(eng.LoadBoardJSON([]byte(args[0].String())))
}

func loadSampleBoard(this js.Value, args []js.Value) interface{} {
	eng.LoadSampleBoard(optString(args, 0))
	return result(nil)
}

func resize(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.Resize(args[0].Float(), args[1].Float())
	return nil
}

func setView(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	eng.SetView(point(args, 0), args[2].Float())
	return nil
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	var mods engine.Modifiers
	if len(args) > 2 {
		mods.Shift = args[2].Truthy()
	}
	if len(args) > 3 {
		mods.Pan = args[3].Truthy()
	}
	eng.PointerDown(point(args, 0), mods)
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.PointerMove(point(args, 0))
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.PointerUp(point(args, 0))
	return nil
}

func wheel(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	eng.Wheel(point(args, 0), args[2].Float())
	return nil
}

func contextMenu(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("{}")
	}
	return js.ValueOf(toJSON(eng.ContextMenu(point(args, 0))))
}

func added(el document.Element, err error) interface{} {
	if err != nil {
		return result(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "id": el.ID})
}

func addNote(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("position")
	}
	return added(eng.AddNote(point(args, 0), optString(args, 2), optString(args, 3)))
}

func addImage(this js.Value, args []js.Value) interface{} {
	if len(args) < 5 {
		return missing("position, size or source")
	}
	return added(eng.AddImage(point(args, 0), args[2].Float(), args[3].Float(), args[4].String()))
}

func addArrow(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return missing("endpoints")
	}
	return added(eng.AddArrow(point(args, 0), point(args, 2), optString(args, 4)))
}

func deleteElement(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("element id")
	}
	return result(eng.Delete(args[0].String()))
}

func setText(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("element id or text")
	}
	return result(eng.SetText(args[0].String(), args[1].String()))
}

func setColor(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("element id or color")
	}
	return result(eng.SetColor(args[0].String(), args[1].String()))
}

func bringToFront(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("element id")
	}
	return result(eng.BringToFront(args[0].String()))
}

func sendToBack(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("element id")
	}
	return result(eng.SendToBack(args[0].String()))
}

// generate triggers the onGenerate callback with the selection. The caller
// runs the model and hands the output to placeGenerated.
func generate(this js.Value, args []js.Value) interface{} {
	_, err := eng.Generate()
	return result(err)
}

type placeRequest struct {
	Anchor *geom.Rect       `json:"anchor,omitempty"`
	Output engine.Generated `json:"output"`
}

// placeGenerated takes {"anchor": rect, "output": {"images": [...], "text": ""}}.
// Without an anchor the current selection bounds are used.
func placeGenerated(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("generated output JSON")
	}
	var req placeRequest
	if err := json.Unmarshal([]byte(args[0].String()), &req); err != nil {
		return result(err)
	}

	anchor, ok := eng.SelectionBounds()
	if req.Anchor != nil {
		anchor, ok = *req.Anchor, true
	}
	if !ok {
		return result(engine.ErrEmptySelection)
	}

	els, err := eng.PlaceGenerated(anchor, req.Output)
	if err != nil {
		return result(err)
	}
	ids := make([]interface{}, len(els))
	for i, el := range els {
		ids[i] = el.ID
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "ids": ids})
}

// --- Query Handlers ---

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("{}")
	}
	return js.ValueOf(toJSON(eng.HitTest(point(args, 0))))
}
