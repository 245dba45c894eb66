//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/tableplan/tableplan/internal/arrange"
	"github.com/tableplan/tableplan/internal/engine"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(engine.DefaultOptions())

	// Create the engine API object
	tableplanEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	tableplanEngine.Set("loadDocument", js.FuncOf(loadDocument))
	tableplanEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	tableplanEngine.Set("setCanvasRect", js.FuncOf(setCanvasRect))
	tableplanEngine.Set("setScale", js.FuncOf(setScale))
	tableplanEngine.Set("addElement", js.FuncOf(addElement))
	tableplanEngine.Set("duplicateSelection", js.FuncOf(duplicateSelection))
	tableplanEngine.Set("toggleGrid", js.FuncOf(toggleGrid))
	tableplanEngine.Set("snapToGrid", js.FuncOf(snapToGrid))
	tableplanEngine.Set("align", js.FuncOf(align))
	tableplanEngine.Set("distribute", js.FuncOf(distribute))
	tableplanEngine.Set("click", js.FuncOf(click))
	tableplanEngine.Set("clickElement", js.FuncOf(clickElement))
	tableplanEngine.Set("clickCanvas", js.FuncOf(clickCanvas))
	tableplanEngine.Set("setSelection", js.FuncOf(setSelection))
	tableplanEngine.Set("pointerDown", js.FuncOf(pointerDown))
	tableplanEngine.Set("pointerMove", js.FuncOf(pointerMove))
	tableplanEngine.Set("pointerUp", js.FuncOf(pointerUp))
	tableplanEngine.Set("cancelGesture", js.FuncOf(cancelGesture))
	tableplanEngine.Set("setLabel", js.FuncOf(setLabel))
	tableplanEngine.Set("setPax", js.FuncOf(setPax))

	// --- Queries (frontend ← backend) ---
	tableplanEngine.Set("render", js.FuncOf(render))
	tableplanEngine.Set("hitTest", js.FuncOf(hitTest))
	tableplanEngine.Set("getDocument", js.FuncOf(getDocument))
	tableplanEngine.Set("getSelection", js.FuncOf(getSelection))
	tableplanEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	tableplanEngine.Set("getToolbarState", js.FuncOf(getToolbarState))
	tableplanEngine.Set("getSelectedElements", js.FuncOf(getSelectedElements))

	// Register on global scope
	js.Global().Set("tableplanEngine", tableplanEngine)

	// Signal that WASM is ready
	js.Global().Set("tableplanWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func ok() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func fail(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

// toJSON returns v as a JSON string, or "null" if it cannot be encoded.
func toJSON(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return js.ValueOf("null")
	}
	return js.ValueOf(string(data))
}

func floats(args []js.Value, n int) ([]float64, bool) {
	if len(args) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i := range out {
		if args[i].Type() != js.TypeNumber {
			return nil, false
		}
		out[i] = args[i].Float()
	}
	return out, true
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing document JSON")
	}

	if err := eng.ImportJSON([]byte(args[0].String())); err != nil {
		return fail(err.Error())
	}

	return ok()
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	eng.LoadSample()
	return ok()
}

func setCanvasRect(this js.Value, args []js.Value) interface{} {
	v, valid := floats(args, 4)
	if !valid {
		return fail("setCanvasRect needs x, y, width, height")
	}
	eng.SetCanvasRect(v[0], v[1], v[2], v[3])
	return ok()
}

func setScale(this js.Value, args []js.Value) interface{} {
	v, valid := floats(args, 1)
	if !valid {
		return js.ValueOf(eng.Viewport().Scale)
	}
	return js.ValueOf(eng.SetScale(v[0]))
}

func addElement(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.AddElement())
}

func duplicateSelection(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.DuplicateSelection())
}

func toggleGrid(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.ToggleGrid())
}

func snapToGrid(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.SnapToGrid())
}

func align(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing mode")
	}
	if err := eng.Align(arrange.Mode(args[0].String())); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func distribute(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing axis")
	}
	if err := eng.Distribute(arrange.Axis(args[0].String())); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func click(this js.Value, args []js.Value) interface{} {
	v, valid := floats(args, 2)
	if !valid {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.Click(v[0], v[1]))
}

func clickElement(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.ClickElement(args[0].String())
	return nil
}

func clickCanvas(this js.Value, args []js.Value) interface{} {
	eng.ClickCanvas()
	return nil
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		eng.SetSelection(nil)
		return nil
	}

	arr := args[0]
	if arr.Type() != js.TypeObject {
		eng.SetSelection(nil)
		return nil
	}

	length := arr.Length()
	ids := make([]string, length)
	for i := 0; i < length; i++ {
		ids[i] = arr.Index(i).String()
	}
	eng.SetSelection(ids)
	return nil
}

// pointerDown(target, handle, x, y); target and handle may be empty to
// hit-test the position.
func pointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return fail("pointerDown needs target, handle, x, y")
	}
	str := func(v js.Value) string {
		if v.Type() != js.TypeString {
			return ""
		}
		return v.String()
	}
	v, valid := floats(args[2:], 2)
	if !valid {
		return fail("pointerDown needs numeric x, y")
	}
	if err := eng.PointerDown(str(args[0]), str(args[1]), v[0], v[1]); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	v, valid := floats(args, 2)
	if !valid {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.PointerMove(v[0], v[1]))
}

// pointerUp without numeric coordinates commits the last accepted move.
func pointerUp(this js.Value, args []js.Value) interface{} {
	v, valid := floats(args, 2)
	if !valid {
		v = []float64{0, 0}
	}
	eng.PointerUp(v[0], v[1])
	return nil
}

func cancelGesture(this js.Value, args []js.Value) interface{} {
	eng.CancelGesture()
	return nil
}

func setLabel(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.SetLabel(args[0].String(), args[1].String()))
}

func setPax(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || args[1].Type() != js.TypeNumber {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.SetPax(args[0].String(), args[1].Int()))
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.RenderJSON())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	v, valid := floats(args, 2)
	if !valid {
		return toJSON(engine.Hit{})
	}
	return toJSON(eng.HitTest(v[0], v[1]))
}

func getDocument(this js.Value, args []js.Value) interface{} {
	data, err := eng.ExportJSON()
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.Selection())
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	bounds, found := eng.SelectionBounds()
	if !found {
		return js.ValueOf("null")
	}
	return js.ValueOf(engine.RectToJSON(bounds))
}

func getToolbarState(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.ToolbarState())
}

func getSelectedElements(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.SelectedElements())
}
