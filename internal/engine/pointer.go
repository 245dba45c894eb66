package engine

import (
	"errors"

	"github.com/tableplan/tableplan/internal/gesture"
)

// HandleRadius is the screen-space pick radius of a selection handle.
const HandleRadius = 6

var (
	ErrInvalidPointer = errors.New("invalid pointer reading")
	ErrUnknownHandle  = errors.New("unknown handle")
)

// --- Selection ---

// ClickElement toggles id in the selection. Unknown ids are ignored.
func (e *Engine) ClickElement(id string) {
	if !e.store.Has(id) {
		return
	}
	e.selection.Toggle(id)
	e.dirty = true
}

// ClickCanvas clears the selection.
func (e *Engine) ClickCanvas() {
	e.selection.Clear()
	e.dirty = true
}

// SetSelection replaces the selection. Unknown ids are dropped.
func (e *Engine) SetSelection(ids []string) {
	e.selection.Set(ids...)
	e.selection.Retain(e.store.Has)
	e.dirty = true
}

// Click hit-tests a screen position: an element toggles, empty canvas
// clears. Handles are not clickable. It returns the element hit, if any.
func (e *Engine) Click(screenX, screenY float64) string {
	pt, ok := e.viewport.ToCanvas(screenX, screenY)
	if !ok {
		return ""
	}
	id := HitTest(e.scene(), pt)
	if id == "" {
		e.ClickCanvas()
		return ""
	}
	e.ClickElement(id)
	return id
}

// --- Viewport ---

// SetCanvasRect records the on-screen rectangle of the drawable surface.
func (e *Engine) SetCanvasRect(x, y, width, height float64) {
	e.viewport.OriginX = x
	e.viewport.OriginY = y
	e.viewport.Width = width
	e.viewport.Height = height
}

// SetScale sets the zoom, clamped to the allowed range, and returns it.
func (e *Engine) SetScale(s float64) float64 {
	e.viewport.Scale = gesture.ClampScale(s)
	return e.viewport.Scale
}

// --- Pointer ---

// HitTest reports what lies under a screen position: a selection handle
// takes precedence over elements.
func (e *Engine) HitTest(screenX, screenY float64) Hit {
	pt, ok := e.viewport.ToCanvas(screenX, screenY)
	if !ok {
		return Hit{}
	}
	sg := e.scene()
	if bounds, ok := GetSelectionBounds(sg, e.Selection()); ok {
		radius := HandleRadius / e.viewport.Scale
		if name, ok := gesture.HitHandle(bounds, pt, radius); ok {
			return Hit{Handle: name}
		}
	}
	return Hit{ElementID: HitTest(sg, pt)}
}

// PointerDown starts a gesture. handle names a resize handle or the
// rotation handle; with no handle, target is the element pressed and the
// gesture is a drag. When both are empty the position is hit-tested.
// Dragging an unselected element selects it alone first.
func (e *Engine) PointerDown(target, handle string, screenX, screenY float64) error {
	if e.gesture.Active() {
		return gesture.ErrGestureActive
	}
	pt, ok := e.viewport.ToCanvas(screenX, screenY)
	if !ok {
		return ErrInvalidPointer
	}

	if target == "" && handle == "" {
		hit := e.HitTest(screenX, screenY)
		target, handle = hit.ElementID, hit.Handle
	}

	switch {
	case handle == gesture.RotateHandle:
		return e.gesture.Begin(gesture.Rotating, gesture.Handle{}, e.Selection(), pt)

	case handle != "":
		h, ok := gesture.HandleByName(handle)
		if !ok {
			return ErrUnknownHandle
		}
		return e.gesture.Begin(gesture.Resizing, h, e.Selection(), pt)

	case target != "":
		if !e.store.Has(target) {
			return gesture.ErrNothingSelected
		}
		if !e.selection.IsSelected(target) {
			e.selection.Set(target)
			e.dirty = true
		}
		return e.gesture.Begin(gesture.Dragging, gesture.Handle{}, e.Selection(), pt)
	}

	return gesture.ErrNothingSelected
}

// PointerMove previews the active gesture. Invalid readings are ignored.
func (e *Engine) PointerMove(screenX, screenY float64) bool {
	pt, ok := e.viewport.ToCanvas(screenX, screenY)
	if !ok {
		return false
	}
	return e.gesture.Move(pt)
}

// PointerUp commits the active gesture. An invalid reading commits the
// last accepted move.
func (e *Engine) PointerUp(screenX, screenY float64) {
	pt, ok := e.viewport.ToCanvas(screenX, screenY)
	e.gesture.End(pt, ok)
}

// CancelGesture abandons the active gesture and drops its previews.
func (e *Engine) CancelGesture() {
	e.gesture.Cancel()
}

