package engine

import (
	"github.com/tableplan/tableplan/internal/arrange"
	"github.com/tableplan/tableplan/internal/document"
	"github.com/tableplan/tableplan/internal/geometry"
	"github.com/tableplan/tableplan/internal/store"
	"github.com/tableplan/tableplan/internal/svgio"
)

// ToolbarState is the set of flags the toolbar uses to enable controls.
type ToolbarState struct {
	HasSelection      bool `json:"hasSelection"`
	HasMultiSelection bool `json:"hasMultiSelection"`
	IsGridVisible     bool `json:"isGridVisible"`
}

func (e *Engine) HasSelection() bool      { return len(e.Selection()) > 0 }
func (e *Engine) HasMultiSelection() bool { return len(e.Selection()) > 1 }
func (e *Engine) IsGridVisible() bool     { return e.gridVisible }

func (e *Engine) ToolbarState() ToolbarState {
	n := len(e.Selection())
	return ToolbarState{
		HasSelection:      n > 0,
		HasMultiSelection: n > 1,
		IsGridVisible:     e.gridVisible,
	}
}

// AddElement inserts a default-sized table centred in the visible canvas,
// or at the canvas origin when the surface size is unknown.
func (e *Engine) AddElement() document.Element {
	w, h := e.opts.ElementWidth, e.opts.ElementHeight
	x, y := 0.0, 0.0
	if c := e.viewport.VisibleCenter(); c.X != 0 || c.Y != 0 {
		x, y = c.X-w/2, c.Y-h/2
	}

	el := e.store.Create(document.Element{
		Pax:      e.opts.ElementPax,
		Geometry: document.NewGeometry(geometry.RectPath(x, y, w, h)),
	})
	e.store.AddMany([]document.Element{el})
	return el
}

// AddShapes inserts imported outlines as new tables and returns their ids.
func (e *Engine) AddShapes(shapes []svgio.Shape) []string {
	batch := make([]document.Element, 0, len(shapes))
	for _, sh := range shapes {
		if sh.Path.IsEmpty() {
			continue
		}
		el := e.store.Create(document.Element{
			Pax:      e.opts.ElementPax,
			Geometry: document.NewGeometry(sh.Path),
		})
		if sh.Label != "" {
			el.Label = sh.Label
		}
		if sh.Pax != nil {
			el.Pax = *sh.Pax
		}
		batch = append(batch, el)
	}
	e.store.AddMany(batch)

	ids := make([]string, len(batch))
	for i, el := range batch {
		ids[i] = el.ID
	}
	return ids
}

// DuplicateSelection copies the selected elements and selects the copies.
func (e *Engine) DuplicateSelection() []string {
	e.settle()
	copies := e.store.Duplicate(e.Selection())
	if len(copies) == 0 {
		return nil
	}
	ids := make([]string, len(copies))
	for i, c := range copies {
		ids[i] = c.ID
	}
	e.selection.Set(ids...)
	e.dirty = true
	return ids
}

// ToggleGrid flips grid visibility and returns the new state.
func (e *Engine) ToggleGrid() bool {
	e.gridVisible = !e.gridVisible
	return e.gridVisible
}

// SnapToGrid moves every selected element onto the grid and returns the
// number of elements committed.
func (e *Engine) SnapToGrid() int {
	e.settle()
	return e.apply(arrange.Snap(e.selectedItems(), e.opts.GridPitch))
}

// Align lines up the selected elements. Fewer than two is a no-op.
func (e *Engine) Align(mode arrange.Mode) error {
	e.settle()
	moves, err := arrange.Align(e.selectedItems(), mode)
	if err != nil {
		return err
	}
	e.apply(moves)
	return nil
}

// Distribute spaces the selected elements evenly along axis.
func (e *Engine) Distribute(axis arrange.Axis) error {
	e.settle()
	moves, err := arrange.Distribute(e.selectedItems(), axis)
	if err != nil {
		return err
	}
	e.apply(moves)
	return nil
}

// settle cancels a gesture in progress. Toolbar commits would otherwise be
// overwritten by the gesture's own commit on pointer up.
func (e *Engine) settle() {
	if e.gesture.Active() {
		e.gesture.Cancel()
	}
}

func (e *Engine) selectedItems() []arrange.Item {
	var items []arrange.Item
	for _, id := range e.Selection() {
		if el, ok := e.store.Get(id); ok {
			items = append(items, arrange.Item{ID: id, Box: el.BBox()})
		}
	}
	return items
}

// apply commits each move as a translation of the element's current path.
func (e *Engine) apply(moves []arrange.Move) int {
	n := 0
	for _, m := range moves {
		el, ok := e.store.Get(m.ID)
		if !ok {
			continue
		}
		res := geometry.Translate(el.Path(), m.DX, m.DY)
		if e.store.Commit(m.ID, res.Path) {
			n++
		}
	}
	return n
}

// --- Sidebar ---

// SelectedElements returns the selected elements in selection order.
func (e *Engine) SelectedElements() []document.Element {
	var out []document.Element
	for _, id := range e.Selection() {
		if el, ok := e.store.Get(id); ok {
			out = append(out, el)
		}
	}
	return out
}

func (e *Engine) SetLabel(id, label string) bool {
	return e.store.Patch(id, store.Patch{Label: &label})
}

func (e *Engine) SetPax(id string, pax int) bool {
	return e.store.Patch(id, store.Patch{Pax: &pax})
}
