package gesture

import (
	"errors"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tableplan/tableplan/internal/document"
	"github.com/tableplan/tableplan/internal/geometry"
)

// MinExtent is the smallest width or height a resize may produce.
const MinExtent = 1

var (
	ErrGestureActive   = errors.New("a gesture is already in progress")
	ErrNothingSelected = errors.New("no elements to transform")
	ErrUnknownGesture  = errors.New("unknown gesture")
)

// Kind is the controller state.
type Kind int

const (
	Idle Kind = iota
	Dragging
	Resizing
	Rotating
)

func (k Kind) String() string {
	switch k {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	case Rotating:
		return "rotating"
	default:
		return "idle"
	}
}

// Elements is the part of the element store the controller writes to.
type Elements interface {
	Get(id string) (document.Element, bool)
	Preview(id string, p geometry.Path) bool
	Commit(id string, p geometry.Path) bool
	ClearPreview(id string) bool
}

type start struct {
	id   string
	path geometry.Path
}

// Controller runs one pointer gesture at a time. Every move is computed
// from the gesture start, never from the previous move.
type Controller struct {
	elements Elements

	kind   Kind
	handle Handle
	origin r2.Vec
	box    geometry.Rect
	starts []start

	startAngle float64
	last       r2.Vec
	hasLast    bool
}

func NewController(elements Elements) *Controller {
	return &Controller{elements: elements}
}

// State describes the active gesture for clients.
type State struct {
	Kind   string         `json:"kind"`
	Handle string         `json:"handle,omitempty"`
	IDs    []string       `json:"ids,omitempty"`
	Box    *geometry.Rect `json:"box,omitempty"`
}

func (c *Controller) Kind() Kind   { return c.kind }
func (c *Controller) Active() bool { return c.kind != Idle }

func (c *Controller) State() State {
	st := State{Kind: c.kind.String()}
	if c.kind == Idle {
		return st
	}
	switch c.kind {
	case Resizing:
		st.Handle = c.handle.Name
	case Rotating:
		st.Handle = RotateHandle
	}
	for _, s := range c.starts {
		st.IDs = append(st.IDs, s.id)
	}
	box := c.box
	st.Box = &box
	return st
}

// Begin starts a gesture of kind on the elements in ids at canvas point at.
// handle is only used for Resizing. Unknown ids are skipped.
func (c *Controller) Begin(kind Kind, handle Handle, ids []string, at r2.Vec) error {
	if c.kind != Idle {
		return ErrGestureActive
	}
	if kind == Idle || kind > Rotating {
		return ErrUnknownGesture
	}

	var (
		starts []start
		boxes  []geometry.Rect
	)
	for _, id := range ids {
		el, ok := c.elements.Get(id)
		if !ok {
			continue
		}
		cur := el.Geometry.Current()
		starts = append(starts, start{id: id, path: cur.Path})
		boxes = append(boxes, cur.BBox)
	}
	box, ok := geometry.UnionAll(boxes)
	if !ok {
		return ErrNothingSelected
	}

	c.kind = kind
	c.handle = handle
	c.origin = at
	c.box = box
	c.starts = starts
	c.hasLast = false
	if kind == Rotating {
		c.startAngle = HandleAngle(at, box.Center())
	}

	slog.Debug("gesture: begin", "kind", kind.String(), "elements", len(starts))
	return nil
}

// Move previews the gesture at canvas point at. It reports false when
// there is no active gesture or the position is rejected.
func (c *Controller) Move(at r2.Vec) bool {
	if c.kind == Idle {
		return false
	}
	paths, ok := c.transform(at)
	if !ok {
		return false
	}
	for i, s := range c.starts {
		c.elements.Preview(s.id, paths[i])
	}
	c.last = at
	c.hasLast = true
	return true
}

// End commits the gesture and returns to Idle. When valid is false, or at
// is rejected, the last accepted move is committed instead. A gesture with
// no accepted position only clears previews.
func (c *Controller) End(at r2.Vec, valid bool) {
	if c.kind == Idle {
		return
	}

	var (
		paths []geometry.Path
		ok    bool
	)
	if valid {
		paths, ok = c.transform(at)
	}
	if !ok && c.hasLast {
		paths, ok = c.transform(c.last)
	}

	for i, s := range c.starts {
		if ok {
			c.elements.Commit(s.id, paths[i])
		} else {
			c.elements.ClearPreview(s.id)
		}
	}

	slog.Debug("gesture: end", "kind", c.kind.String(), "committed", ok)
	c.reset()
}

// Cancel drops every preview and returns to Idle.
func (c *Controller) Cancel() {
	for _, s := range c.starts {
		c.elements.ClearPreview(s.id)
	}
	c.reset()
}

// Reset abandons the active gesture without touching the elements. Used
// when the element collection has been replaced underneath it.
func (c *Controller) Reset() {
	c.reset()
}

func (c *Controller) reset() {
	c.kind = Idle
	c.handle = Handle{}
	c.starts = nil
	c.box = geometry.Rect{}
	c.hasLast = false
}

func (c *Controller) transform(at r2.Vec) ([]geometry.Path, bool) {
	d := r2.Sub(at, c.origin)
	out := make([]geometry.Path, len(c.starts))

	switch c.kind {
	case Dragging:
		for i, s := range c.starts {
			out[i] = geometry.Translate(s.path, d.X, d.Y).Path
		}

	case Resizing:
		sx, sy, anchor, ok := c.resizeFactors(d)
		if !ok {
			slog.Debug("gesture: resize rejected", "handle", c.handle.Name, "dx", d.X, "dy", d.Y)
			return nil, false
		}
		for i, s := range c.starts {
			res, err := geometry.Scale(s.path, sx, sy, anchor)
			if err != nil {
				return nil, false
			}
			out[i] = res.Path
		}

	case Rotating:
		pivot := c.box.Center()
		deg := HandleAngle(at, pivot) - c.startAngle
		for i, s := range c.starts {
			out[i] = geometry.Rotate(s.path, deg, pivot.X, pivot.Y).Path
		}

	default:
		return nil, false
	}
	return out, true
}

// resizeFactors moves the controlled edges of the start box by d and
// derives per-axis scale factors about the fixed opposite edges. It
// reports false when an extent would drop below MinExtent.
func (c *Controller) resizeFactors(d r2.Vec) (sx, sy float64, anchor r2.Vec, ok bool) {
	b := c.box
	left, right, top, bottom := b.X, b.Right(), b.Y, b.Bottom()
	anchor = r2.Vec{X: left, Y: top}
	sx, sy = 1, 1

	switch c.handle.H {
	case HLeft:
		left += d.X
		anchor.X = right
	case HRight:
		right += d.X
		anchor.X = left
	}
	switch c.handle.V {
	case VTop:
		top += d.Y
		anchor.Y = bottom
	case VBottom:
		bottom += d.Y
		anchor.Y = top
	}

	if c.handle.H != HNone {
		w := right - left
		if w < MinExtent {
			return 0, 0, anchor, false
		}
		if b.Width > 0 {
			sx = w / b.Width
		}
	}
	if c.handle.V != VNone {
		h := bottom - top
		if h < MinExtent {
			return 0, 0, anchor, false
		}
		if b.Height > 0 {
			sy = h / b.Height
		}
	}
	return sx, sy, anchor, true
}
