package gesture

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tableplan/tableplan/internal/document"
	"github.com/tableplan/tableplan/internal/geometry"
	"github.com/tableplan/tableplan/internal/store"
)

func TestViewportConversion(t *testing.T) {
	v := Viewport{OriginX: 100, OriginY: 50, Width: 800, Height: 600, Scale: 2}

	p, ok := v.ToCanvas(300, 150)
	require.True(t, ok)
	assert.Equal(t, r2.Vec{X: 100, Y: 50}, p)

	sx, sy := v.ToScreen(p)
	assert.Equal(t, 300.0, sx)
	assert.Equal(t, 150.0, sy)

	_, ok = v.ToCanvas(0, 0)
	assert.False(t, ok, "the drag-end (0,0) reading is ignored")
	_, ok = v.ToCanvas(math.NaN(), 10)
	assert.False(t, ok)
	_, ok = v.ToCanvas(10, math.Inf(1))
	assert.False(t, ok)

	// One zero axis is a legitimate reading.
	p, ok = v.ToCanvas(0, 150)
	require.True(t, ok)
	assert.Equal(t, r2.Vec{X: -50, Y: 50}, p)

	assert.Equal(t, r2.Vec{X: 200, Y: 150}, v.VisibleCenter())
	assert.Equal(t, r2.Vec{}, DefaultViewport().VisibleCenter())
}

func TestClampScale(t *testing.T) {
	assert.Equal(t, 0.2, ClampScale(0.1))
	assert.Equal(t, 1.75, ClampScale(3))
	assert.Equal(t, 1.25, ClampScale(1.25))
	assert.Equal(t, 1.0, ClampScale(math.NaN()))
}

func TestHandlePoints(t *testing.T) {
	pts := HandlePoints(geometry.Rect{Width: 100, Height: 100})
	require.Len(t, pts, 9)

	byName := map[string]HandlePoint{}
	for _, p := range pts {
		byName[p.Name] = p
	}
	assert.Equal(t, HandlePoint{Name: "top-left", X: -8, Y: -8}, byName["top-left"])
	assert.Equal(t, HandlePoint{Name: "right", X: 108, Y: 50}, byName["right"])
	assert.Equal(t, HandlePoint{Name: "bottom-right", X: 108, Y: 108}, byName["bottom-right"])
	assert.Equal(t, HandlePoint{Name: RotateHandle, X: 124, Y: 124}, byName[RotateHandle])

	name, ok := HitHandle(geometry.Rect{Width: 100, Height: 100}, r2.Vec{X: 50, Y: -6}, 4)
	assert.True(t, ok)
	assert.Equal(t, "top", name)
	_, ok = HitHandle(geometry.Rect{Width: 100, Height: 100}, r2.Vec{X: 50, Y: 50}, 4)
	assert.False(t, ok)
}

func TestHandleAngleCalibration(t *testing.T) {
	pivot := r2.Vec{X: 50, Y: 50}
	assert.InDelta(t, 0, HandleAngle(r2.Vec{X: 60, Y: 60}, pivot), 1e-9, "rest position is 0")
	assert.InDelta(t, 45, HandleAngle(r2.Vec{X: 50, Y: 60}, pivot), 1e-9)
	assert.InDelta(t, -45, HandleAngle(r2.Vec{X: 60, Y: 50}, pivot), 1e-9)
}

const square = "M 0 0 L 100 0 L 100 100 L 0 100 Z"

func setup(t *testing.T, paths ...string) (*store.Store, *Controller, []string) {
	t.Helper()
	s := store.New(store.WithIDGenerator(&store.Sequence{Prefix: "t"}))
	var ids []string
	for _, p := range paths {
		el := s.Create(document.Element{Geometry: document.NewGeometry(geometry.MustParse(p))})
		s.AddMany([]document.Element{el})
		ids = append(ids, el.ID)
	}
	return s, NewController(s), ids
}

func get(t *testing.T, s *store.Store, id string) document.Element {
	t.Helper()
	el, ok := s.Get(id)
	require.True(t, ok)
	return el
}

func TestDragUsesAbsoluteDelta(t *testing.T) {
	s, c, ids := setup(t, square, "M 200 0 L 300 0 L 300 100 L 200 100 Z")

	require.NoError(t, c.Begin(Dragging, Handle{}, ids, r2.Vec{X: 50, Y: 50}))
	assert.Equal(t, Dragging, c.Kind())

	require.True(t, c.Move(r2.Vec{X: 60, Y: 50}))
	require.True(t, c.Move(r2.Vec{X: 70, Y: 55}))

	a := get(t, s, ids[0])
	assert.Equal(t, 20.0, a.BBox().X, "second move is measured from the start, not accumulated")
	assert.Equal(t, 5.0, a.BBox().Y)
	assert.Equal(t, 0.0, a.Geometry.Committed.BBox.X, "moves only preview")

	// Pointer-up delivered the transient (0,0) reading.
	c.End(r2.Vec{}, false)
	assert.Equal(t, Idle, c.Kind())

	a = get(t, s, ids[0])
	b := get(t, s, ids[1])
	assert.False(t, a.Geometry.HasPreview())
	assert.Equal(t, geometry.Rect{X: 20, Y: 5, Width: 100, Height: 100}, a.Geometry.Committed.BBox)
	assert.Equal(t, geometry.Rect{X: 220, Y: 5, Width: 100, Height: 100}, b.Geometry.Committed.BBox)
}

func TestEndCommitsPointerUpPosition(t *testing.T) {
	s, c, ids := setup(t, square)

	require.NoError(t, c.Begin(Dragging, Handle{}, ids, r2.Vec{X: 10, Y: 10}))
	c.Move(r2.Vec{X: 20, Y: 10})
	c.End(r2.Vec{X: 40, Y: 30}, true)

	assert.Equal(t, geometry.Rect{X: 30, Y: 20, Width: 100, Height: 100}, get(t, s, ids[0]).Geometry.Committed.BBox)
}

func TestEndWithoutMoveClearsPreview(t *testing.T) {
	s, c, ids := setup(t, square)

	require.NoError(t, c.Begin(Dragging, Handle{}, ids, r2.Vec{X: 10, Y: 10}))
	c.End(r2.Vec{}, false)

	el := get(t, s, ids[0])
	assert.False(t, el.Geometry.HasPreview())
	assert.Equal(t, square, el.Geometry.Committed.Path.String())
}

func TestCancelDropsPreview(t *testing.T) {
	s, c, ids := setup(t, square)

	require.NoError(t, c.Begin(Dragging, Handle{}, ids, r2.Vec{X: 10, Y: 10}))
	c.Move(r2.Vec{X: 50, Y: 50})
	require.True(t, get(t, s, ids[0]).Geometry.HasPreview())

	c.Cancel()
	assert.False(t, c.Active())
	el := get(t, s, ids[0])
	assert.False(t, el.Geometry.HasPreview())
	assert.Equal(t, square, el.Geometry.Committed.Path.String())
}

func TestBeginErrors(t *testing.T) {
	_, c, ids := setup(t, square)

	assert.ErrorIs(t, c.Begin(Dragging, Handle{}, []string{"gone"}, r2.Vec{}), ErrNothingSelected)
	assert.ErrorIs(t, c.Begin(Dragging, Handle{}, nil, r2.Vec{}), ErrNothingSelected)
	assert.ErrorIs(t, c.Begin(Idle, Handle{}, ids, r2.Vec{}), ErrUnknownGesture)

	require.NoError(t, c.Begin(Dragging, Handle{}, ids, r2.Vec{X: 1, Y: 1}))
	assert.ErrorIs(t, c.Begin(Rotating, Handle{}, ids, r2.Vec{X: 1, Y: 1}), ErrGestureActive)

	assert.False(t, (&Controller{}).Move(r2.Vec{X: 1, Y: 1}), "idle controller ignores moves")
}

func TestResizeCorner(t *testing.T) {
	s, c, ids := setup(t, square)
	h, _ := HandleByName("bottom-right")

	require.NoError(t, c.Begin(Resizing, h, ids, r2.Vec{X: 108, Y: 108}))
	require.True(t, c.Move(r2.Vec{X: 158, Y: 58}))
	c.End(r2.Vec{X: 158, Y: 58}, true)

	el := get(t, s, ids[0])
	assert.Equal(t, "M 0 0 L 150 0 L 150 50 L 0 50 Z", el.Geometry.Committed.Path.String())
}

func TestResizeEdgesKeepOppositeFixed(t *testing.T) {
	cases := []struct {
		handle string
		from   r2.Vec
		to     r2.Vec
		want   geometry.Rect
	}{
		{handle: "left", from: r2.Vec{X: -8, Y: 50}, to: r2.Vec{X: -58, Y: 90}, want: geometry.Rect{X: -50, Width: 150, Height: 100}},
		{handle: "top", from: r2.Vec{X: 50, Y: -8}, to: r2.Vec{X: 0, Y: 42}, want: geometry.Rect{Y: 50, Width: 100, Height: 50}},
		{handle: "top-left", from: r2.Vec{X: -8, Y: -8}, to: r2.Vec{X: 42, Y: -58}, want: geometry.Rect{X: 50, Y: -50, Width: 50, Height: 150}},
	}
	for _, tc := range cases {
		s, c, ids := setup(t, square)
		h, ok := HandleByName(tc.handle)
		require.True(t, ok)

		require.NoError(t, c.Begin(Resizing, h, ids, tc.from))
		require.True(t, c.Move(tc.to), tc.handle)
		assert.Equal(t, tc.want, get(t, s, ids[0]).BBox(), tc.handle)
		c.End(tc.to, true)
		assert.Equal(t, tc.want, get(t, s, ids[0]).Geometry.Committed.BBox, tc.handle)
	}
}

func TestResizeRejectsFlip(t *testing.T) {
	s, c, ids := setup(t, square)
	h, _ := HandleByName("right")

	require.NoError(t, c.Begin(Resizing, h, ids, r2.Vec{X: 108, Y: 50}))
	require.True(t, c.Move(r2.Vec{X: 158, Y: 50}))

	// Crossing the fixed left edge would invert the shape.
	assert.False(t, c.Move(r2.Vec{X: -50, Y: 50}))
	assert.False(t, c.Move(r2.Vec{X: 8.5, Y: 50}))

	el := get(t, s, ids[0])
	assert.Equal(t, 150.0, el.BBox().Width, "previous preview stays")
	assert.Equal(t, 0.0, el.BBox().X)

	c.End(r2.Vec{X: -50, Y: 50}, true)
	assert.Equal(t, geometry.Rect{Width: 150, Height: 100}, get(t, s, ids[0]).Geometry.Committed.BBox)
}

func TestResizeMultiSelectionSharesFactors(t *testing.T) {
	s, c, ids := setup(t, "M 0 0 L 50 0 L 50 50 L 0 50 Z", "M 50 50 L 100 50 L 100 100 L 50 100 Z")
	h, _ := HandleByName("bottom-right")

	require.NoError(t, c.Begin(Resizing, h, ids, r2.Vec{X: 108, Y: 108}))
	c.End(r2.Vec{X: 208, Y: 208}, true)

	assert.Equal(t, geometry.Rect{Width: 100, Height: 100}, get(t, s, ids[0]).Geometry.Committed.BBox)
	assert.Equal(t, geometry.Rect{X: 100, Y: 100, Width: 100, Height: 100}, get(t, s, ids[1]).Geometry.Committed.BBox)
}

func TestRotate(t *testing.T) {
	s, c, ids := setup(t, square)

	// The pivot is the selection center (50, 50); (150, 150) is the rest
	// diagonal, so the gesture starts at 0 degrees.
	require.NoError(t, c.Begin(Rotating, Handle{}, ids, r2.Vec{X: 150, Y: 150}))
	assert.Equal(t, RotateHandle, c.State().Handle)

	require.True(t, c.Move(r2.Vec{X: -50, Y: 150}))
	assert.Equal(t, "M 100 0 L 100 100 L 0 100 L 0 0 Z", get(t, s, ids[0]).Path().String())

	c.End(r2.Vec{X: -50, Y: 150}, true)
	el := get(t, s, ids[0])
	assert.False(t, el.Geometry.HasPreview())
	assert.Equal(t, "M 100 0 L 100 100 L 0 100 L 0 0 Z", el.Geometry.Committed.Path.String())
}

func TestState(t *testing.T) {
	_, c, ids := setup(t, square)
	assert.Equal(t, State{Kind: "idle"}, c.State())

	h, _ := HandleByName("top")
	require.NoError(t, c.Begin(Resizing, h, ids, r2.Vec{X: 50, Y: -8}))
	st := c.State()
	assert.Equal(t, "resizing", st.Kind)
	assert.Equal(t, "top", st.Handle)
	assert.Equal(t, ids, st.IDs)
	require.NotNil(t, st.Box)
	assert.Equal(t, 100.0, st.Box.Width)
}
