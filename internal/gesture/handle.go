package gesture

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tableplan/tableplan/internal/geometry"
)

const (
	// SelectionPadding inflates the selection box drawn around elements.
	SelectionPadding = 8
	// RotationHandleOffset places the rotation handle outside the
	// bottom-right corner of the padded selection box.
	RotationHandleOffset = 16
	// RotationCalibration maps the rotation handle rest position, on the
	// bottom-right diagonal, to 0 degrees.
	RotationCalibration = -45
	// RotateHandle is the name of the rotation handle.
	RotateHandle = "rotate"
)

// Vertical is the horizontal edge a handle moves.
type Vertical int8

const (
	VNone Vertical = iota
	VTop
	VBottom
)

// Horizontal is the vertical edge a handle moves.
type Horizontal int8

const (
	HNone Horizontal = iota
	HLeft
	HRight
)

// Handle is one resize control on the selection box.
type Handle struct {
	Name string
	V    Vertical
	H    Horizontal
}

var Handles = []Handle{
	{Name: "top-left", V: VTop, H: HLeft},
	{Name: "top", V: VTop},
	{Name: "top-right", V: VTop, H: HRight},
	{Name: "right", H: HRight},
	{Name: "bottom-right", V: VBottom, H: HRight},
	{Name: "bottom", V: VBottom},
	{Name: "bottom-left", V: VBottom, H: HLeft},
	{Name: "left", H: HLeft},
}

// HandleByName looks up a resize handle.
func HandleByName(name string) (Handle, bool) {
	for _, h := range Handles {
		if h.Name == name {
			return h, true
		}
	}
	return Handle{}, false
}

// HandlePoint is the canvas position of a named handle.
type HandlePoint struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// HandlePoints returns the eight resize handles and the rotation handle
// for the selection bounds, padded by SelectionPadding.
func HandlePoints(bounds geometry.Rect) []HandlePoint {
	box := bounds.Inflate(SelectionPadding)
	pts := make([]HandlePoint, 0, len(Handles)+1)
	for _, h := range Handles {
		x := box.X + box.Width/2
		switch h.H {
		case HLeft:
			x = box.X
		case HRight:
			x = box.Right()
		}
		y := box.Y + box.Height/2
		switch h.V {
		case VTop:
			y = box.Y
		case VBottom:
			y = box.Bottom()
		}
		pts = append(pts, HandlePoint{Name: h.Name, X: x, Y: y})
	}
	pts = append(pts, HandlePoint{
		Name: RotateHandle,
		X:    box.Right() + RotationHandleOffset,
		Y:    box.Bottom() + RotationHandleOffset,
	})
	return pts
}

// HitHandle returns the handle within radius of pt, if any.
func HitHandle(bounds geometry.Rect, pt r2.Vec, radius float64) (string, bool) {
	for _, hp := range HandlePoints(bounds) {
		if r2.Norm(r2.Sub(pt, r2.Vec{X: hp.X, Y: hp.Y})) <= radius {
			return hp.Name, true
		}
	}
	return "", false
}

// HandleAngle is the calibrated angle in degrees of pt around pivot.
func HandleAngle(pt, pivot r2.Vec) float64 {
	d := r2.Sub(pt, pivot)
	return geometry.Degrees(math.Atan2(d.Y, d.X)) + RotationCalibration
}
