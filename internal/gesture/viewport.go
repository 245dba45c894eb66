// Package gesture converts pointer input into canvas space and drives the
// drag, resize and rotate state machine.
package gesture

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	MinScale = 0.2
	MaxScale = 1.75
)

// Viewport is the on-screen placement and zoom of the drawable surface.
// Origin and size are in screen pixels.
type Viewport struct {
	OriginX float64 `json:"originX"`
	OriginY float64 `json:"originY"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Scale   float64 `json:"scale"`
}

func DefaultViewport() Viewport {
	return Viewport{Scale: 1}
}

// ClampScale limits s to [MinScale, MaxScale]. Non-finite input yields 1.
func ClampScale(s float64) float64 {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 1
	}
	return math.Max(MinScale, math.Min(MaxScale, s))
}

func (v Viewport) scale() float64 {
	if v.Scale <= 0 || math.IsNaN(v.Scale) || math.IsInf(v.Scale, 0) {
		return 1
	}
	return v.Scale
}

// ToCanvas maps a screen position to canvas space. It reports false for
// readings that must be ignored: non-finite values and the exact (0, 0)
// some platforms emit when a native drag ends.
func (v Viewport) ToCanvas(screenX, screenY float64) (r2.Vec, bool) {
	if !finite(screenX) || !finite(screenY) {
		return r2.Vec{}, false
	}
	if screenX == 0 && screenY == 0 {
		return r2.Vec{}, false
	}
	s := v.scale()
	return r2.Vec{X: (screenX - v.OriginX) / s, Y: (screenY - v.OriginY) / s}, true
}

// ToScreen is the inverse of ToCanvas.
func (v Viewport) ToScreen(p r2.Vec) (float64, float64) {
	s := v.scale()
	return p.X*s + v.OriginX, p.Y*s + v.OriginY
}

// VisibleCenter returns the canvas point at the middle of the surface, or
// the canvas origin when the surface size is unknown.
func (v Viewport) VisibleCenter() r2.Vec {
	if v.Width <= 0 || v.Height <= 0 {
		return r2.Vec{}
	}
	s := v.scale()
	return r2.Vec{X: v.Width / 2 / s, Y: v.Height / 2 / s}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
