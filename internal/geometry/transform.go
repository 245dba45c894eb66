package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Result is a transformed path together with its recomputed bounding box.
type Result struct {
	Path Path
	BBox Rect
}

func result(p Path) Result {
	return Result{Path: p, BBox: Bounds(p)}
}

// Translate shifts every coordinate by (dx, dy).
func Translate(p Path, dx, dy float64) Result {
	d := r2.Vec{X: dx, Y: dy}
	return result(p.Map(func(v r2.Vec) r2.Vec {
		return r2.Add(v, d)
	}))
}

// Scale scales coordinates about anchor with independent factors per axis.
// Zero and non-finite factors are rejected; negative factors are accepted
// and mirror the path, so callers must guard against flips.
func Scale(p Path, sx, sy float64, anchor r2.Vec) (Result, error) {
	if !finite(sx) || !finite(sy) || sx == 0 || sy == 0 {
		return Result{}, fmt.Errorf("%w: sx=%v sy=%v", ErrInvalidFactors, sx, sy)
	}
	return Transform(p, ScaleAbout(sx, sy, anchor)), nil
}

// Rotate rotates the path by deg degrees around (cx, cy). Positive angles
// turn clockwise in a y-down canvas.
func Rotate(p Path, deg, cx, cy float64) Result {
	pivot := r2.Vec{X: cx, Y: cy}
	rad := Radians(deg)
	return result(p.Map(func(v r2.Vec) r2.Vec {
		return r2.Rotate(v, rad, pivot)
	}))
}

// Transform applies an arbitrary affine matrix.
func Transform(p Path, m Matrix2D) Result {
	return result(p.Map(m.Apply))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
