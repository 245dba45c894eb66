// Package arrange computes alignment, distribution and grid-snap offsets
// for a set of element bounding boxes. Results are translations to commit;
// nothing here touches the store.
package arrange

import (
	"errors"
	"math"

	"github.com/tableplan/tableplan/internal/geometry"
)

var (
	ErrUnknownMode = errors.New("unknown alignment mode")
	ErrUnknownAxis = errors.New("unknown distribution axis")
)

// Item is an element id with its current bounding box.
type Item struct {
	ID  string
	Box geometry.Rect
}

// Move is the translation to apply to one element.
type Move struct {
	ID string
	DX float64
	DY float64
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func column(items []Item, f func(geometry.Rect) float64) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		out[i] = f(it.Box)
	}
	return out
}

func left(r geometry.Rect) float64    { return r.X }
func top(r geometry.Rect) float64     { return r.Y }
func right(r geometry.Rect) float64   { return r.Right() }
func bottom(r geometry.Rect) float64  { return r.Bottom() }
func centerX(r geometry.Rect) float64 { return r.X + r.Width/2 }
func centerY(r geometry.Rect) float64 { return r.Y + r.Height/2 }
