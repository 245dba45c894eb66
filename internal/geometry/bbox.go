package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds computes the axis-aligned bounding box of a path's control points.
// An empty path yields the zero Rect.
func Bounds(p Path) Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	first := true

	for _, s := range p.segs {
		if s.Op == Close {
			continue
		}
		first = false
		minX = math.Min(minX, s.Pt.X)
		maxX = math.Max(maxX, s.Pt.X)
		minY = math.Min(minY, s.Pt.Y)
		maxY = math.Max(maxY, s.Pt.Y)
	}

	if first {
		return Rect{}
	}

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  round(maxX - minX),
		Height: round(maxY - minY),
	}
}

// RectFromBox converts a gonum box.
func RectFromBox(b r2.Box) Rect {
	b = b.Canon()
	return Rect{X: b.Min.X, Y: b.Min.Y, Width: b.Max.X - b.Min.X, Height: b.Max.Y - b.Min.Y}
}

// Box converts the rect to a gonum box.
func (r Rect) Box() r2.Box {
	return r2.Box{
		Min: r2.Vec{X: r.X, Y: r.Y},
		Max: r2.Vec{X: r.Right(), Y: r.Bottom()},
	}
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Min returns the top-left corner.
func (r Rect) Min() r2.Vec { return r2.Vec{X: r.X, Y: r.Y} }

// Center returns the center point of the rect.
func (r Rect) Center() r2.Vec {
	return r2.Vec{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains checks if a point is inside the rect, edges included.
func (r Rect) Contains(pt r2.Vec) bool {
	return pt.X >= r.X && pt.X <= r.Right() && pt.Y >= r.Y && pt.Y <= r.Bottom()
}

// IsZero reports whether the rect is the zero value.
func (r Rect) IsZero() bool {
	return r == Rect{}
}

// Union returns the smallest rect containing both rects. Unlike area based
// unions, a zero-area rect still contributes its position.
func (r Rect) Union(other Rect) Rect {
	minX := math.Min(r.X, other.X)
	minY := math.Min(r.Y, other.Y)
	maxX := math.Max(r.Right(), other.Right())
	maxY := math.Max(r.Bottom(), other.Bottom())

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Inflate grows the rect by d on every side.
func (r Rect) Inflate(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// UnionAll returns the union of rects, or false when rects is empty.
func UnionAll(rects []Rect) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	out := rects[0]
	for _, r := range rects[1:] {
		out = out.Union(r)
	}
	return out, true
}
