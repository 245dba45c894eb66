package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const edgeEps = 1e-9

// Contains reports whether pt lies inside the filled outline of p, edges
// included. Subpaths are closed implicitly and combined with the even-odd
// rule.
func (p Path) Contains(pt r2.Vec) bool {
	inside := false
	for _, ring := range p.rings() {
		for i := range ring {
			a, b := ring[i], ring[(i+1)%len(ring)]
			if onSegment(pt, a, b) {
				return true
			}
			if (a.Y > pt.Y) != (b.Y > pt.Y) {
				x := a.X + (pt.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
				if pt.X < x {
					inside = !inside
				}
			}
		}
	}
	return inside
}

// rings splits the path into the point lists of its subpaths.
func (p Path) rings() [][]r2.Vec {
	var (
		out [][]r2.Vec
		cur []r2.Vec
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, cur)
		}
		cur = nil
	}
	for _, s := range p.segs {
		switch s.Op {
		case MoveTo:
			flush()
			cur = []r2.Vec{s.Pt}
		case LineTo:
			cur = append(cur, s.Pt)
		case Close:
			flush()
		}
	}
	flush()
	return out
}

func onSegment(pt, a, b r2.Vec) bool {
	ab, ap := r2.Sub(b, a), r2.Sub(pt, a)
	if math.Abs(r2.Cross(ab, ap)) > edgeEps*math.Max(1, r2.Norm(ab)) {
		return false
	}
	return r2.Dot(ap, r2.Sub(pt, b)) <= edgeEps
}
