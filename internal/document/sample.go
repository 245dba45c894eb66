package document

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tableplan/tableplan/internal/geometry"
)

// Sample builds a small dining-room layout: a row of square four-tops, two
// round tables, a long banquet table and an L-shaped bar. newID supplies
// element ids.
func Sample(newID func() string) Snapshot {
	var out Snapshot

	add := func(label string, pax int, p geometry.Path) {
		id := newID()
		if label == "" {
			label = DefaultLabel(id)
		}
		out = append(out, Element{
			ID:       id,
			Label:    label,
			Pax:      pax,
			Geometry: NewGeometry(p),
		})
	}

	for i := range 3 {
		add("", 4, geometry.RectPath(50+float64(i)*150, 50, 100, 100))
	}

	add("Round 1", 6, roundTable(r2.Vec{X: 125, Y: 300}, 60))
	add("Round 2", 6, roundTable(r2.Vec{X: 325, Y: 300}, 60))

	add("Banquet", 12, geometry.RectPath(50, 450, 400, 80))

	add("Bar", 8, geometry.Polygon([]r2.Vec{
		{X: 550, Y: 50},
		{X: 650, Y: 50},
		{X: 650, Y: 450},
		{X: 750, Y: 450},
		{X: 750, Y: 530},
		{X: 550, Y: 530},
	}))

	return out
}

// roundTable approximates a circle with an octagon.
func roundTable(center r2.Vec, radius float64) geometry.Path {
	const sides = 8
	pts := make([]r2.Vec, sides)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / sides
		pts[i] = r2.Add(center, r2.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)})
	}
	return geometry.Polygon(pts)
}
