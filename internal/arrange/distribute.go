package arrange

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/tableplan/tableplan/internal/geometry"
)

// Axis names a distribution direction.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// Distribute spaces items evenly along axis between the smallest leading
// edge and the largest trailing edge. Items keep their extents; only the
// gaps change. Moves are returned in input order.
func Distribute(items []Item, axis Axis) ([]Move, error) {
	var lead, extent func(geometry.Rect) float64
	switch axis {
	case AxisX:
		lead = left
		extent = func(r geometry.Rect) float64 { return r.Width }
	case AxisY:
		lead = top
		extent = func(r geometry.Rect) float64 { return r.Height }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAxis, axis)
	}

	if len(items) < 2 {
		return nil, nil
	}

	trail := func(r geometry.Rect) float64 { return lead(r) + extent(r) }

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(lead(items[a].Box), lead(items[b].Box))
	})

	start := floats.Min(column(items, lead))
	span := floats.Max(column(items, trail)) - start
	spacing := finiteOrZero((span - floats.Sum(column(items, extent))) / float64(len(items)-1))

	moves := make([]Move, len(items))
	cursor := start
	for _, i := range order {
		box := items[i].Box
		d := finiteOrZero(cursor - lead(box))
		moves[i] = Move{ID: items[i].ID}
		if axis == AxisX {
			moves[i].DX = d
		} else {
			moves[i].DY = d
		}
		cursor += extent(box) + spacing
	}
	return moves, nil
}
