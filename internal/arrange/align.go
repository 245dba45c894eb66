package arrange

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/tableplan/tableplan/internal/geometry"
)

// Mode names an alignment.
type Mode string

const (
	Top     Mode = "top"
	Bottom  Mode = "bottom"
	Left    Mode = "left"
	Right   Mode = "right"
	CenterX Mode = "center-x"
	CenterY Mode = "center-y"
)

// Modes lists every alignment mode in toolbar order.
var Modes = []Mode{Top, Left, Bottom, Right, CenterX, CenterY}

// Align moves items so that the edge or center named by mode lines up on
// a shared target. Fewer than two items is a no-op.
func Align(items []Item, mode Mode) ([]Move, error) {
	var (
		edge   func(geometry.Rect) float64
		target func() float64
		alongX bool
	)

	switch mode {
	case Top:
		edge = top
		target = func() float64 { return floats.Min(column(items, top)) }
	case Bottom:
		edge = bottom
		target = func() float64 { return floats.Max(column(items, bottom)) }
	case Left:
		edge, alongX = left, true
		target = func() float64 { return floats.Min(column(items, left)) }
	case Right:
		edge, alongX = right, true
		target = func() float64 { return floats.Max(column(items, right)) }
	case CenterX:
		edge, alongX = centerX, true
		target = func() float64 {
			return (floats.Min(column(items, left)) + floats.Max(column(items, right))) / 2
		}
	case CenterY:
		edge = centerY
		target = func() float64 {
			return (floats.Min(column(items, top)) + floats.Max(column(items, bottom))) / 2
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	if len(items) < 2 {
		return nil, nil
	}

	t := target()
	moves := make([]Move, len(items))
	for i, it := range items {
		d := finiteOrZero(t - edge(it.Box))
		moves[i] = Move{ID: it.ID}
		if alongX {
			moves[i].DX = d
		} else {
			moves[i].DY = d
		}
	}
	return moves, nil
}
