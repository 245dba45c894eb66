package arrange

import "math"

// DefaultPitch is the grid spacing used when none is configured.
const DefaultPitch = 50

// Snap moves each item so that its bounding box origin lands on the nearest
// multiple of pitch. Halves round up. A non-positive pitch is a no-op.
func Snap(items []Item, pitch float64) []Move {
	if !(pitch > 0) || math.IsInf(pitch, 1) {
		return nil
	}
	moves := make([]Move, 0, len(items))
	for _, it := range items {
		moves = append(moves, Move{
			ID: it.ID,
			DX: finiteOrZero(SnapValue(it.Box.X, pitch) - it.Box.X),
			DY: finiteOrZero(SnapValue(it.Box.Y, pitch) - it.Box.Y),
		})
	}
	return moves
}

// SnapValue rounds v to the nearest multiple of pitch.
func SnapValue(v, pitch float64) float64 {
	r := math.Floor(v/pitch+0.5) * pitch
	if r == 0 {
		return 0
	}
	return r
}
