package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Matrix2D is an affine transform in SVG order [a b c d e f]:
//
//	| a  c  e |
//	| b  d  f |
//	| 0  0  1 |
type Matrix2D [6]float64

func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

func TranslateMatrix(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// ScaleMatrix scales about the origin.
func ScaleMatrix(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// RotateDegrees rotates about the origin, clockwise on a y-down canvas.
func RotateDegrees(deg float64) Matrix2D {
	sin, cos := math.Sincos(Radians(deg))
	return Matrix2D{cos, sin, -sin, cos, 0, 0}
}

// ScaleAbout scales by (sx, sy) leaving anchor in place.
func ScaleAbout(sx, sy float64, anchor r2.Vec) Matrix2D {
	return around(ScaleMatrix(sx, sy), anchor)
}

// RotateAbout rotates by deg degrees around pivot.
func RotateAbout(deg float64, pivot r2.Vec) Matrix2D {
	return around(RotateDegrees(deg), pivot)
}

func around(m Matrix2D, p r2.Vec) Matrix2D {
	return TranslateMatrix(p.X, p.Y).Multiply(m).Multiply(TranslateMatrix(-p.X, -p.Y))
}

// Multiply returns m * n, the transform that applies n first.
func (m Matrix2D) Multiply(n Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*n[0] + m[2]*n[1],
		m[1]*n[0] + m[3]*n[1],
		m[0]*n[2] + m[2]*n[3],
		m[1]*n[2] + m[3]*n[3],
		m[0]*n[4] + m[2]*n[5] + m[4],
		m[1]*n[4] + m[3]*n[5] + m[5],
	}
}

// Apply maps a single point.
func (m Matrix2D) Apply(v r2.Vec) r2.Vec {
	return r2.Vec{
		X: m[0]*v.X + m[2]*v.Y + m[4],
		Y: m[1]*v.X + m[3]*v.Y + m[5],
	}
}

// Inverse returns the inverse transform. ok is false for singular
// matrices, such as a scale with a zero factor.
func (m Matrix2D) Inverse() (inv Matrix2D, ok bool) {
	det := m[0]*m[3] - m[1]*m[2]
	if det == 0 || !finite(det) {
		return Identity(), false
	}
	return Matrix2D{
		m[3] / det,
		-m[1] / det,
		-m[2] / det,
		m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}, true
}

// Slice returns the six coefficients, for draw commands.
func (m Matrix2D) Slice() []float64 {
	return m[:]
}

// Near reports whether every coefficient of m is within eps of n.
func (m Matrix2D) Near(n Matrix2D, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-n[i]) > eps {
			return false
		}
	}
	return true
}

func Radians(deg float64) float64 { return deg * math.Pi / 180 }

func Degrees(rad float64) float64 { return rad * 180 / math.Pi }
