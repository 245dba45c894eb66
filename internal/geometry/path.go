// Package geometry holds the path primitive used for table outlines, its
// bounding box, and the affine operations applied during editing.
package geometry

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	ErrEmptyPath      = errors.New("empty path")
	ErrInvalidPath    = errors.New("invalid path")
	ErrInvalidFactors = errors.New("invalid scale factors")
)

// Op is a path segment operation in canonical (absolute) form.
type Op byte

const (
	MoveTo Op = 'M'
	LineTo Op = 'L'
	Close  Op = 'Z'
)

// Segment is one canonical path segment. Pt is unused for Close.
type Segment struct {
	Op Op
	Pt r2.Vec
}

// Path is an immutable sequence of absolute move/line/close segments.
// Coordinates are rounded to 1e-6 so that the textual form is stable.
type Path struct {
	segs []Segment
}

const precision = 1e6

var (
	commandRe    = regexp.MustCompile(`([MmLlHhVvZz])([^MmLlHhVvZz]*)`)
	numberRe     = regexp.MustCompile(`[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)
	separatorsRe = regexp.MustCompile(`^[\s,]*$`)
	allowedRe    = regexp.MustCompile(`^[MmLlHhVvZz0-9eE.,+\-\s]*$`)
)

// Parse reads SVG path data limited to the M, L, H, V and Z commands in
// absolute or relative form and returns its canonical Path.
func Parse(d string) (Path, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return Path{}, ErrEmptyPath
	}
	if !allowedRe.MatchString(d) {
		return Path{}, fmt.Errorf("%w: unsupported command in %q", ErrInvalidPath, d)
	}
	if c := d[0]; c != 'M' && c != 'm' {
		return Path{}, fmt.Errorf("%w: must start with a move", ErrInvalidPath)
	}

	var (
		segs  []Segment
		cur   r2.Vec
		start r2.Vec
	)

	for i, match := range commandRe.FindAllStringSubmatch(d, -1) {
		cmd := match[1]
		args, err := parseNumbers(match[2])
		if err != nil {
			return Path{}, err
		}

		relative := cmd == strings.ToLower(cmd)

		switch strings.ToUpper(cmd) {
		case "M", "L":
			if len(args) == 0 || len(args)%2 != 0 {
				return Path{}, fmt.Errorf("%w: %s needs coordinate pairs", ErrInvalidPath, cmd)
			}
			for j := 0; j < len(args); j += 2 {
				pt := r2.Vec{X: args[j], Y: args[j+1]}
				// A leading relative move is absolute.
				if relative && (i > 0 || j > 0) {
					pt = r2.Add(cur, pt)
				}
				op := LineTo
				if j == 0 && strings.ToUpper(cmd) == "M" {
					op = MoveTo
					start = pt
				}
				segs = append(segs, Segment{Op: op, Pt: pt})
				cur = pt
			}
		case "H", "V":
			if len(args) == 0 {
				return Path{}, fmt.Errorf("%w: %s needs a coordinate", ErrInvalidPath, cmd)
			}
			for _, v := range args {
				pt := cur
				horizontal := strings.ToUpper(cmd) == "H"
				switch {
				case horizontal && relative:
					pt.X += v
				case horizontal:
					pt.X = v
				case relative:
					pt.Y += v
				default:
					pt.Y = v
				}
				segs = append(segs, Segment{Op: LineTo, Pt: pt})
				cur = pt
			}
		case "Z":
			if len(args) != 0 {
				return Path{}, fmt.Errorf("%w: Z takes no arguments", ErrInvalidPath)
			}
			segs = append(segs, Segment{Op: Close})
			cur = start
		}
	}

	return newPath(segs), nil
}

// MustParse is like Parse but panics on error. Intended for literals.
func MustParse(d string) Path {
	p, err := Parse(d)
	if err != nil {
		panic(err)
	}
	return p
}

func parseNumbers(s string) ([]float64, error) {
	matches := numberRe.FindAllString(s, -1)
	if !separatorsRe.MatchString(numberRe.ReplaceAllString(s, "")) {
		return nil, fmt.Errorf("%w: bad arguments %q", ErrInvalidPath, strings.TrimSpace(s))
	}
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite coordinate %q", ErrInvalidPath, m)
		}
		out = append(out, v)
	}
	return out, nil
}

// RectPath returns the closed outline of an axis-aligned rectangle.
func RectPath(x, y, width, height float64) Path {
	return Polygon([]r2.Vec{
		{X: x, Y: y},
		{X: x + width, Y: y},
		{X: x + width, Y: y + height},
		{X: x, Y: y + height},
	})
}

// Polygon returns a closed path through pts.
func Polygon(pts []r2.Vec) Path {
	if len(pts) == 0 {
		return Path{}
	}
	segs := make([]Segment, 0, len(pts)+1)
	for i, pt := range pts {
		op := LineTo
		if i == 0 {
			op = MoveTo
		}
		segs = append(segs, Segment{Op: op, Pt: pt})
	}
	segs = append(segs, Segment{Op: Close})
	return newPath(segs)
}

func newPath(segs []Segment) Path {
	for i := range segs {
		if segs[i].Op == Close {
			segs[i].Pt = r2.Vec{}
			continue
		}
		segs[i].Pt = r2.Vec{X: round(segs[i].Pt.X), Y: round(segs[i].Pt.Y)}
	}
	return Path{segs: segs}
}

func round(v float64) float64 {
	r := math.Round(v*precision) / precision
	if r == 0 {
		return 0
	}
	return r
}

// IsEmpty reports whether the path has no segments.
func (p Path) IsEmpty() bool {
	return len(p.segs) == 0
}

// Segments returns a copy of the path segments.
func (p Path) Segments() []Segment {
	out := make([]Segment, len(p.segs))
	copy(out, p.segs)
	return out
}

// Points returns the coordinates of every move and line segment.
func (p Path) Points() []r2.Vec {
	pts := make([]r2.Vec, 0, len(p.segs))
	for _, s := range p.segs {
		if s.Op != Close {
			pts = append(pts, s.Pt)
		}
	}
	return pts
}

// Map returns a new path with f applied to every coordinate.
func (p Path) Map(f func(r2.Vec) r2.Vec) Path {
	segs := make([]Segment, len(p.segs))
	for i, s := range p.segs {
		segs[i] = s
		if s.Op != Close {
			segs[i].Pt = f(s.Pt)
		}
	}
	return newPath(segs)
}

// Equal reports whether both paths have identical canonical segments.
func (p Path) Equal(other Path) bool {
	if len(p.segs) != len(other.segs) {
		return false
	}
	for i := range p.segs {
		if p.segs[i] != other.segs[i] {
			return false
		}
	}
	return true
}

// String returns the canonical serialized form, e.g. "M 0 0 L 10 0 Z".
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p.segs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(byte(s.Op))
		if s.Op == Close {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(FormatFloat(s.Pt.X))
		b.WriteByte(' ')
		b.WriteString(FormatFloat(s.Pt.Y))
	}
	return b.String()
}

// FormatFloat prints v rounded to the path precision in its shortest form.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(round(v), 'f', -1, 64)
}

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Path) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
