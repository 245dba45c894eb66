// Package svgio converts between floor plans and SVG, and rasterizes plans
// to PNG previews.
package svgio

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/JoshVarga/svgparser"
	"golang.org/x/net/html/charset"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tableplan/tableplan/internal/geometry"
)

var (
	ErrNotSVG   = errors.New("document is not an svg")
	ErrTooLarge = errors.New("svg document too large")
	ErrNoShapes = errors.New("svg contains no usable shapes")
)

// Shape is one outline found in an SVG document, in document coordinates
// with every enclosing transform applied.
type Shape struct {
	Label string
	// Pax is nil when the document does not say.
	Pax  *int
	Path geometry.Path
}

func vec(x, y float64) r2.Vec { return r2.Vec{X: x, Y: y} }

var pointsRe = regexp.MustCompile(`[\s,]+`)

// Import parses an SVG document and returns its rect, path and polygon
// elements as shapes. Elements that cannot be read are skipped. maxBytes
// limits the document size; zero means no limit.
func Import(r io.Reader, maxBytes int64) ([]Shape, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && int64(len(raw)) > maxBytes {
		return nil, ErrTooLarge
	}

	decoder := xml.NewDecoder(bytes.NewReader(raw))
	decoder.CharsetReader = charset.NewReaderLabel
	elt, err := svgparser.DecodeFirst(decoder)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSVG, err)
	}
	if err := elt.Decode(decoder); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrNotSVG, err)
	}
	if elt.Name != "svg" {
		return nil, fmt.Errorf("%w: root element is %q", ErrNotSVG, elt.Name)
	}

	var shapes []Shape
	walk(elt, geometry.Identity(), &shapes)
	if len(shapes) == 0 {
		return nil, ErrNoShapes
	}
	return shapes, nil
}

func walk(e *svgparser.Element, parent geometry.Matrix2D, out *[]Shape) {
	for _, c := range e.Children {
		own, err := parseTransform(c.Attributes["transform"])
		if err != nil {
			slog.Warn("svg import: skipping element with bad transform", "element", c.Name, "error", err)
			continue
		}
		xf := parent.Multiply(own)

		switch c.Name {
		case "g", "svg", "a":
			walk(c, xf, out)
		case "rect", "path", "polygon":
			p, err := outline(c)
			if err != nil {
				slog.Warn("svg import: skipping element", "element", c.Name, "id", c.Attributes["id"], "error", err)
				continue
			}
			*out = append(*out, Shape{
				Label: label(c),
				Pax:   pax(c),
				Path:  geometry.Transform(p, xf).Path,
			})
		case "defs", "title", "desc", "metadata", "style", "text":
			continue
		default:
			slog.Debug("svg import: unsupported element", "element", c.Name)
		}
	}
}

func outline(e *svgparser.Element) (geometry.Path, error) {
	switch e.Name {
	case "rect":
		var ferr error
		pf := func(name string, def float64) float64 {
			s := strings.TrimSpace(e.Attributes[name])
			if ferr != nil || s == "" {
				return def
			}
			f, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
			if err != nil {
				ferr = fmt.Errorf("%s: %w", name, err)
			}
			return f
		}
		x, y := pf("x", 0), pf("y", 0)
		w, h := pf("width", 0), pf("height", 0)
		if ferr != nil {
			return geometry.Path{}, ferr
		}
		if w <= 0 || h <= 0 {
			return geometry.Path{}, fmt.Errorf("rect needs a positive size, got %vx%v", w, h)
		}
		return geometry.RectPath(x, y, w, h), nil

	case "path":
		return geometry.Parse(e.Attributes["d"])

	case "polygon":
		fields := pointsRe.Split(strings.TrimSpace(e.Attributes["points"]), -1)
		if len(fields) < 6 || len(fields)%2 != 0 {
			return geometry.Path{}, fmt.Errorf("polygon needs at least three points")
		}
		pts := make([]r2.Vec, 0, len(fields)/2)
		for i := 0; i < len(fields); i += 2 {
			x, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return geometry.Path{}, err
			}
			y, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return geometry.Path{}, err
			}
			pts = append(pts, vec(x, y))
		}
		return geometry.Polygon(pts), nil
	}
	return geometry.Path{}, fmt.Errorf("unsupported element %q", e.Name)
}

func label(e *svgparser.Element) string {
	if l := strings.TrimSpace(e.Attributes["data-label"]); l != "" {
		return l
	}
	return strings.TrimSpace(e.Attributes["id"])
}

func pax(e *svgparser.Element) *int {
	s := strings.TrimSpace(e.Attributes["data-pax"])
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		slog.Debug("svg import: ignoring bad data-pax", "value", s)
		return nil
	}
	return &n
}
