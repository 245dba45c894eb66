package svgio

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/tableplan/tableplan/internal/document"
	"github.com/tableplan/tableplan/internal/geometry"
)

// Margin is the space left around the plan in exported images.
const Margin = 20

var (
	svgh = `<svg width="%s" height="%s" viewBox="%s %s %s %s" version="1.1" xmlns="http://www.w3.org/2000/svg">`
)

// PlanBounds returns the union of the committed bounds of elements grown by
// Margin. An empty plan yields a 100 by 100 area at the origin.
func PlanBounds(elements []document.Element) geometry.Rect {
	boxes := make([]geometry.Rect, 0, len(elements))
	for _, el := range elements {
		boxes = append(boxes, el.Geometry.Committed.BBox)
	}
	u, ok := geometry.UnionAll(boxes)
	if !ok {
		return geometry.Rect{Width: 100, Height: 100}
	}
	return u.Inflate(Margin)
}

// WriteSVG renders the committed geometry of elements as an SVG document.
// Each element becomes a group holding its outline and two text lines; the
// outline carries data-label and data-pax so Import can read it back.
func WriteSVG(w io.Writer, elements []document.Element) error {
	var werr error
	bi := bufio.NewWriter(w)
	wr := func(f string, args ...interface{}) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(bi, f, args...)
	}

	b := PlanBounds(elements)
	wr(svgh, num(b.Width), num(b.Height), num(b.X), num(b.Y), num(b.Width), num(b.Height))
	wr("\n")
	wr(`<g font-family="sans-serif" font-size="12" text-anchor="middle">` + "\n")
	for _, el := range elements {
		committed := el.Geometry.Committed
		c := committed.BBox.Center()
		wr(`<g data-id="%s">`+"\n", escape(el.ID))
		wr(`<path d="%s" fill="#f4ede1" stroke="#6b5843" data-label="%s" data-pax="%d"/>`+"\n",
			committed.Path.String(), escape(el.Label), el.Pax)
		wr(`<text x="%s" y="%s">%s</text>`+"\n", num(c.X), num(c.Y-4), escape(el.Label))
		wr(`<text x="%s" y="%s">%dp</text>`+"\n", num(c.X), num(c.Y+12), el.Pax)
		wr("</g>\n")
	}
	wr("</g>\n")
	wr("</svg>\n")
	if werr == nil {
		werr = bi.Flush()
	}
	return werr
}

func num(v float64) string {
	return geometry.FormatFloat(v)
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
