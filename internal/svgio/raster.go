package svgio

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"

	"github.com/tableplan/tableplan/internal/document"
	"github.com/tableplan/tableplan/internal/geometry"
)

const (
	DefaultRasterWidth = 800
	MaxRasterWidth     = 4096
)

var (
	tableColor   = color.RGBA{R: 0xf4, G: 0xed, B: 0xe1, A: 0xff}
	outlineColor = color.RGBA{R: 0x6b, G: 0x58, B: 0x43, A: 0xff}
)

// Rasterize draws the committed geometry of elements onto a white image
// of the given width. The height follows the plan's aspect ratio. A
// non-positive width selects DefaultRasterWidth; larger widths are capped
// at MaxRasterWidth. Neither side exceeds MaxRasterWidth.
func Rasterize(elements []document.Element, width int) *image.RGBA {
	if width <= 0 {
		width = DefaultRasterWidth
	}
	width = min(width, MaxRasterWidth)

	b := PlanBounds(elements)
	scale := float64(width) / b.Width
	height := pixels(b.Height * scale)
	if height > MaxRasterWidth {
		// Tall plans: fit the height and narrow the image to keep the aspect.
		height = MaxRasterWidth
		scale = float64(height) / b.Height
		width = pixels(b.Width * scale)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	project := func(x, y float64) (float32, float32) {
		return float32((x - b.X) * scale), float32((y - b.Y) * scale)
	}

	for _, el := range elements {
		p := el.Geometry.Committed.Path
		// Outline first, then the fill inset by one pixel on top of it.
		fillPath(dst, p, project, outlineColor, 0)
		fillPath(dst, p, project, tableColor, 1)
	}
	return dst
}

// WritePNG rasterizes elements and encodes the result as PNG.
func WritePNG(w io.Writer, elements []document.Element, width int) error {
	return png.Encode(w, Rasterize(elements, width))
}

// fillPath fills every subpath of p. inset shrinks the shape towards its
// bounding-box center by that many pixels.
func fillPath(dst *image.RGBA, p geometry.Path, project func(x, y float64) (float32, float32), c color.Color, inset float32) {
	size := dst.Bounds().Size()
	z := vector.NewRasterizer(size.X, size.Y)

	c0 := geometry.Bounds(p).Center()
	bx, by := project(c0.X, c0.Y)
	shrink := func(x, y float32) (float32, float32) {
		if inset == 0 {
			return x, y
		}
		return x + sign(bx-x)*inset, y + sign(by-y)*inset
	}

	open := false
	for _, s := range p.Segments() {
		switch s.Op {
		case geometry.MoveTo:
			if open {
				z.ClosePath()
			}
			z.MoveTo(shrink(project(s.Pt.X, s.Pt.Y)))
			open = true
		case geometry.LineTo:
			z.LineTo(shrink(project(s.Pt.X, s.Pt.Y)))
		case geometry.Close:
			z.ClosePath()
			open = false
		}
	}
	if open {
		z.ClosePath()
	}

	z.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

// pixels rounds an extent up to whole pixels, ignoring float noise.
func pixels(v float64) int {
	return max(1, int(math.Ceil(v-1e-6)))
}

func sign(v float32) float32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
