package renderer

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

// kappa places cubic control points so four curves approximate a circle.
const kappa = 0.5522847498

type shaper struct {
	z *vector.Rasterizer
}

func newShaper() *shaper {
	return &shaper{z: vector.NewRasterizer(1, 1)}
}

// roundRect fills r with rounded corners of the given radius.
func (s *shaper) roundRect(dst *image.RGBA, r image.Rectangle, radius float64, c color.Color) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	w, h := float64(r.Dx()), float64(r.Dy())
	radius = math.Min(radius, math.Min(w, h)/2)

	s.z.Reset(r.Dx(), r.Dy())
	rr, k := float32(radius), float32(radius*(1-kappa))
	fw, fh := float32(w), float32(h)

	s.z.MoveTo(rr, 0)
	s.z.LineTo(fw-rr, 0)
	s.z.CubeTo(fw-k, 0, fw, k, fw, rr)
	s.z.LineTo(fw, fh-rr)
	s.z.CubeTo(fw, fh-k, fw-k, fh, fw-rr, fh)
	s.z.LineTo(rr, fh)
	s.z.CubeTo(k, fh, 0, fh-k, 0, fh-rr)
	s.z.LineTo(0, rr)
	s.z.CubeTo(0, k, k, 0, rr, 0)
	s.z.ClosePath()

	s.z.Draw(dst, r, image.NewUniform(c), image.Point{})
}

// borderedRoundRect draws a rounded rectangle with a border of the given width.
func (s *shaper) borderedRoundRect(dst *image.RGBA, r image.Rectangle, radius float64, border int, fill, stroke color.Color) {
	s.roundRect(dst, r, radius, stroke)
	if border <= 0 {
		return
	}
	s.roundRect(dst, r.Inset(border), math.Max(0, radius-float64(border)), fill)
}

// magnifier draws a search glyph centred at (cx, cy) fitting a size x size square.
func (s *shaper) magnifier(dst *image.RGBA, cx, cy, size float64, c color.Color) {
	r := image.Rect(int(cx-size/2), int(cy-size/2), int(math.Ceil(cx+size/2)), int(math.Ceil(cy+size/2)))
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	s.z.Reset(r.Dx(), r.Dy())

	ox, oy := cx-float64(r.Min.X), cy-float64(r.Min.Y)
	lensX, lensY := ox-size*0.1, oy-size*0.1
	outer := size * 0.32
	inner := outer - math.Max(1.5, size*0.09)

	s.circle(lensX, lensY, outer, false)
	s.circle(lensX, lensY, inner, true)

	// Handle: a thick segment at 45 degrees from the lens rim.
	half := math.Max(1, size*0.06)
	d := outer * math.Sqrt2 / 2
	x0, y0 := lensX+d, lensY+d
	x1, y1 := ox+size*0.42, oy+size*0.42
	nx, ny := half*math.Sqrt2/2, -half*math.Sqrt2/2
	s.z.MoveTo(float32(x0+nx), float32(y0+ny))
	s.z.LineTo(float32(x1+nx), float32(y1+ny))
	s.z.LineTo(float32(x1-nx), float32(y1-ny))
	s.z.LineTo(float32(x0-nx), float32(y0-ny))
	s.z.ClosePath()

	s.z.Draw(dst, r, image.NewUniform(c), image.Point{})
}

// circle adds a circle path; reverse winding cuts a hole into an enclosing one.
func (s *shaper) circle(cx, cy, radius float64, reverse bool) {
	k := radius * kappa
	p := func(x, y float64) (float32, float32) { return float32(cx + x), float32(cy + y) }

	if !reverse {
		s.z.MoveTo(p(radius, 0))
		x1, y1 := p(radius, k)
		x2, y2 := p(k, radius)
		x3, y3 := p(0, radius)
		s.z.CubeTo(x1, y1, x2, y2, x3, y3)
		x1, y1 = p(-k, radius)
		x2, y2 = p(-radius, k)
		x3, y3 = p(-radius, 0)
		s.z.CubeTo(x1, y1, x2, y2, x3, y3)
		x1, y1 = p(-radius, -k)
		x2, y2 = p(-k, -radius)
		x3, y3 = p(0, -radius)
		s.z.CubeTo(x1, y1, x2, y2, x3, y3)
		x1, y1 = p(k, -radius)
		x2, y2 = p(radius, -k)
		x3, y3 = p(radius, 0)
		s.z.CubeTo(x1, y1, x2, y2, x3, y3)
	} else {
		s.z.MoveTo(p(radius, 0))
		x1, y1 := p(radius, -k)
		x2, y2 := p(k, -radius)
		x3, y3 := p(0, -radius)
		s.z.CubeTo(x1, y1, x2, y2, x3, y3)
		x1, y1 = p(-k, -radius)
		x2, y2 = p(-radius, -k)
		x3, y3 = p(-radius, 0)
		s.z.CubeTo(x1, y1, x2, y2, x3, y3)
		x1, y1 = p(-radius, k)
		x2, y2 = p(-k, radius)
		x3, y3 = p(0, radius)
		s.z.CubeTo(x1, y1, x2, y2, x3, y3)
		x1, y1 = p(k, radius)
		x2, y2 = p(radius, k)
		x3, y3 = p(radius, 0)
		s.z.CubeTo(x1, y1, x2, y2, x3, y3)
	}
	s.z.ClosePath()
}
