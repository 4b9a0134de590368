package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
)

// Background is a solid colour or a two-stop linear gradient.
type Background struct {
	Name     string
	From, To color.RGBA
	// Angle follows CSS linear-gradient: 180 points down, 135 towards the bottom-right corner.
	Angle float64
}

func (b Background) Gradient() bool { return b.From != b.To }

var backgrounds = map[string]Background{
	"solid":       {Name: "solid", From: colorWhite, To: colorWhite},
	"blue-purple": {Name: "blue-purple", From: mustHex("#60a5fa"), To: mustHex("#a78bfa"), Angle: 135},
	"pink-orange": {Name: "pink-orange", From: mustHex("#f472b6"), To: mustHex("#fb923c"), Angle: 135},
	"green-teal":  {Name: "green-teal", From: mustHex("#34d399"), To: mustHex("#06b6d4"), Angle: 135},
	"indigo-cyan": {Name: "indigo-cyan", From: mustHex("#6366f1"), To: mustHex("#22d3ee"), Angle: 135},
	"white-gray":  {Name: "white-gray", From: colorWhite, To: mustHex("#f3f4f6"), Angle: 180},
}

// ParseBackground resolves a preset name. "" means solid white; a "#rrggbb"
// value is a solid colour.
func ParseBackground(name string) (Background, error) {
	if name == "" {
		return backgrounds["solid"], nil
	}
	if b, ok := backgrounds[name]; ok {
		return b, nil
	}
	if name[0] == '#' {
		c, err := ParseHex(name)
		if err != nil {
			return Background{}, err
		}
		return Background{Name: name, From: c, To: c}, nil
	}
	return Background{}, fmt.Errorf("unknown background %q (known: %v)", name, BackgroundNames())
}

func BackgroundNames() []string {
	names := make([]string, 0, len(backgrounds))
	for n := range backgrounds {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (b Background) fill(dst *image.RGBA) {
	bounds := dst.Bounds()
	if !b.Gradient() {
		fillRect(dst, bounds, b.From)
		return
	}

	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	rad := b.Angle * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	length := math.Abs(w*dx) + math.Abs(h*dy)
	cx, cy := w/2, h/2

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := dst.Pix[dst.PixOffset(bounds.Min.X, y):]
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := float64(x-bounds.Min.X) + 0.5 - cx
			py := float64(y-bounds.Min.Y) + 0.5 - cy
			t := (px*dx+py*dy)/length + 0.5
			t = math.Max(0, math.Min(1, t))
			c := lerpColor(b.From, b.To, t)
			i := (x - bounds.Min.X) * 4
			row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, c.A
		}
	}
}

func fillRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := dst.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			dst.Pix[off], dst.Pix[off+1], dst.Pix[off+2], dst.Pix[off+3] = c.R, c.G, c.B, c.A
			off += 4
		}
	}
}
