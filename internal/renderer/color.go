package renderer

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Palette of the search page.
var (
	colorWhite       = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorTitle       = color.RGBA{0x1f, 0x29, 0x37, 0xff} // gray-800
	colorText        = color.RGBA{0x11, 0x18, 0x27, 0xff} // gray-900
	colorPlaceholder = color.RGBA{0xd1, 0xd5, 0xdb, 0xff} // gray-300
	colorBorder      = color.RGBA{0xe5, 0xe7, 0xeb, 0xff} // gray-200
	colorButton      = color.RGBA{0xf9, 0xfa, 0xfb, 0xff} // gray-50
	colorButtonText  = color.RGBA{0x37, 0x41, 0x51, 0xff} // gray-700
	colorSelection   = color.RGBA{0xbf, 0xdb, 0xfe, 0xff} // blue-200
	colorIcon        = color.RGBA{0x4b, 0x55, 0x63, 0xff} // gray-600
	colorShadow      = color.RGBA{0x00, 0x00, 0x00, 0x0d}
)

// ParseHex parses "#rrggbb" or "#rgb".
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func mustHex(s string) color.RGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(lerp(float64(a.R), float64(b.R), t) + 0.5),
		G: uint8(lerp(float64(a.G), float64(b.G), t) + 0.5),
		B: uint8(lerp(float64(a.B), float64(b.B), t) + 0.5),
		A: 0xff,
	}
}
