// Package renderer rasterizes a single frame of the search page.
package renderer

import (
	"image"
	"image/color"
	"math"
	"unicode/utf8"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/typing2video/internal/layout"
)

const (
	TitleText        = "Search"
	PrimaryButton    = "Search"
	SecondaryButton  = "I'm Feeling Lucky"
	DefaultIcon      = "🔍"
	IconLeft         = "left"
	IconRight        = "right"
	boxRadius        = 16
	buttonRadius     = 12
	iconBox          = 32
	iconGap          = 16
	selectionPadding = 2
)

// FrameSpec is everything the draw routine needs for one frame.
type FrameSpec struct {
	Width, Height  int
	Background     Background
	FontFamily     string
	ShowTitle      bool
	ShowButtons    bool
	IconPosition   string
	Icon           string
	Placeholder    string
	DisplayText    string
	IsTextSelected bool
}

// static drops the per-frame fields, leaving the key of the cached base layer.
func (s FrameSpec) static() FrameSpec {
	s.DisplayText = ""
	s.IsTextSelected = false
	return s
}

// Drawer renders frames. The static part of the page is rendered once per
// FrameSpec and copied under every frame. A Drawer is not safe for concurrent use.
type Drawer struct {
	fonts   *fontCache
	shapes  *shaper
	base    *image.RGBA
	baseKey FrameSpec
	geom    geometry
}

func NewDrawer() *Drawer {
	return &Drawer{fonts: newFontCache(), shapes: newShaper()}
}

func (d *Drawer) Close() { d.fonts.Close() }

// geometry is the resolved pixel layout of a spec.
type geometry struct {
	scale    float64
	title    image.Rectangle
	box      image.Rectangle
	text     image.Rectangle
	icon     image.Rectangle
	buttons  image.Rectangle
	hasTitle bool
	hasBtns  bool
}

func (d *Drawer) measure(spec FrameSpec) geometry {
	scale := layout.Scale(spec.Width, spec.Height)
	px := func(v float64) int { return int(math.Round(v * scale)) }

	g := geometry{scale: scale}
	placed := layout.Stack(spec.Height, layout.Page(spec.ShowTitle, spec.ShowButtons, scale))

	boxW := px(layout.BoxMaxWidth)
	if maxW := spec.Width - 2*px(layout.CardPadding); boxW > maxW {
		boxW = maxW
	}
	boxX := (spec.Width - boxW) / 2

	for _, p := range placed {
		switch p.Kind {
		case layout.Title:
			g.title = image.Rect(0, p.Y, spec.Width, p.Y+p.Height)
			g.hasTitle = true
		case layout.SearchBox:
			g.box = image.Rect(boxX, p.Y, boxX+boxW, p.Y+p.Height)
		case layout.Buttons:
			g.buttons = image.Rect(0, p.Y, spec.Width, p.Y+p.Height)
			g.hasBtns = true
		}
	}

	inner := g.box.Inset(px(layout.BoxPaddingX))
	inner.Min.Y, inner.Max.Y = g.box.Min.Y, g.box.Max.Y
	g.text = inner
	if spec.Icon != "" {
		size := px(iconBox)
		cy := (g.box.Min.Y + g.box.Max.Y) / 2
		if spec.IconPosition == IconRight {
			g.icon = image.Rect(inner.Max.X-size, cy-size/2, inner.Max.X, cy+size/2)
			g.text.Max.X = g.icon.Min.X - px(iconGap)
		} else {
			g.icon = image.Rect(inner.Min.X, cy-size/2, inner.Min.X+size, cy+size/2)
			g.text.Min.X = g.icon.Max.X + px(iconGap)
		}
	}
	return g
}

// Draw renders spec into dst. dst must be Width x Height.
func (d *Drawer) Draw(dst *image.RGBA, spec FrameSpec) error {
	key := spec.static()
	if d.base == nil || key != d.baseKey {
		if err := d.buildBase(key); err != nil {
			return err
		}
	}
	draw.Copy(dst, dst.Bounds().Min, d.base, d.base.Bounds(), draw.Src, nil)
	return d.drawText(dst, spec)
}

func (d *Drawer) buildBase(spec FrameSpec) error {
	base := image.NewRGBA(image.Rect(0, 0, spec.Width, spec.Height))
	g := d.measure(spec)
	px := func(v float64) int { return int(math.Round(v * g.scale)) }

	spec.Background.fill(base)

	if g.hasTitle {
		face, err := d.fonts.face(spec.FontFamily, layout.TitleFontSize*g.scale)
		if err != nil {
			return err
		}
		drawCentered(base, face, TitleText, g.title, colorTitle)
	}

	// Shadow, border, white fill.
	shadow := g.box.Add(image.Pt(0, px(6)))
	d.shapes.roundRect(base, shadow.Inset(-px(3)), float64(px(boxRadius+3)), colorShadow)
	d.shapes.roundRect(base, shadow, float64(px(boxRadius)), colorShadow)
	d.shapes.borderedRoundRect(base, g.box, float64(px(boxRadius)), max(1, px(1)), colorWhite, colorBorder)

	if spec.Icon != "" {
		if err := d.drawIcon(base, spec.Icon, g); err != nil {
			return err
		}
	}

	if g.hasBtns {
		if err := d.drawButtons(base, spec.FontFamily, g); err != nil {
			return err
		}
	}

	d.base = base
	d.baseKey = spec
	d.geom = g
	return nil
}

func (d *Drawer) drawIcon(dst *image.RGBA, icon string, g geometry) error {
	cx := float64(g.icon.Min.X+g.icon.Max.X) / 2
	cy := float64(g.icon.Min.Y+g.icon.Max.Y) / 2
	switch icon {
	case "🔍", "🔎", "search":
		// Bundled fonts carry no emoji; the default icon is drawn as a glyph.
		d.shapes.magnifier(dst, cx, cy, float64(g.icon.Dx())*0.85, colorIcon)
		return nil
	}
	face, err := d.fonts.face("", layout.IconFontSize*g.scale)
	if err != nil {
		return err
	}
	drawCentered(dst, face, icon, g.icon, colorIcon)
	return nil
}

func (d *Drawer) drawButtons(dst *image.RGBA, family string, g geometry) error {
	face, err := d.fonts.face(family, layout.ButtonFontSize*g.scale)
	if err != nil {
		return err
	}
	px := func(v float64) int { return int(math.Round(v * g.scale)) }

	labels := []string{PrimaryButton, SecondaryButton}
	widths := make([]int, len(labels))
	total := px(layout.ButtonGap) * (len(labels) - 1)
	for i, l := range labels {
		widths[i] = font.MeasureString(face, l).Ceil() + 2*px(layout.ButtonPaddingX)
		total += widths[i]
	}

	x := (g.buttons.Dx() - total) / 2
	for i, l := range labels {
		r := image.Rect(x, g.buttons.Min.Y, x+widths[i], g.buttons.Max.Y)
		d.shapes.borderedRoundRect(dst, r, float64(px(buttonRadius)), max(1, px(1)), colorButton, colorBorder)
		drawCentered(dst, face, l, r, colorButtonText)
		x += widths[i] + px(layout.ButtonGap)
	}
	return nil
}

// drawText draws the typed text (or the placeholder) and the selection highlight.
func (d *Drawer) drawText(dst *image.RGBA, spec FrameSpec) error {
	g := d.geom
	face, err := d.fonts.face(spec.FontFamily, layout.TextFontSize*g.scale)
	if err != nil {
		return err
	}

	text, col := spec.DisplayText, colorText
	if text == "" {
		if spec.Placeholder == "" {
			return nil
		}
		text, col = spec.Placeholder, colorPlaceholder
	} else {
		text = tailFit(face, text, g.text.Dx())
	}

	m := face.Metrics()
	baseline := (g.text.Min.Y+g.text.Max.Y)/2 + (m.Ascent-m.Descent).Ceil()/2

	if spec.IsTextSelected && spec.DisplayText != "" {
		w := font.MeasureString(face, text).Ceil()
		pad := int(math.Round(selectionPadding * g.scale))
		sel := image.Rect(g.text.Min.X, baseline-m.Ascent.Ceil()-pad, g.text.Min.X+w, baseline+m.Descent.Ceil()+pad)
		fillRect(dst, sel.Intersect(g.text), colorSelection)
	}

	clip, ok := dst.SubImage(g.text).(*image.RGBA)
	if !ok {
		return nil
	}
	dr := font.Drawer{
		Dst:  clip,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(g.text.Min.X, baseline),
	}
	dr.DrawString(text)
	return nil
}

// tailFit drops leading characters until text fits width, like a scrolled input.
func tailFit(face font.Face, text string, width int) string {
	for text != "" && font.MeasureString(face, text).Ceil() > width {
		_, size := utf8.DecodeRuneInString(text)
		text = text[size:]
	}
	return text
}

func drawCentered(dst *image.RGBA, face font.Face, s string, r image.Rectangle, c color.Color) {
	w := font.MeasureString(face, s).Ceil()
	m := face.Metrics()
	x := r.Min.X + (r.Dx()-w)/2
	y := (r.Min.Y+r.Max.Y)/2 + (m.Ascent-m.Descent).Ceil()/2
	dr := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	dr.DrawString(s)
}
