// Package layout holds the vertical layout math shared by the bitmap and the
// terminal renderers. Heights are in abstract units: pixels for bitmaps, rows
// for the terminal.
package layout

import "math"

type Kind int

const (
	Title Kind = iota
	SearchBox
	Buttons
)

// Element is one block of the page.
type Element struct {
	Kind         Kind
	Height       int
	MarginTop    int
	MarginBottom int
}

func (e Element) outer() int { return e.Height + e.MarginTop + e.MarginBottom }

// Placement is the resolved top edge of an element.
type Placement struct {
	Kind   Kind
	Y      int
	Height int
}

// Reference metrics of the page at a 672 unit wide card.
const (
	ReferenceWidth = 672

	titleHeight   = 60
	titleMargin   = 48
	boxHeight     = 66
	buttonsHeight = 46
	buttonsMargin = 48

	BoxMaxWidth    = 512
	CardPadding    = 48
	BoxPaddingX    = 24
	TitleFontSize  = 60
	TextFontSize   = 18
	IconFontSize   = 24
	ButtonFontSize = 14
	ButtonPaddingX = 32
	ButtonGap      = 16
)

// Height returns the total height of the block formed by elems.
func Height(elems []Element) int {
	total := 0
	for _, e := range elems {
		total += e.outer()
	}
	return total
}

// Stack centres elems vertically inside a container of the given height.
func Stack(container int, elems []Element) []Placement {
	y := (container - Height(elems)) / 2
	if y < 0 {
		y = 0
	}
	out := make([]Placement, 0, len(elems))
	for _, e := range elems {
		y += e.MarginTop
		out = append(out, Placement{Kind: e.Kind, Y: y, Height: e.Height})
		y += e.Height + e.MarginBottom
	}
	return out
}

// Page builds the element list for the search page, scaled by scale.
func Page(showTitle, showButtons bool, scale float64) []Element {
	s := func(v int) int { return int(math.Round(float64(v) * scale)) }

	var elems []Element
	if showTitle {
		elems = append(elems, Element{Kind: Title, Height: s(titleHeight), MarginBottom: s(titleMargin)})
	}
	elems = append(elems, Element{Kind: SearchBox, Height: s(boxHeight)})
	if showButtons {
		elems = append(elems, Element{Kind: Buttons, Height: s(buttonsHeight), MarginTop: s(buttonsMargin)})
	}
	return elems
}

// Scale returns the factor mapping reference units onto a width x height surface.
func Scale(width, height int) float64 {
	side := width
	if height < side {
		side = height
	}
	return float64(side) / ReferenceWidth
}
