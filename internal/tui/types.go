package tui

import (
	"github.com/ivlev/typing2video/internal/engine"
	"github.com/ivlev/typing2video/internal/live"
)

// stepMsg delivers a scheduled transition back to the driver.
type stepMsg struct {
	tick live.Tick
}

type blinkMsg struct{}

type exportProgressMsg struct {
	rendered int
	total    int
}

type exportDoneMsg struct {
	result *engine.Result
	err    error
}

const (
	minBoxWidth  = 24
	maxBoxWidth  = 64
	headerRows   = 2
	footerRows   = 2
	selectionBg  = "#bfdbfe"
	cursorColor  = "#2563eb"
	ellipsis     = "…"
	cursorGlyph  = "│"
	defaultWidth = 80
)

// rowScale maps reference units to terminal rows: the 66 unit search box
// becomes a 3 row bordered box.
const rowScale = 3.0 / 66
