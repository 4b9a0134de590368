package live

import "time"

// BlinkInterval is the period of the cursor visibility toggle.
const BlinkInterval = 530 * time.Millisecond

// Cursor is the free-running blink flag. It never looks at the typing state.
type Cursor struct {
	Visible bool
}

func NewCursor() *Cursor { return &Cursor{Visible: true} }

func (c *Cursor) Toggle() { c.Visible = !c.Visible }
