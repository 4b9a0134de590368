package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/ivlev/typing2video/internal/engine"
	"github.com/ivlev/typing2video/internal/layout"
	"github.com/ivlev/typing2video/internal/renderer"
	"github.com/ivlev/typing2video/internal/sequence"
)

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1f2937"))
	helperStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1f2937"))
	boxStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#e5e7eb")).Padding(0, 1)
	textStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#111827"))
	selectedStyle    = textStyle.Copy().Background(lipgloss.Color(selectionBg))
	placeholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#d1d5db"))
	cursorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(cursorColor))
	buttonStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")).Background(lipgloss.Color("#f9fafb")).Padding(0, 2)
)

func (m *model) View() string {
	parts := []string{m.headerView(), m.pageView()}
	if line := m.progressView(); line != "" {
		parts = append(parts, line)
	}
	if m.errMsg != "" {
		parts = append(parts, errorStyle.Render(m.errMsg))
	}
	if m.info != "" {
		parts = append(parts, helperStyle.Render(m.info))
	}
	return strings.Join(parts, "\n")
}

func (m *model) headerView() string {
	seq := m.driver.Sequence()
	status := "paused"
	switch {
	case m.state.Stopped():
		status = "stopped"
	case m.state.Running:
		status = "playing"
	}
	head := headerStyle.Render(fmt.Sprintf("typing2video · %d strings · ~%s", seq.Len(), sequence.FormatDuration(m.estimate)))
	flags := helperStyle.Render(fmt.Sprintf("%s · %s · string %d/%d", status, policyLabel(seq.Policy), m.state.StringIndex+1, max(seq.Len(), 1)))
	return head + "\n" + flags
}

func policyLabel(p sequence.Policy) string {
	var labels []string
	if p.Loop {
		labels = append(labels, "loop")
	}
	if p.KeepLastString {
		labels = append(labels, "keep last")
	}
	if p.FastDelete {
		labels = append(labels, "fast delete")
	}
	if len(labels) == 0 {
		return "single pass"
	}
	return strings.Join(labels, ", ")
}

// pageView lays out title, box and buttons with the same vertical rules as the
// exported frames, in terminal rows.
func (m *model) pageView() string {
	s := m.config.Settings
	rows := m.height - headerRows - footerRows
	elems := layout.Page(s.ShowTitle, s.ShowButtons, rowScale)
	if rows < layout.Height(elems) {
		rows = layout.Height(elems)
	}

	lines := make([]string, 0, rows)
	for _, p := range layout.Stack(rows, elems) {
		for len(lines) < p.Y {
			lines = append(lines, "")
		}
		block := m.element(p.Kind)
		blockLines := strings.Split(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, block), "\n")
		for i := 0; i < p.Height; i++ {
			if i < len(blockLines) {
				lines = append(lines, blockLines[i])
			} else {
				lines = append(lines, "")
			}
		}
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m *model) element(k layout.Kind) string {
	switch k {
	case layout.Title:
		return titleStyle.Render(renderer.TitleText)
	case layout.Buttons:
		return buttonStyle.Render(renderer.PrimaryButton) + "  " + buttonStyle.Render(renderer.SecondaryButton)
	default:
		return m.searchBox()
	}
}

func (m *model) boxWidth() int {
	w := m.width - 4
	if w > maxBoxWidth {
		w = maxBoxWidth
	}
	if w < minBoxWidth {
		w = minBoxWidth
	}
	return w
}

// searchBox renders the input line: icon, text or placeholder, and the cursor.
func (m *model) searchBox() string {
	s := m.config.Settings
	inner := m.boxWidth() - 4 // border and padding
	icon := s.Icon
	iconW := runewidth.StringWidth(icon)
	avail := inner - iconW - 1 - runewidth.StringWidth(cursorGlyph)

	var content string
	if m.state.Text == "" {
		content = m.cursorView() + placeholderStyle.Render(runewidth.Truncate(s.Placeholder, avail, ellipsis))
	} else {
		style := textStyle
		if m.state.IsTextSelected() {
			style = selectedStyle
		}
		content = style.Render(tailTruncate(m.state.Text, avail)) + m.cursorView()
	}

	pad := inner - iconW - 1 - lipgloss.Width(content)
	if pad < 0 {
		pad = 0
	}
	var line string
	if s.IconPosition == renderer.IconRight {
		line = content + strings.Repeat(" ", pad) + " " + icon
	} else {
		line = icon + " " + content + strings.Repeat(" ", pad)
	}
	return boxStyle.Width(m.boxWidth() - 2).Render(line)
}

func (m *model) cursorView() string {
	if !m.cursor.Visible {
		return " "
	}
	return cursorStyle.Render(cursorGlyph)
}

// tailTruncate keeps the end of s within width cells, the part being typed.
func tailTruncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	w := runewidth.StringWidth(ellipsis)
	i := len(runes)
	for i > 0 {
		rw := runewidth.RuneWidth(runes[i-1])
		if w+rw > width {
			break
		}
		w += rw
		i--
	}
	return ellipsis + string(runes[i:])
}

func (m *model) progressView() string {
	if !m.exporting {
		return ""
	}
	pct := engine.Percent(m.rendered, m.total)
	return fmt.Sprintf("exporting %s %d/%d", m.progress.ViewAs(pct), m.rendered, m.total)
}
