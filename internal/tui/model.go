// Package tui is the live preview: a bubbletea program that hosts the live
// driver, blinks the cursor and can start an export in the background.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/ivlev/typing2video/internal/config"
	"github.com/ivlev/typing2video/internal/engine"
	"github.com/ivlev/typing2video/internal/live"
	"github.com/ivlev/typing2video/internal/sequence"
	"github.com/ivlev/typing2video/internal/typing"
)

// ExportFunc runs an export. It is called off the event loop.
type ExportFunc func(ctx context.Context, progress engine.ProgressFunc) (*engine.Result, error)

// Config wires runtime options into the preview.
type Config struct {
	Settings config.Settings
	Seed     int64
	Autoplay bool
	Export   ExportFunc // nil disables the export key
}

type model struct {
	config   Config
	driver   *live.Driver
	state    typing.State
	cursor   *live.Cursor
	estimate time.Duration

	width  int
	height int

	progress  progress.Model
	exporting bool
	rendered  int
	total     int
	updates   chan tea.Msg
	cancel    context.CancelFunc
	exited    chan struct{} // closed when the export goroutine returns

	info   string
	errMsg string
}

// New returns a tea.Model ready to be mounted into a Program.
func New(cfg Config) tea.Model {
	return newModel(cfg)
}

func newModel(cfg Config) *model {
	seq := cfg.Settings.Sequence()
	timing := cfg.Settings.Timing()

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = defaultWidth / 2

	m := &model{
		config:   cfg,
		cursor:   live.NewCursor(),
		state:    typing.Initial(),
		estimate: sequence.EstimateDuration(seq, timing),
		progress: bar,
		width:    defaultWidth,
		info:     "space: play/pause  r: reset  e: export  q: quit",
	}
	m.driver = live.NewDriver(typing.New(seq, timing, typing.NewRand(cfg.Seed)), m)
	return m
}

// Publish receives every state the driver accepts.
func (m *model) Publish(s typing.State) { m.state = s }

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{blink()}
	if m.config.Autoplay {
		cmds = append(cmds, m.play())
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.progress.Width = max(10, msg.Width/2)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case stepMsg:
		if next, ok := m.driver.Fire(msg.tick); ok {
			return m, schedule(next)
		}
		return m, nil

	case blinkMsg:
		m.cursor.Toggle()
		return m, blink()

	case exportProgressMsg:
		m.rendered, m.total = msg.rendered, msg.total
		return m, waitExport(m.updates)

	case exportDoneMsg:
		m.finishExport(msg)
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.driver.Close()
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	case " ", "p":
		if m.driver.Running() {
			m.driver.Pause()
			return m, nil
		}
		return m, m.play()
	case "r":
		m.driver.Reset()
		return m, nil
	case "e":
		return m, m.startExport()
	}
	return m, nil
}

func (m *model) play() tea.Cmd {
	tick, ok := m.driver.Play()
	if !ok {
		if m.driver.Sequence().Empty() {
			m.errMsg = "nothing to play: the string list is empty"
		}
		return nil
	}
	m.errMsg = ""
	return schedule(tick)
}

func (m *model) startExport() tea.Cmd {
	if m.exporting || m.config.Export == nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan tea.Msg, 16)
	m.updates = updates
	m.cancel = cancel
	m.exporting = true
	m.rendered, m.total = 0, 0
	m.errMsg = ""

	exited := make(chan struct{})
	m.exited = exited

	run := m.config.Export
	go func() {
		defer close(exited)
		res, err := run(ctx, func(rendered, total int) {
			// Intermediate updates may be dropped; the final result is not.
			select {
			case updates <- exportProgressMsg{rendered: rendered, total: total}:
			default:
			}
		})
		// Nobody reads updates after a quit; the cancelled context releases the send.
		select {
		case updates <- exportDoneMsg{result: res, err: err}:
		case <-ctx.Done():
		}
	}()
	return waitExport(updates)
}

// finishExport clears the progress line whatever the outcome.
func (m *model) finishExport(msg exportDoneMsg) {
	m.exporting = false
	m.rendered, m.total = 0, 0
	m.updates = nil
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	switch {
	case errors.Is(msg.err, context.Canceled):
		m.info = "export cancelled"
	case msg.err != nil:
		log.Error().Err(msg.err).Msg("export failed")
		m.errMsg = fmt.Sprintf("export failed: %v", msg.err)
	default:
		m.info = fmt.Sprintf("exported %d frames to %s", msg.result.Frames, msg.result.Path)
	}
}

func schedule(t live.Tick) tea.Cmd {
	return tea.Tick(t.Delay, func(time.Time) tea.Msg { return stepMsg{tick: t} })
}

func blink() tea.Cmd {
	return tea.Tick(live.BlinkInterval, func(time.Time) tea.Msg { return blinkMsg{} })
}

func waitExport(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg { return <-ch }
}
