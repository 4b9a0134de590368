package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/typing2video/internal/config"
	"github.com/ivlev/typing2video/internal/engine"
	"github.com/ivlev/typing2video/internal/typing"
)

func newTestModel(t *testing.T, strs ...string) *model {
	t.Helper()
	s := config.DefaultSettings()
	s.Strings = strs
	m := newModel(Config{Settings: s, Seed: 1})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSpaceTogglesPlayback(t *testing.T) {
	m := newTestModel(t, "ab")

	_, cmd := m.Update(key(" "))
	require.NotNil(t, cmd)
	assert.True(t, m.state.Running)

	_, cmd = m.Update(key(" "))
	assert.Nil(t, cmd)
	assert.False(t, m.state.Running)
	assert.Equal(t, typing.Typing, m.state.Phase)
}

func TestStepAdvancesAndStaleStepIsIgnored(t *testing.T) {
	m := newTestModel(t, "ab")
	tick, ok := m.driver.Play()
	require.True(t, ok)

	_, cmd := m.Update(stepMsg{tick: tick})
	require.NotNil(t, cmd)
	assert.Equal(t, "a", m.state.Text)

	// The tick above has been consumed; replaying it must not advance.
	m.Update(stepMsg{tick: tick})
	assert.Equal(t, "a", m.state.Text)

	m.Update(key("r"))
	assert.Equal(t, typing.Initial(), m.state)
}

func TestBlinkRunsIndependently(t *testing.T) {
	m := newTestModel(t, "ab")
	visible := m.cursor.Visible
	_, cmd := m.Update(blinkMsg{})
	assert.NotNil(t, cmd)
	assert.NotEqual(t, visible, m.cursor.Visible)
	assert.False(t, m.state.Running)
}

func TestPlayEmptyShowsError(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(key(" "))
	assert.Nil(t, cmd)
	assert.False(t, m.state.Running)
	assert.Contains(t, m.errMsg, "empty")
}

func TestViewShowsPlaceholderThenText(t *testing.T) {
	m := newTestModel(t, "ab")
	view := m.View()
	assert.Contains(t, view, "Search Google")
	assert.Contains(t, view, "I'm Feeling Lucky")
	assert.Contains(t, view, "~")

	m.Publish(typing.State{Phase: typing.Typing, CharIndex: 2, Text: "ab", Running: true})
	view = m.View()
	assert.NotContains(t, view, "Search Google")
	assert.Contains(t, view, "ab")
	assert.Contains(t, view, "playing")
}

func TestViewKeepsHeightWithinTerminal(t *testing.T) {
	m := newTestModel(t, "ab")
	lines := strings.Split(m.pageView(), "\n")
	assert.Equal(t, 24-headerRows-footerRows, len(lines))
}

func drainExport(t *testing.T, m *model, cmd tea.Cmd) {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		_, cmd = m.Update(msg)
		if _, done := msg.(exportDoneMsg); done {
			return
		}
	}
}

func TestExportClearsProgressOnSuccess(t *testing.T) {
	m := newTestModel(t, "ab")
	m.config.Export = func(ctx context.Context, progress engine.ProgressFunc) (*engine.Result, error) {
		progress(1, 4)
		progress(4, 4)
		return &engine.Result{Path: "output/x.mp4", Frames: 4}, nil
	}

	_, cmd := m.Update(key("e"))
	require.NotNil(t, cmd)
	assert.True(t, m.exporting)

	// A second export request while one runs is ignored.
	_, again := m.Update(key("e"))
	assert.Nil(t, again)

	drainExport(t, m, cmd)
	assert.False(t, m.exporting)
	assert.Empty(t, m.progressView())
	assert.Contains(t, m.info, "output/x.mp4")
}

func TestExportClearsProgressOnFailure(t *testing.T) {
	m := newTestModel(t, "ab")
	m.config.Export = func(ctx context.Context, progress engine.ProgressFunc) (*engine.Result, error) {
		return nil, errors.New("no usable video encoder")
	}

	_, cmd := m.Update(key("e"))
	drainExport(t, m, cmd)
	assert.False(t, m.exporting)
	assert.Empty(t, m.progressView())
	assert.Contains(t, m.errMsg, "no usable video encoder")
}

func TestExportDisabledWithoutFunc(t *testing.T) {
	m := newTestModel(t, "ab")
	_, cmd := m.Update(key("e"))
	assert.Nil(t, cmd)
	assert.False(t, m.exporting)
}

func TestProgressViewClamps(t *testing.T) {
	m := newTestModel(t, "ab")
	m.exporting = true
	m.rendered, m.total = 120, 100
	assert.Contains(t, m.progressView(), "120/100")
	assert.Contains(t, m.progressView(), "100%")
}

func TestTailTruncate(t *testing.T) {
	assert.Equal(t, "hello", tailTruncate("hello", 10))
	assert.Equal(t, "…llo", tailTruncate("hello", 4))
	assert.Equal(t, "", tailTruncate("hello", 0))
	assert.Equal(t, "…界", tailTruncate("世界", 3))
}

func TestQuitClosesDriver(t *testing.T) {
	m := newTestModel(t, "ab")
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	_, ok := m.driver.Play()
	assert.False(t, ok)
}

func TestQuitDuringExportReleasesWorker(t *testing.T) {
	m := newTestModel(t, "ab")
	m.config.Export = func(ctx context.Context, progress engine.ProgressFunc) (*engine.Result, error) {
		// Fill the update buffer so a plain send would block.
		for i := 1; i <= 32; i++ {
			progress(i, 32)
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}

	_, cmd := m.Update(key("e"))
	require.NotNil(t, cmd)
	exited := m.exited

	_, quit := m.Update(key("q"))
	require.NotNil(t, quit)

	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("export goroutine still blocked after quit")
	}
}
