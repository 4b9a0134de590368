package engine

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/typing2video/internal/config"
	"github.com/ivlev/typing2video/internal/live"
	"github.com/ivlev/typing2video/internal/renderer"
	"github.com/ivlev/typing2video/internal/sequence"
	"github.com/ivlev/typing2video/internal/timeline"
	"github.com/ivlev/typing2video/internal/typing"
	"github.com/ivlev/typing2video/internal/video"
)

type fakeRecorder struct {
	frames  int
	failAt  int
	closed  bool
	aborted bool
}

func (r *fakeRecorder) WriteFrame(img *image.RGBA) error {
	if r.failAt > 0 && r.frames == r.failAt {
		return errors.New("broken pipe")
	}
	r.frames++
	return nil
}

func (r *fakeRecorder) Close() error { r.closed = true; return nil }
func (r *fakeRecorder) Abort()       { r.aborted = true }
func (r *fakeRecorder) Path() string { return "fake.mp4" }
func (r *fakeRecorder) Codec() video.Codec {
	return video.Codec{Name: "fake", Ext: "mp4"}
}

type fakeEncoder struct {
	rec    *fakeRecorder
	err    error
	opened int
	out    video.Output
}

func (e *fakeEncoder) Open(ctx context.Context, out video.Output) (video.Recorder, error) {
	e.opened++
	e.out = out
	if e.err != nil {
		return nil, e.err
	}
	return e.rec, nil
}

type fakeDrawer struct {
	mu    sync.Mutex
	specs []renderer.FrameSpec
	sleep time.Duration
}

func (d *fakeDrawer) Draw(dst *image.RGBA, spec renderer.FrameSpec) error {
	if d.sleep > 0 {
		time.Sleep(d.sleep)
	}
	d.mu.Lock()
	d.specs = append(d.specs, spec)
	d.mu.Unlock()
	return nil
}

func (d *fakeDrawer) last() renderer.FrameSpec {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.specs[len(d.specs)-1]
}

func testSettings(strs ...string) config.Settings {
	s := config.DefaultSettings()
	s.Strings = strs
	s.TypingSpeed = 100
	s.DeleteSpeed = 50
	s.PauseBetween = 800
	return s
}

func newTestProject(t *testing.T, s config.Settings) (*Project, *fakeEncoder, *fakeDrawer) {
	cfg := config.DefaultConfig()
	cfg.Width, cfg.Height = 64, 64
	cfg.OutputVideo = filepath.Join(t.TempDir(), "out")
	enc := &fakeEncoder{rec: &fakeRecorder{}}
	drawer := &fakeDrawer{}
	p := NewProject(cfg, s, enc, drawer)
	p.Jitter = typing.NoJitter{}
	return p, enc, drawer
}

func TestEstimateFrames(t *testing.T) {
	timing := sequence.NewTiming(100, 50, 800)
	tests := []struct {
		name   string
		strs   []string
		policy sequence.Policy
		want   int
	}{
		// typing 6 + deleting 3 + pause 24 + hold 30
		{"single", []string{"ab"}, sequence.Policy{}, 63},
		{"fast delete adds selection", []string{"ab"}, sequence.Policy{FastDelete: true}, 69},
		{"kept last string", []string{"ab"}, sequence.Policy{KeepLastString: true}, 36},
		{"kept only applies to last", []string{"ab", "ab"}, sequence.Policy{KeepLastString: true}, 33 + 6 + 30},
		{"loop ignores keep", []string{"ab"}, sequence.Policy{KeepLastString: true, Loop: true}, 63},
		{"runes", []string{"héé"}, sequence.Policy{}, 9 + 5 + 24 + 30},
		{"empty", nil, sequence.Policy{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := sequence.Sequence{Strings: tt.strs, Policy: tt.policy}
			assert.Equal(t, tt.want, EstimateFrames(seq, timing, 30))
		})
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(0, 0))
	assert.Equal(t, 0.5, Percent(5, 10))
	assert.Equal(t, 1.0, Percent(12, 10))
	assert.Equal(t, 0.0, Percent(-1, 10))
}

func TestRunStopsAtEndOfSequence(t *testing.T) {
	p, enc, drawer := newTestProject(t, testSettings("ab"))

	var calls [][2]int
	res, err := p.Run(context.Background(), func(rendered, total int) {
		calls = append(calls, [2]int{rendered, total})
	})
	require.NoError(t, err)

	// Stop lands at 1250ms, i.e. on frame 38; then one second of hold.
	assert.True(t, res.Stopped)
	assert.False(t, res.Forced)
	assert.Equal(t, 63, res.Estimate)
	assert.Equal(t, 38+30, res.Frames)
	assert.Equal(t, 38+30, enc.rec.frames)
	assert.True(t, enc.rec.closed)
	assert.False(t, enc.rec.aborted)
	assert.Equal(t, 30, enc.out.FPS)
	assert.Equal(t, 64, enc.out.Width)

	require.Len(t, calls, res.Frames+1)
	assert.Equal(t, [2]int{1, 63}, calls[0])
	assert.Equal(t, [2]int{68, 68}, calls[len(calls)-1])

	assert.Empty(t, drawer.last().DisplayText)

	events := res.Timeline.Events
	require.Len(t, events, 8)
	assert.Equal(t, "stopped", events[7].Phase)
	assert.EqualValues(t, 1250, events[7].TimeMs)
	assert.EqualValues(t, 300, events[3].TimeMs)
	assert.Equal(t, "pausing", events[3].Phase)
}

func TestRunKeepLastStringHoldsText(t *testing.T) {
	s := testSettings("ab")
	s.KeepLastString = true
	p, _, drawer := newTestProject(t, s)

	res, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.Equal(t, "ab", drawer.last().DisplayText)
	for _, e := range res.Timeline.Events {
		assert.NotEqual(t, "deleting", e.Phase)
		assert.NotEqual(t, "selecting", e.Phase)
	}
}

func TestRunFastDeleteRendersSelection(t *testing.T) {
	s := testSettings("ab")
	s.FastDelete = true
	p, _, drawer := newTestProject(t, s)

	_, err := p.Run(context.Background(), nil)
	require.NoError(t, err)

	selected := 0
	for _, spec := range drawer.specs {
		if spec.IsTextSelected {
			selected++
			assert.Equal(t, "ab", spec.DisplayText)
		}
	}
	// 200ms of selection at 30 fps.
	assert.Equal(t, 6, selected)
}

func TestRunLoopReachesEstimate(t *testing.T) {
	s := testSettings("ab", "cd")
	s.LoopAnimation = true
	p, _, _ := newTestProject(t, s)
	p.Jitter = typing.NewRand(1)

	res, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, res.Stopped)
	assert.False(t, res.Forced)
	assert.Equal(t, res.Estimate+30, res.Frames)
}

func TestRunSafetyTimeoutForcesCompletion(t *testing.T) {
	s := testSettings("abcdefghijklmnopqrstuvwxyz")
	s.LoopAnimation = true
	p, enc, drawer := newTestProject(t, s)
	p.Config.SafetyFactor = 1e-9
	drawer.sleep = 2 * time.Millisecond

	res, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, res.Forced)
	assert.Less(t, res.Frames, res.Estimate)
	assert.GreaterOrEqual(t, res.Frames, 30)
	assert.True(t, enc.rec.closed)
}

func TestRunEmptySequence(t *testing.T) {
	p, enc, _ := newTestProject(t, testSettings())
	_, err := p.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptySequence)
	assert.Zero(t, enc.opened)
}

func TestRunRecorderOpenFailure(t *testing.T) {
	p, enc, drawer := newTestProject(t, testSettings("ab"))
	enc.err = video.ErrNoCodec

	progressed := false
	_, err := p.Run(context.Background(), func(int, int) { progressed = true })
	assert.ErrorIs(t, err, video.ErrNoCodec)
	assert.False(t, progressed)
	assert.Empty(t, drawer.specs)
}

func TestRunWriteFailureAborts(t *testing.T) {
	p, enc, _ := newTestProject(t, testSettings("ab"))
	enc.rec.failAt = 5

	_, err := p.Run(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, enc.rec.aborted)
	assert.False(t, enc.rec.closed)
}

func TestRunCancelled(t *testing.T) {
	p, enc, _ := newTestProject(t, testSettings("ab"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, nil)
	require.Error(t, err)
	assert.True(t, enc.rec.aborted)
}

func TestRunWritesTimeline(t *testing.T) {
	p, _, _ := newTestProject(t, testSettings("ab"))
	p.Config.TimelinePath = filepath.Join(t.TempDir(), "timeline.yaml")

	res, err := p.Run(context.Background(), nil)
	require.NoError(t, err)

	got, err := timeline.Read(p.Config.TimelinePath)
	require.NoError(t, err)
	assert.Equal(t, res.Timeline.Events, got.Events)
}

type surface struct{ states []typing.State }

func (s *surface) Publish(st typing.State) { s.states = append(s.states, st) }

// The exporter must render the same state sequence the live driver publishes.
func TestExportMatchesLiveDriver(t *testing.T) {
	s := testSettings("ab", "cd")
	s.FastDelete = true
	const seed = 42

	surf := &surface{}
	d := live.NewDriver(typing.New(s.Sequence(), s.Timing(), typing.NewRand(seed)), surf)
	tick, ok := d.Play()
	for ok {
		tick, ok = d.Fire(tick)
	}

	p, _, _ := newTestProject(t, s)
	p.Jitter = nil
	p.Config.Seed = seed
	res, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, res.Stopped)

	events := res.Timeline.Events
	require.Len(t, events, len(surf.states))
	for i, st := range surf.states {
		e := events[i]
		assert.Equal(t, st.Phase.String(), e.Phase, "step %d", i)
		assert.Equal(t, st.StringIndex, e.StringIndex, "step %d", i)
		assert.Equal(t, st.CharIndex, e.CharIndex, "step %d", i)
		assert.Equal(t, st.Text, e.Text, "step %d", i)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero config", func(c *config.Config) { *c = config.Config{Width: 64, Height: 64} }},
		{"zero fps", func(c *config.Config) { c.FPS = 0 }},
		{"zero safety factor", func(c *config.Config) { c.SafetyFactor = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, enc, drawer := newTestProject(t, testSettings("ab"))
			tt.mutate(&p.Config)

			res, err := p.Run(context.Background(), nil)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Contains(t, err.Error(), "invalid config")
			assert.Zero(t, enc.opened)
			assert.Empty(t, drawer.specs)
		})
	}
}

// Jitter and the extra step per phase push a finite run past the estimate;
// the export still has to end on the same final state as the live preview.
func TestRunFiniteSequenceReachesStopPastEstimate(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		s := config.DefaultSettings()

		surf := &surface{}
		d := live.NewDriver(typing.New(s.Sequence(), s.Timing(), typing.NewRand(seed)), surf)
		tick, ok := d.Play()
		for ok {
			tick, ok = d.Fire(tick)
		}

		p, _, drawer := newTestProject(t, s)
		p.Jitter = nil
		p.Config.Seed = seed
		res, err := p.Run(context.Background(), nil)
		require.NoError(t, err)

		assert.True(t, res.Stopped, "seed %d", seed)
		assert.False(t, res.Forced, "seed %d", seed)
		assert.Greater(t, res.Frames, res.Estimate, "seed %d", seed)
		assert.Empty(t, drawer.last().DisplayText, "seed %d", seed)
		assert.Len(t, res.Timeline.Events, len(surf.states), "seed %d", seed)
	}
}
