// Package engine exports the typing animation to a video file on a virtual
// frame clock, independent of how long each transition takes in real time.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/typing2video/internal/config"
	"github.com/ivlev/typing2video/internal/renderer"
	"github.com/ivlev/typing2video/internal/sequence"
	"github.com/ivlev/typing2video/internal/system"
	"github.com/ivlev/typing2video/internal/timeline"
	"github.com/ivlev/typing2video/internal/typing"
	"github.com/ivlev/typing2video/internal/video"
)

// maxStepsPerFrame bounds the transitions applied within one frame so that
// zero delays cannot spin the clock forever.
const maxStepsPerFrame = 1024

var ErrEmptySequence = errors.New("sequence has no strings")

// Encoder opens the recording backend.
type Encoder interface {
	Open(ctx context.Context, out video.Output) (video.Recorder, error)
}

// FrameDrawer rasterizes one frame. It is only called from a single goroutine.
type FrameDrawer interface {
	Draw(dst *image.RGBA, spec renderer.FrameSpec) error
}

// ProgressFunc receives the number of encoded frames and the estimated total.
type ProgressFunc func(rendered, total int)

type Project struct {
	Config   config.Config
	Settings config.Settings
	Encoder  Encoder
	Drawer   FrameDrawer
	// Jitter overrides the seeded typing jitter.
	Jitter typing.Jitter
}

func NewProject(cfg config.Config, settings config.Settings, ve Encoder, drawer FrameDrawer) *Project {
	return &Project{
		Config:   cfg,
		Settings: settings,
		Encoder:  ve,
		Drawer:   drawer,
	}
}

// Result describes a finished export.
type Result struct {
	Path     string
	Codec    video.Codec
	Frames   int // frames written, hold frames included
	Estimate int
	Stopped  bool // the animation reached its end
	Forced   bool // the safety timer cut the loop short
	Virtual  time.Duration
	Elapsed  time.Duration
	Timeline *timeline.Timeline
}

type frame struct {
	img *image.RGBA
}

// Run simulates the whole sequence and records it. Frames are produced and
// rasterized in order on one goroutine and encoded on another.
func (p *Project) Run(ctx context.Context, progress ProgressFunc) (*Result, error) {
	startTime := time.Now()
	if progress == nil {
		progress = func(int, int) {}
	}

	if err := p.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	seq := p.Settings.Sequence()
	if seq.Empty() {
		return nil, ErrEmptySequence
	}
	timing := p.Settings.Timing()
	fps := p.Config.FPS

	base, err := p.Settings.FrameSpec(p.Config.Width, p.Config.Height)
	if err != nil {
		return nil, err
	}

	jitter := p.Jitter
	if jitter == nil {
		jitter = typing.NewRand(p.Config.Seed)
	}
	machine := typing.New(seq, timing, jitter)

	totalFrames := EstimateFrames(seq, timing, fps)
	delta := FrameInterval(fps)

	if dir := filepath.Dir(p.Config.OutputVideo); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	rec, err := p.Encoder.Open(ctx, video.Output{
		Path:   p.Config.OutputVideo,
		Width:  p.Config.Width,
		Height: p.Config.Height,
		FPS:    fps,
	})
	if err != nil {
		return nil, fmt.Errorf("open recorder: %w", err)
	}

	log.Info().
		Str("output", rec.Path()).
		Str("codec", rec.Codec().Name).
		Int("strings", seq.Len()).
		Int("estimate_frames", totalFrames).
		Str("estimate", sequence.FormatDuration(sequence.EstimateDuration(seq, timing))).
		Msgf("export %dx%d @ %d fps", p.Config.Width, p.Config.Height, fps)

	// Wall-clock safety net: twice the estimated duration by default.
	var forced atomic.Bool
	safety := time.Duration(float64(time.Duration(totalFrames)*delta) * p.Config.SafetyFactor)
	timer := time.AfterFunc(safety, func() { forced.Store(true) })

	tl := timeline.New(fps, p.Config.Seed, seq.Strings)
	res := &Result{Estimate: totalFrames, Timeline: tl, Path: rec.Path(), Codec: rec.Codec()}

	frames := make(chan frame, 8)
	g, gctx := errgroup.WithContext(ctx)

	// Producer: virtual clock, state machine, rasterizer.
	g.Go(func() error {
		defer close(frames)

		emit := func(s typing.State) error {
			if err := gctx.Err(); err != nil {
				return err
			}
			spec := base
			spec.DisplayText = s.Text
			spec.IsTextSelected = s.IsTextSelected()
			img := system.GetImage(image.Rect(0, 0, p.Config.Width, p.Config.Height))
			if err := p.Drawer.Draw(img, spec); err != nil {
				system.PutImage(img)
				return fmt.Errorf("draw: %w", err)
			}
			select {
			case frames <- frame{img: img}:
				return nil
			case <-gctx.Done():
				system.PutImage(img)
				return gctx.Err()
			}
		}

		state := typing.Initial()
		state.Running = true
		tl.Record(0, 0, state)

		var clock, acc time.Duration
		pending := machine.Delay(state)
		n := 0
		// A finite sequence runs on to Stopped so the video ends where the live
		// preview does; only a looping one is cut at the estimate.
		for ; !state.Stopped() && (!seq.Policy.Loop || n < totalFrames); n++ {
			if forced.Load() {
				res.Forced = true
				break
			}
			next := frameTime(n, fps)
			acc += next - clock
			clock = next
			for steps := 0; acc >= pending && steps < maxStepsPerFrame; steps++ {
				acc -= pending
				tr := machine.Step(state)
				state = tr.State
				tl.Record(n, clock-acc, state)
				if tr.Terminal {
					break
				}
				pending = tr.Delay
			}
			if err := emit(state); err != nil {
				return err
			}
		}
		timer.Stop()
		res.Stopped = state.Stopped()
		res.Virtual = clock

		if res.Forced {
			log.Warn().Int("frames", n).Dur("timeout", safety).Msg("safety timeout reached, finalizing captured frames")
		}

		for i := 0; i < fps; i++ {
			if err := emit(state); err != nil {
				return err
			}
		}
		return nil
	})

	// Consumer: encoder.
	g.Go(func() error {
		for f := range frames {
			err := rec.WriteFrame(f.img)
			system.PutImage(f.img)
			if err != nil {
				return err
			}
			res.Frames++
			progress(res.Frames, totalFrames)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		timer.Stop()
		rec.Abort()
		return nil, err
	}
	if err := rec.Close(); err != nil {
		return nil, fmt.Errorf("finalize video: %w", err)
	}

	final := max(res.Frames, totalFrames)
	progress(final, final)
	res.Elapsed = time.Since(startTime)

	if p.Config.TimelinePath != "" {
		if err := timeline.Write(tl, p.Config.TimelinePath); err != nil {
			log.Warn().Err(err).Str("path", p.Config.TimelinePath).Msg("не удалось записать таймлайн")
		}
	}

	log.Info().
		Str("output", res.Path).
		Int("frames", res.Frames).
		Bool("forced", res.Forced).
		Dur("elapsed", res.Elapsed).
		Msg("export finished")

	if p.Config.ShowStats {
		p.report(ctx, res)
	}
	return res, nil
}
