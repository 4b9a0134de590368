package engine

import (
	"time"

	"github.com/ivlev/typing2video/internal/sequence"
)

// FrameInterval is the nominal virtual time of one frame, rounded down to the nanosecond.
func FrameInterval(fps int) time.Duration {
	return time.Second / time.Duration(fps)
}

// EstimateFrames precomputes how many frames an export needs, using base
// delays only. One second of hold frames is included.
func EstimateFrames(seq sequence.Sequence, t sequence.Timing, fps int) int {
	if seq.Empty() || fps <= 0 {
		return 0
	}
	if t.FastDeleteSelect == 0 {
		t.FastDeleteSelect = sequence.DefaultFastDeleteSelect
	}

	total := 0
	for i := range seq.Strings {
		n := time.Duration(seq.RuneLen(i))
		total += frames(n*t.Typing, fps)

		if !seq.Kept(i) {
			total += frames(n*t.Deleting, fps)
			total += frames(t.Pause, fps)
			if seq.Policy.FastDelete {
				total += frames(t.FastDeleteSelect, fps)
			}
		}
	}
	return total + fps
}

// frames is ceil(d / Δ), computed as ceil(d*fps / 1s) so that Δ = 1000/fps ms
// is never truncated.
func frames(d time.Duration, fps int) int {
	if d <= 0 {
		return 0
	}
	scaled := d * time.Duration(fps)
	return int((scaled + time.Second - 1) / time.Second)
}

// frameTime is the virtual time at the end of frame n (zero-based).
func frameTime(n, fps int) time.Duration {
	return time.Duration(n+1) * time.Second / time.Duration(fps)
}

// Percent turns a progress report into a display fraction clamped to [0, 1].
func Percent(rendered, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(rendered) / float64(total)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
