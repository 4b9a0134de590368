// Package live paces the animation machine against the wall clock.
//
// The driver does not own a timer. Play and Fire hand back a Tick describing
// the single pending continuation; the host event loop sleeps Tick.Delay and
// passes the Tick back to Fire. Pause, Reset and Close invalidate the
// outstanding Tick, so a continuation that arrives late is dropped.
package live

import (
	"time"

	"github.com/ivlev/typing2video/internal/sequence"
	"github.com/ivlev/typing2video/internal/typing"
)

// Surface receives every state the driver publishes.
type Surface interface {
	Publish(s typing.State)
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(s typing.State)

func (f SurfaceFunc) Publish(s typing.State) { f(s) }

// Tick is the one outstanding scheduled transition.
type Tick struct {
	Gen   uint64
	Delay time.Duration
}

type Driver struct {
	machine *typing.Machine
	surface Surface
	state   typing.State
	gen     uint64
	pending bool
	closed  bool
}

func NewDriver(m *typing.Machine, surface Surface) *Driver {
	if surface == nil {
		surface = SurfaceFunc(func(typing.State) {})
	}
	return &Driver{
		machine: m,
		surface: surface,
		state:   typing.Initial(),
	}
}

// Snapshot returns the last published state.
func (d *Driver) Snapshot() typing.State { return d.state }

func (d *Driver) Running() bool { return d.state.Running }

// Play starts or resumes the animation and returns the first tick to schedule.
// It refuses to start an empty sequence. A stopped animation restarts from the top.
func (d *Driver) Play() (Tick, bool) {
	if d.closed || d.machine.Sequence().Empty() || d.state.Running {
		return Tick{}, false
	}
	if d.state.Stopped() {
		d.state = typing.Initial()
	}
	d.state.Running = true
	d.surface.Publish(d.state)
	return d.schedule(d.machine.Delay(d.state)), true
}

// Pause cancels the pending tick and leaves the state exactly as last published.
func (d *Driver) Pause() {
	d.cancel()
	if d.state.Running {
		d.state.Running = false
		d.surface.Publish(d.state)
	}
}

// Reset cancels the pending tick and returns to the initial state.
func (d *Driver) Reset() {
	d.cancel()
	d.state = typing.Initial()
	d.surface.Publish(d.state)
}

// Close cancels the pending tick for good; later Play calls are refused.
func (d *Driver) Close() {
	d.cancel()
	d.closed = true
}

// Fire runs the transition t was scheduled for. Stale ticks are ignored.
// It returns the next tick when the animation continues.
func (d *Driver) Fire(t Tick) (Tick, bool) {
	if !d.pending || t.Gen != d.gen || !d.state.Running {
		return Tick{}, false
	}
	d.pending = false

	tr := d.machine.Step(d.state)
	d.state = tr.State
	d.surface.Publish(d.state)
	if tr.Terminal {
		return Tick{}, false
	}
	return d.schedule(tr.Delay), true
}

func (d *Driver) schedule(delay time.Duration) Tick {
	d.gen++
	d.pending = true
	return Tick{Gen: d.gen, Delay: delay}
}

func (d *Driver) cancel() {
	d.gen++
	d.pending = false
}

// Sequence exposes the sequence the driver plays.
func (d *Driver) Sequence() sequence.Sequence { return d.machine.Sequence() }
