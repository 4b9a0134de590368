package typing

import (
	"time"

	"github.com/ivlev/typing2video/internal/sequence"
)

// Transition is the outcome of one step: the new state, the delay before the
// following step and whether the animation has ended.
type Transition struct {
	State    State
	Delay    time.Duration
	Terminal bool
}

// Machine computes transitions. It holds no animation state of its own, so the
// live driver and the exporter step it identically.
type Machine struct {
	seq    sequence.Sequence
	timing sequence.Timing
	jitter Jitter
}

// New assumes seq is non-empty; callers must refuse to play an empty sequence.
func New(seq sequence.Sequence, timing sequence.Timing, jitter Jitter) *Machine {
	if jitter == nil {
		jitter = NoJitter{}
	}
	if timing.FastDeleteSelect == 0 {
		timing.FastDeleteSelect = sequence.DefaultFastDeleteSelect
	}
	return &Machine{seq: seq, timing: timing, jitter: jitter}
}

func (m *Machine) Sequence() sequence.Sequence { return m.seq }

func (m *Machine) Timing() sequence.Timing { return m.timing }

// Delay returns how long the machine waits in s before stepping out of it.
// Typing delays carry a fresh jitter draw on every call.
func (m *Machine) Delay(s State) time.Duration {
	switch s.Phase {
	case Typing:
		return m.timing.Typing + m.jitter.Next(sequence.TypingJitter)
	case Pausing:
		return m.timing.Pause
	case SelectingForDelete:
		return m.timing.FastDeleteSelect
	case Deleting:
		return m.timing.Deleting
	default:
		return 0
	}
}

// Step applies one transition to s.
func (m *Machine) Step(s State) Transition {
	switch s.Phase {
	case Typing:
		if s.CharIndex < m.seq.RuneLen(s.StringIndex) {
			s.CharIndex++
			s.Text = m.seq.Prefix(s.StringIndex, s.CharIndex)
		} else {
			s.Phase = Pausing
		}
		return m.next(s)

	case Pausing:
		if m.stopAfterTyping(s) {
			return m.stop(s)
		}
		if m.seq.Policy.FastDelete {
			s.Phase = SelectingForDelete
		} else {
			s.Phase = Deleting
		}
		return m.next(s)

	case SelectingForDelete:
		// The whole string goes in one step.
		s.CharIndex = 0
		s.Text = ""
		return m.advance(s)

	case Deleting:
		if s.CharIndex > 0 {
			s.CharIndex--
			s.Text = m.seq.Prefix(s.StringIndex, s.CharIndex)
			return m.next(s)
		}
		return m.advance(s)

	default:
		return m.stop(s)
	}
}

func (m *Machine) next(s State) Transition {
	return Transition{State: s, Delay: m.Delay(s)}
}

func (m *Machine) stop(s State) Transition {
	s.Phase = Stopped
	s.Running = false
	return Transition{State: s, Terminal: true}
}

// stopAfterTyping: the last string of a non-looping sequence is kept on screen.
func (m *Machine) stopAfterTyping(s State) bool {
	p := m.seq.Policy
	return p.KeepLastString && m.seq.IsLast(s.StringIndex) && !p.Loop
}

// advance moves to the next string once the current one is gone.
func (m *Machine) advance(s State) Transition {
	p := m.seq.Policy
	nextIndex := (s.StringIndex + 1) % m.seq.Len()

	// A single string wraps onto itself with StringIndex == 0, which still is a full pass.
	if !p.Loop && nextIndex == 0 && (s.StringIndex > 0 || m.seq.Len() == 1) {
		return m.stop(s)
	}
	// Same condition as stopAfterTyping, reached here through the delete paths.
	if p.KeepLastString && nextIndex == 0 && !p.Loop {
		return m.stop(s)
	}

	s.StringIndex = nextIndex
	s.CharIndex = 0
	s.Phase = Typing
	s.Text = ""
	return m.next(s)
}
