package sequence

import (
	"time"
	"unicode/utf8"
)

const (
	// DefaultFastDeleteSelect is how long a finished string stays selected before a fast delete.
	DefaultFastDeleteSelect = 200 * time.Millisecond
	// TypingJitter is the upper (exclusive) bound of the random delay added to every typed character.
	TypingJitter = 50 * time.Millisecond
)

// Policy holds the playback flags of a sequence.
type Policy struct {
	Loop           bool
	KeepLastString bool
	FastDelete     bool
}

// Sequence is the ordered list of strings to type. Order matters, duplicates are allowed.
type Sequence struct {
	Strings []string
	Policy  Policy
}

func (s Sequence) Len() int { return len(s.Strings) }

func (s Sequence) Empty() bool { return len(s.Strings) == 0 }

// RuneLen returns the length of the i-th string in characters.
func (s Sequence) RuneLen(i int) int {
	return utf8.RuneCountInString(s.Strings[i])
}

// Prefix returns the first n characters of the i-th string.
func (s Sequence) Prefix(i, n int) string {
	str := s.Strings[i]
	if n <= 0 {
		return ""
	}
	for idx := range str {
		if n == 0 {
			return str[:idx]
		}
		n--
	}
	return str
}

// IsLast reports whether i is the index of the final string.
func (s Sequence) IsLast(i int) bool { return i == len(s.Strings)-1 }

// Kept reports whether the i-th string stays on screen at the end instead of being deleted.
func (s Sequence) Kept(i int) bool {
	return s.Policy.KeepLastString && !s.Policy.Loop && s.IsLast(i)
}

// Timing holds the base delays of the animation.
type Timing struct {
	Typing           time.Duration
	Deleting         time.Duration
	Pause            time.Duration
	FastDeleteSelect time.Duration
}

// NewTiming builds Timing from millisecond values as they appear in settings.
func NewTiming(typingMs, deletingMs, pauseMs int) Timing {
	return Timing{
		Typing:           time.Duration(typingMs) * time.Millisecond,
		Deleting:         time.Duration(deletingMs) * time.Millisecond,
		Pause:            time.Duration(pauseMs) * time.Millisecond,
		FastDeleteSelect: DefaultFastDeleteSelect,
	}
}
