package sequence

import (
	"fmt"
	"time"
)

// EstimateDuration returns the nominal length of one pass over the sequence.
// Base typing speed is used, jitter is ignored.
func EstimateDuration(seq Sequence, t Timing) time.Duration {
	if seq.Empty() {
		return 0
	}

	var total time.Duration
	for i := range seq.Strings {
		n := time.Duration(seq.RuneLen(i))
		typingTime := n * t.Typing

		shouldDelete := !(seq.Policy.KeepLastString && seq.IsLast(i))
		var deletionTime time.Duration
		if shouldDelete {
			deletionTime = n * t.Deleting
		}

		pauseTime := t.Pause
		if seq.Policy.KeepLastString && seq.IsLast(i) {
			pauseTime = 0
		}

		total += typingTime + pauseTime + deletionTime
	}
	return total
}

// FormatDuration renders d as "1m 5s" or "42s".
func FormatDuration(d time.Duration) string {
	seconds := int(d / time.Second)
	minutes := seconds / 60
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	}
	return fmt.Sprintf("%ds", seconds)
}
