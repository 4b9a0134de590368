package typing

import (
	"math/rand"
	"time"
)

// Jitter supplies the random extra delay of each typed character.
type Jitter interface {
	Next(max time.Duration) time.Duration
}

// Rand draws jitter uniformly from [0, max).
type Rand struct {
	r *rand.Rand
}

func NewRand(seed int64) *Rand {
	return &Rand{r: rand.New(rand.NewSource(seed))}
}

func (j *Rand) Next(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(j.r.Int63n(int64(max)))
}

// NoJitter always returns zero. Useful for estimates and tests.
type NoJitter struct{}

func (NoJitter) Next(time.Duration) time.Duration { return 0 }
