package worker

import (
	"math"
	"time"
)

// RetryPolicy controls how failed export tasks are rescheduled. Delays grow
// geometrically from InitialDelay up to MaxDelay, and MaxRetries bounds the
// attempts before a task is parked as failed.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// NextDelay computes the wait before the given 1-based attempt; the first
// retry waits InitialDelay. Zero-valued fields fall back to a one second
// base and a factor of 2.
func (p RetryPolicy) NextDelay(attempt int) time.Duration {
	base := p.InitialDelay
	if base <= 0 {
		base = time.Second
	}
	factor := p.BackoffFactor
	if factor <= 0 {
		factor = 2
	}
	if attempt < 1 {
		attempt = 1
	}

	d := time.Duration(float64(base) * math.Pow(factor, float64(attempt-1)))
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if d <= 0 {
		d = time.Second
	}
	return d
}
