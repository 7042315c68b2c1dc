// Package backoff decides whether and when a failed job is retried.
package backoff

import (
	"math"
	"math/rand/v2"
	"time"
)

// Policy is an exponential retry schedule bounded by a maximum number of
// attempts. Delay for attempt n (1-indexed) is min(Base * 2^(n-1), Cap).
// The zero value never retries.
type Policy struct {
	MaxAttempts int
	Base        time.Duration
	Cap         time.Duration

	// Jitter spreads each delay uniformly over [d/2, d].
	Jitter bool
}

func New(maxAttempts int, base, maxDelay time.Duration) Policy {
	return Policy{MaxAttempts: maxAttempts, Base: base, Cap: maxDelay}
}

// NextDelay returns the delay before the job that has just finished attempt
// number attempts may be claimed again. ok is false once attempts has
// reached MaxAttempts and the job must be abandoned.
func (p Policy) NextDelay(attempts int) (d time.Duration, ok bool) {
	if attempts >= p.MaxAttempts {
		return 0, false
	}
	if attempts < 1 {
		attempts = 1
	}

	f := float64(p.Base) * math.Pow(2, float64(attempts-1))
	if p.Cap > 0 && f > float64(p.Cap) {
		f = float64(p.Cap)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which overflows Duration.
	if f >= math.MaxInt64 {
		d = math.MaxInt64
	} else {
		d = time.Duration(f)
	}

	if p.Jitter && d > 1 {
		half := d / 2
		d = half + time.Duration(rand.Int64N(int64(d-half)+1)) //nolint:gosec // jitter does not need crypto rand
	}
	return d, true
}
