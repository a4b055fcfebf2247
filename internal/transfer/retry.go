package transfer

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Default retry settings for part and file transfers.
const (
	DefaultRetryAttempts   = 3
	DefaultRetryBaseDelay  = 1 * time.Second
	DefaultRetryMaxDelay   = 30 * time.Second
	DefaultRetryMultiplier = 2.0
	DefaultRetryJitter     = 0.1
)

// RetryPolicy controls exponential backoff for transient transfer failures.
// A unit of work is attempted Attempts+1 times in total; the delay before
// retry attempt n (0-based) is min(BaseDelay*Multiplier^n, MaxDelay), spread
// by +/- Jitter fraction to avoid thundering herds.
type RetryPolicy struct {
	Attempts   int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	Jitter     float64
}

// DefaultRetryPolicy returns the standard transfer retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:   DefaultRetryAttempts,
		BaseDelay:  DefaultRetryBaseDelay,
		MaxDelay:   DefaultRetryMaxDelay,
		Multiplier: DefaultRetryMultiplier,
		Jitter:     DefaultRetryJitter,
	}
}

// Delay computes the backoff before retry attempt n (0-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	return p.DelayAfter(attempt, 0)
}

// DelayAfter is Delay but lets a server-provided Retry-After hint override
// the exponential base. The hint is still capped at MaxDelay and jittered.
func (p RetryPolicy) DelayAfter(attempt int, retryAfter time.Duration) time.Duration {
	base := retryAfter
	if base <= 0 {
		base = time.Duration(float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt)))
	}
	if base > p.MaxDelay {
		base = p.MaxDelay
	}

	if p.Jitter > 0 {
		spread := float64(base) * p.Jitter
		base += time.Duration((rand.Float64()*2 - 1) * spread)
		if base > p.MaxDelay {
			base = p.MaxDelay
		}
	}

	if base < 100*time.Millisecond {
		base = 100 * time.Millisecond
	}
	return base
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
