package pace

import (
	"context"
	"time"
)

// Pacer enforces a minimum interval between successive calls to Wait. It
// is a fixed cooldown rather than a token bucket: there is no burst
// allowance, which is all a sequential scan needs to stay under an
// external service's request-rate quota.
//
// Not safe for concurrent use; the scan loop is single-threaded.
type Pacer struct {
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// New returns a pacer with the given minimum interval. An interval of zero
// or less disables pacing.
func New(interval time.Duration) *Pacer {
	return &Pacer{interval: interval, now: time.Now}
}

// Wait blocks until at least the configured interval has passed since the
// previous Wait returned. The first call never blocks. Returns the context
// error if the context ends while waiting.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.interval <= 0 {
		return ctx.Err()
	}
	if !p.last.IsZero() {
		remaining := p.interval - p.now().Sub(p.last)
		if remaining > 0 {
			timer := time.NewTimer(remaining)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	p.last = p.now()
	return nil
}
