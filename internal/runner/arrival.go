package runner

import (
	"context"

	"golang.org/x/time/rate"
)

// arrival paces dispatch. Only the scheduler goroutine calls Wait, so the
// limiter never sees bursts from several workers at once.
type arrival struct {
	limiter *rate.Limiter
}

func newArrival(opt Options) *arrival {
	if opt.RatePerSecond <= 0 {
		return nil
	}
	return &arrival{limiter: opt.LimiterFactory(opt.RatePerSecond)}
}

func (a *arrival) Wait(ctx context.Context) error {
	if a == nil || a.limiter == nil {
		return nil
	}
	return a.limiter.Wait(ctx)
}
