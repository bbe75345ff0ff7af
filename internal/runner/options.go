package runner

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/torosent/volley/internal/metrics"
)

// Executor performs one request and reports its outcome. Implementations must
// convert every expected failure into an Outcome rather than panic.
type Executor interface {
	Execute(ctx context.Context) metrics.Outcome
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context) metrics.Outcome

func (f ExecutorFunc) Execute(ctx context.Context) metrics.Outcome { return f(ctx) }

// Options configure the Runner.
type Options struct {
	Concurrency    int      // maximum requests in flight
	TotalRequests  int      // requests to dispatch
	RatePerSecond  int      // dispatch pacing (0 means unlimited)
	Executor       Executor // request executor (required)
	Progress       func()   // called once per finished request, never on a worker
	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
}

func (o *Options) normalize() {
	if o.TotalRequests < 0 {
		o.TotalRequests = 0
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	// Workers beyond the request count would never receive a permit.
	if o.TotalRequests > 0 && o.Concurrency > o.TotalRequests {
		o.Concurrency = o.TotalRequests
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}
