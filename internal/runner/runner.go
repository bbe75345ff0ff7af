package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/torosent/volley/internal/metrics"
)

// Result captures everything a run produced.
type Result struct {
	Outcomes   []metrics.Outcome // one per completed request, in no particular order
	Dispatched int64             // requests handed to the executor
	Dropped    int64             // dispatched requests whose executor panicked
	Duration   time.Duration     // wall clock from first dispatch to last completion
}

// Runner dispatches a fixed number of requests with bounded concurrency.
type Runner struct {
	opt     Options
	arrival *arrival
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt, arrival: newArrival(opt)}
}

// Run dispatches Options.TotalRequests requests and waits for all of them.
// At most Options.Concurrency executors run at any moment. Cancelling ctx
// stops further dispatch; requests already in flight are awaited.
func (r *Runner) Run(ctx context.Context) Result {
	var dispatched, dropped int64

	progress := newProgressRelay(r.opt.Progress)
	permits := make(chan struct{}, r.opt.Concurrency)
	start := time.Now()

	// Scheduler: serializes rate limiting to avoid burst overshoot across workers.
	go func() {
		defer close(permits)
		for i := 0; i < r.opt.TotalRequests; i++ {
			if ctx.Err() != nil {
				return
			}
			if err := r.arrival.Wait(ctx); err != nil {
				return
			}
			select {
			case permits <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Each worker owns its slice; they are merged after the join.
	perWorker := make([][]metrics.Outcome, r.opt.Concurrency)
	var wg sync.WaitGroup
	wg.Add(r.opt.Concurrency)
	for w := 0; w < r.opt.Concurrency; w++ {
		go func(w int) {
			defer wg.Done()
			for range permits {
				if ctx.Err() != nil {
					continue
				}
				atomic.AddInt64(&dispatched, 1)
				outcome, ok := r.execute(ctx)
				if ok {
					perWorker[w] = append(perWorker[w], outcome)
				} else {
					atomic.AddInt64(&dropped, 1)
				}
				progress.tick()
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)
	progress.close()

	outcomes := make([]metrics.Outcome, 0, atomic.LoadInt64(&dispatched))
	for _, chunk := range perWorker {
		outcomes = append(outcomes, chunk...)
	}

	return Result{
		Outcomes:   outcomes,
		Dispatched: atomic.LoadInt64(&dispatched),
		Dropped:    atomic.LoadInt64(&dropped),
		Duration:   elapsed,
	}
}

// execute runs the executor once. A panic drops the outcome instead of
// taking down the run.
func (r *Runner) execute(ctx context.Context) (outcome metrics.Outcome, ok bool) {
	if r.opt.Executor == nil {
		return metrics.Outcome{}, false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return r.opt.Executor.Execute(ctx), true
}
