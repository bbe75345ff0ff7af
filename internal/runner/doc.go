// Package runner dispatches a fixed number of requests with bounded
// concurrency.
//
// A scheduler goroutine hands out one permit per request, optionally paced by
// a [golang.org/x/time/rate] limiter, and a fixed pool of Concurrency workers
// consumes them. Because only the workers execute requests, no more than
// Concurrency requests are ever in flight.
//
// # Basic Usage
//
//	r := runner.New(runner.Options{
//		Concurrency:   10,
//		TotalRequests: 1000,
//		Executor:      exec,
//		Progress:      bar.Tick,
//	})
//	result := r.Run(ctx)
//	stats := metrics.Reduce(result.Outcomes, result.Duration)
//
// # Executor Interface
//
// The [Executor] interface defines what a runner executes:
//
//	type Executor interface {
//		Execute(ctx context.Context) metrics.Outcome
//	}
//
// An executor that panics loses its outcome; the run continues and the loss
// is counted in [Result.Dropped].
//
// # Middleware
//
// Enhance executors with middleware:
//   - [WithLogging]: Log unsuccessful outcomes
//   - [WithRecorder]: Feed a live collector while the run is in flight
package runner
