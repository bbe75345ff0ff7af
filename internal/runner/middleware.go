package runner

import (
	"context"

	"github.com/torosent/volley/internal/metrics"
)

// FailureLogger logs failed requests.
type FailureLogger interface {
	LogFailure(o metrics.Outcome)
}

// Recorder receives every outcome as it completes.
type Recorder interface {
	Record(o metrics.Outcome)
}

// WithLogging wraps an Executor to log every unsuccessful outcome, both
// transport failures and non-2xx responses.
func WithLogging(exec Executor, logger FailureLogger) Executor {
	if logger == nil {
		return exec
	}
	return ExecutorFunc(func(ctx context.Context) metrics.Outcome {
		o := exec.Execute(ctx)
		if !o.Success {
			logger.LogFailure(o)
		}
		return o
	})
}

// WithRecorder wraps an Executor so rec sees each outcome while the run is
// still in flight.
func WithRecorder(exec Executor, rec Recorder) Executor {
	if rec == nil {
		return exec
	}
	return ExecutorFunc(func(ctx context.Context) metrics.Outcome {
		o := exec.Execute(ctx)
		rec.Record(o)
		return o
	})
}
