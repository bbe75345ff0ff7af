package httpclient

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/volley/internal/metrics"
	"github.com/torosent/volley/internal/tracing"
)

// maxDrainBytes bounds how much of a response body is read before the
// connection is handed back to the pool.
const maxDrainBytes = 1024 * 1024

// now is the clock used to time exchanges.
var now = time.Now

// Execute performs exactly one HTTP exchange and converts whatever happens
// into an Outcome. It never returns an error: transport failures become
// outcomes with StatusCode 0 and a non-empty Error.
func Execute(ctx context.Context, client *http.Client, builder *RequestBuilder) metrics.Outcome {
	return execute(ctx, client, builder, nil)
}

func execute(ctx context.Context, client *http.Client, builder *RequestBuilder, prepare func(*http.Request)) metrics.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}

	start := now()
	req, err := builder.Build(ctx)
	if err != nil {
		return transportFailure(now().Sub(start), err)
	}
	if prepare != nil {
		prepare(req)
	}

	resp, err := client.Do(req)
	latency := now().Sub(start)
	if err != nil {
		return transportFailure(latency, err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	_ = resp.Body.Close()

	return metrics.Outcome{
		Duration:   latency,
		StatusCode: resp.StatusCode,
		Success:    metrics.IsSuccessStatus(resp.StatusCode),
	}
}

func transportFailure(latency time.Duration, err error) metrics.Outcome {
	return metrics.Outcome{
		Duration:  latency,
		Error:     err.Error(),
		ErrorKind: metrics.ClassifyError(err),
	}
}

// Executor binds a shared client and request builder into a reusable unit of
// work for the runner. The zero tracer disables spans.
type Executor struct {
	client    *http.Client
	builder   *RequestBuilder
	tracer    trace.Tracer
	propagate bool
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithTracer records one client span per request. When propagate is set the
// W3C trace context is also injected into the outgoing headers.
func WithTracer(tracer trace.Tracer, propagate bool) ExecutorOption {
	return func(e *Executor) {
		e.tracer = tracer
		e.propagate = propagate
	}
}

func NewExecutor(client *http.Client, builder *RequestBuilder, opts ...ExecutorOption) *Executor {
	e := &Executor{client: client, builder: builder}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute implements runner.Executor.
func (e *Executor) Execute(ctx context.Context) metrics.Outcome {
	if e.tracer == nil {
		return execute(ctx, e.client, e.builder, nil)
	}

	ctx, span := tracing.StartRequestSpan(ctx, e.tracer, e.builder.Method(), e.builder.Target())
	var prepare func(*http.Request)
	if e.propagate {
		prepare = func(req *http.Request) {
			tracing.InjectHTTPHeaders(ctx, req.Header)
		}
	}
	outcome := execute(ctx, e.client, e.builder, prepare)
	tracing.EndSpan(span, outcome.StatusCode, outcome.Error)
	return outcome
}
