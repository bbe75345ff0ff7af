package tracing

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// StartRequestSpan starts a client span for one HTTP exchange. The span is
// named after the method, following the HTTP semantic conventions.
func StartRequestSpan(ctx context.Context, tracer trace.Tracer, method, target string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		semconv.HTTPRequestMethodKey.String(method),
		semconv.URLFull(target),
	}
	if u, err := url.Parse(target); err == nil && u.Hostname() != "" {
		attrs = append(attrs, semconv.ServerAddress(u.Hostname()))
	}
	return tracer.Start(ctx, method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan finishes a request span. A transport failure (statusCode 0) and
// any 4xx/5xx response mark the span as an error.
func EndSpan(span trace.Span, statusCode int, errText string) {
	switch {
	case statusCode == 0:
		if errText == "" {
			errText = "no response"
		}
		span.SetStatus(codes.Error, errText)
	case statusCode >= 400:
		span.SetAttributes(semconv.HTTPResponseStatusCode(statusCode))
		span.SetStatus(codes.Error, http.StatusText(statusCode))
	default:
		span.SetAttributes(semconv.HTTPResponseStatusCode(statusCode))
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// StartCommandSpan starts a client span for one key-value command sent to
// addr. The span is named after the command verb.
func StartCommandSpan(ctx context.Context, tracer trace.Tracer, verb, addr string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "flashkv"),
		attribute.String("db.operation.name", verb),
		attribute.String("network.transport", "tcp"),
	}
	if host, port, err := net.SplitHostPort(addr); err == nil {
		attrs = append(attrs, semconv.ServerAddress(host))
		if n, err := strconv.Atoi(port); err == nil {
			attrs = append(attrs, semconv.ServerPort(n))
		}
	}
	return tracer.Start(ctx, verb,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// EndCommandSpan finishes a command span. detail is the error reply or
// transport error when failed is set.
func EndCommandSpan(span trace.Span, failed bool, detail string) {
	if failed {
		span.SetStatus(codes.Error, detail)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// InjectHTTPHeaders injects W3C trace context into HTTP headers.
func InjectHTTPHeaders(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}
