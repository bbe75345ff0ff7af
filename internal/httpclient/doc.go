// Package httpclient builds and executes the HTTP requests of a load test.
//
// A run shares one [http.Client] created by [NewClient] and one
// [RequestBuilder] created from the run configuration. [Execute] performs a
// single exchange and always returns a [metrics.Outcome]:
//
//	client, err := httpclient.NewClient(cfg.Timeout, httpclient.DefaultUserAgent)
//	if err != nil {
//		return err // wraps ErrClientConstruction
//	}
//	builder, err := httpclient.NewRequestBuilder(cfg)
//	if err != nil {
//		return err
//	}
//	outcome := httpclient.Execute(ctx, client, builder)
//
// A response is a success only when its status is 2xx. Non-2xx responses keep
// their status code and carry no error text; transport failures (timeouts,
// refused connections, DNS errors) have StatusCode 0 and a description in
// Error.
//
// [Executor] wraps the same call for the runner and can emit an OpenTelemetry
// span per request through [WithTracer].
package httpclient
