package httpclient

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// DefaultUserAgent identifies volley to the target unless the run supplies
// its own User-Agent header.
const DefaultUserAgent = "volley/0.1"

// ErrClientConstruction is returned when the shared client cannot be built.
// It is the only failure that aborts a run before any request is sent.
var ErrClientConstruction = errors.New("build HTTP client")

// NewClient creates the client shared by every request of a run. The client
// is safe for concurrent use and is never mutated after construction.
func NewClient(timeout time.Duration, userAgent string) (*http.Client, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be positive, got %s", ErrClientConstruction, timeout)
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{base: transport, userAgent: userAgent},
	}, nil
}

// userAgentTransport fills in User-Agent only when the request has none, so
// headers configured for the run take precedence.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}
