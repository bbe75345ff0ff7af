package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/torosent/volley/internal/config"
)

// RequestBuilder turns a run configuration into fresh *http.Request values.
// The payload is read once at construction and replayed for every request,
// so a builder holds only read-only state and may be shared by every worker.
type RequestBuilder struct {
	method  string
	target  string
	headers http.Header
	payload []byte
}

func NewRequestBuilder(cfg *config.Config) (*RequestBuilder, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	target := strings.TrimSpace(cfg.TargetURL)
	if target == "" {
		return nil, errors.New("target URL is required")
	}

	method := strings.ToUpper(strings.TrimSpace(string(cfg.Method)))
	if method == "" {
		method = http.MethodGet
	}

	payload, err := loadPayload(cfg.Body, cfg.BodyFile)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	for key, value := range cfg.Headers {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" || strings.ContainsAny(trimmedKey, "\r\n") {
			return nil, fmt.Errorf("invalid header key %q", key)
		}
		canonicalKey := http.CanonicalHeaderKey(trimmedKey)
		if strings.ContainsAny(value, "\r\n") {
			return nil, fmt.Errorf("invalid header value for %s", canonicalKey)
		}
		headers.Set(canonicalKey, value)
	}

	return &RequestBuilder{
		method:  method,
		target:  target,
		headers: headers,
		payload: payload,
	}, nil
}

// loadPayload resolves the inline body or the body file into the bytes every
// request sends. Neither set means no body.
func loadPayload(inline, path string) ([]byte, error) {
	path = strings.TrimSpace(path)
	switch {
	case inline != "" && path != "":
		return nil, errors.New("body and body_file are mutually exclusive")
	case path == "":
		if inline == "" {
			return nil, nil
		}
		return []byte(inline), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("body file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("body file %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("body file: %w", err)
	}
	return data, nil
}

// Method returns the HTTP method every built request uses.
func (b *RequestBuilder) Method() string { return b.method }

// Target returns the request URL.
func (b *RequestBuilder) Target() string { return b.target }

// Build creates a new request bound to ctx. Headers are copied so callers may
// add to them without affecting other requests.
func (b *RequestBuilder) Build(ctx context.Context) (*http.Request, error) {
	if b == nil {
		return nil, errors.New("builder cannot be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, b.method, b.target, nil)
	if err != nil {
		return nil, err
	}

	req.Header = b.headers.Clone()
	if req.Header == nil {
		req.Header = http.Header{}
	}

	if len(b.payload) == 0 {
		req.Body = http.NoBody
		req.GetBody = func() (io.ReadCloser, error) { return http.NoBody, nil }
		return req, nil
	}

	req.ContentLength = int64(len(b.payload))
	req.GetBody = b.replay
	req.Body, _ = b.replay()
	return req, nil
}

func (b *RequestBuilder) replay() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.payload)), nil
}
