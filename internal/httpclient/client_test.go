package httpclient

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClientRejectsNonPositiveTimeout(t *testing.T) {
	for _, timeout := range []time.Duration{0, -time.Second} {
		client, err := NewClient(timeout, "")
		if err == nil {
			t.Fatalf("NewClient(%s) error = nil, want error", timeout)
		}
		if !errors.Is(err, ErrClientConstruction) {
			t.Fatalf("NewClient(%s) error = %v, want ErrClientConstruction", timeout, err)
		}
		if client != nil {
			t.Fatalf("NewClient(%s) returned a client alongside the error", timeout)
		}
	}
}

func TestNewClientTimeoutAndTransport(t *testing.T) {
	timeout := 50 * time.Millisecond
	client, err := NewClient(timeout, "")
	if err != nil {
		t.Fatalf("NewClient error = %v", err)
	}
	defer client.CloseIdleConnections()

	if client.Timeout != timeout {
		t.Fatalf("expected client timeout %s, got %s", timeout, client.Timeout)
	}

	ua, ok := client.Transport.(*userAgentTransport)
	if !ok {
		t.Fatalf("expected *userAgentTransport, got %T", client.Transport)
	}
	transport, ok := ua.base.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", ua.base)
	}
	if transport.MaxIdleConns == 0 {
		t.Fatalf("expected transport to allow idle connections")
	}
	if transport.IdleConnTimeout == 0 {
		t.Fatalf("expected transport to set idle connection timeout")
	}
}

func TestUserAgent(t *testing.T) {
	seen := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client, err := NewClient(time.Second, "")
	if err != nil {
		t.Fatalf("NewClient error = %v", err)
	}

	t.Run("default", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("Do error = %v", err)
		}
		resp.Body.Close()
		if got := <-seen; got != DefaultUserAgent {
			t.Fatalf("User-Agent = %q, want %q", got, DefaultUserAgent)
		}
	})

	t.Run("request header wins", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
		req.Header.Set("User-Agent", "custom-agent/2.0")
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("Do error = %v", err)
		}
		resp.Body.Close()
		if got := <-seen; got != "custom-agent/2.0" {
			t.Fatalf("User-Agent = %q, want custom-agent/2.0", got)
		}
	})

	t.Run("caller request untouched", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("Do error = %v", err)
		}
		resp.Body.Close()
		<-seen
		if req.Header.Get("User-Agent") != "" {
			t.Fatalf("transport mutated the caller's request headers")
		}
	})
}
