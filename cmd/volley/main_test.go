package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/torosent/volley/internal/config"
	"github.com/torosent/volley/internal/httpclient"
	"github.com/torosent/volley/internal/metrics"
	"github.com/torosent/volley/internal/threshold"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRunJSONReport(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1)%5 == 0 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	stdout, _, err := execute(t, srv.URL, "-n", "20", "-c", "4", "--format", "json", "--no-progress")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if !gjson.Valid(stdout) {
		t.Fatalf("stdout is not a JSON document: %q", stdout)
	}
	if got := gjson.Get(stdout, "stats.total_requests").Int(); got != 20 {
		t.Errorf("total_requests = %d, want 20", got)
	}
	if got := gjson.Get(stdout, "stats.failed_requests").Int(); got != 4 {
		t.Errorf("failed_requests = %d, want 4", got)
	}
	if got := gjson.Get(stdout, "stats.status_codes.500").Int(); got != 4 {
		t.Errorf("status_codes.500 = %d, want 4", got)
	}
	if got := gjson.Get(stdout, "dispatched").Int(); got != 20 {
		t.Errorf("dispatched = %d, want 20", got)
	}
	if got := hits.Load(); got != 20 {
		t.Errorf("server saw %d requests, want 20", got)
	}
}

func TestRunTextReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	stdout, stderr, err := execute(t, "--url", srv.URL, "-n", "5", "-c", "2")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	for _, want := range []string{"Configuration", "Starting load test...", "Results", "Load test completed successfully!"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q", want)
		}
	}
	if !strings.Contains(stderr, "Progress: 5/5") {
		t.Errorf("stderr progress = %q", stderr)
	}
}

func TestRunLogsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, stderr, err := execute(t, srv.URL, "-n", "3", "--log-errors", "--no-progress", "--format", "yaml")
	if err != nil {
		t.Fatalf("per-request failures should not fail the run: %v", err)
	}
	if got := strings.Count(stderr, "[volley] request failed"); got != 3 {
		t.Errorf("logged %d failures, want 3:\n%s", got, stderr)
	}
	if !strings.Contains(stderr, "HTTP 503") {
		t.Errorf("stderr = %q, want status code", stderr)
	}
}

func TestRunThresholdFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	stdout, _, err := execute(t, srv.URL, "-n", "4", "--no-progress", "--threshold", "failures:count < 1")
	if !errors.Is(err, threshold.ErrThresholdsFailed) {
		t.Fatalf("execute() error = %v, want ErrThresholdsFailed", err)
	}
	if !strings.Contains(stdout, "Thresholds (0/1 passed)") {
		t.Errorf("stdout missing threshold table:\n%s", stdout)
	}
}

func TestRunWritesHTMLReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "report.html")
	if _, _, err := execute(t, srv.URL, "-n", "2", "--no-progress", "--format", "json", "--html-report", path); err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read html report: %v", err)
	}
	if !strings.Contains(string(data), "Volley Load Test Report") {
		t.Error("html report missing title")
	}
}

func TestRunConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := srv.URL
	srv.Close()

	stdout, _, err := execute(t, target, "-n", "3", "--no-progress", "--format", "json")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if got := gjson.Get(stdout, "stats.transport_errors").Int(); got != 3 {
		t.Errorf("transport_errors = %d, want 3", got)
	}
	if got := gjson.Get(stdout, "stats.status_codes.0").Int(); got != 3 {
		t.Errorf("status_codes.0 = %d, want 3", got)
	}
}

func TestRunValidationError(t *testing.T) {
	_, _, err := execute(t, "ftp://example.com", "-c", "0")
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("execute() error = %v, want validation failure", err)
	}
}

func TestRunZeroTimeoutIsClientError(t *testing.T) {
	_, _, err := execute(t, "http://127.0.0.1:1", "--timeout", "0s", "--no-progress")
	if !errors.Is(err, httpclient.ErrClientConstruction) {
		t.Fatalf("execute() error = %v, want ErrClientConstruction", err)
	}
}

func TestRunNoArgsShowsHelp(t *testing.T) {
	stdout, _, err := execute(t)
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if !strings.Contains(stdout, "volley [url]") {
		t.Errorf("help output = %q", stdout)
	}
}

func TestRunInterrupted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr)
	cmd.SetArgs([]string{srv.URL, "-n", "10", "--no-progress", "--format", "json"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := cmd.ExecuteContext(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("execute() error = %v, want context.Canceled", err)
	}
	if !gjson.Valid(stdout.String()) {
		t.Errorf("interrupted run should still print a report: %q", stdout.String())
	}
}

func TestFailureLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := &stderrFailureLogger{w: &buf}
	logger.LogFailure(metrics.Outcome{StatusCode: 0, Error: "dial tcp: refused"})
	logger.LogFailure(metrics.Outcome{StatusCode: 404})

	out := buf.String()
	if !strings.Contains(out, "dial tcp: refused") || !strings.Contains(out, "HTTP 404") {
		t.Fatalf("logger output = %q", out)
	}

	buf.Reset()
	kv := &stderrFailureLogger{w: &buf, protocol: config.ProtocolFlashKV}
	kv.LogFailure(metrics.Outcome{StatusCode: 500})
	if !strings.Contains(buf.String(), "FlashKV status 500") {
		t.Fatalf("flashkv logger output = %q", buf.String())
	}
}

func TestIsTerminalRejectsBuffers(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Fatal("bytes.Buffer is not a terminal")
	}
}

// startKVServer answers every command line with reply(line) and closes the
// connection.
func startKVServer(t *testing.T, reply func(string) string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer conn.Close()
				line, err := bufio.NewReader(conn).ReadString('\n')
				if err != nil {
					return
				}
				_, _ = conn.Write([]byte(reply(line)))
			}()
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		wg.Wait()
	})
	return ln.Addr().String()
}

func TestRunFlashKV(t *testing.T) {
	var gets atomic.Int64
	addr := startKVServer(t, func(line string) string {
		switch {
		case strings.HasPrefix(line, "GET"):
			gets.Add(1)
			return "(nil)\r\n"
		case strings.HasPrefix(line, "INCR"):
			return "-ERR value is not an integer\r\n"
		default:
			return "OK\r\n"
		}
	})

	stdout, stderr, err := execute(t, "--protocol", "flashkv", addr,
		"-n", "9", "-c", "3", "--no-progress", "--format", "json", "--log-errors",
		"--kv-command", "SET user hello", "--kv-command", "GET user", "--kv-command", "INCR user")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if got := gjson.Get(stdout, "protocol").String(); got != "flashkv" {
		t.Errorf("protocol = %q, want flashkv", got)
	}
	if got := gjson.Get(stdout, "method").String(); got != "SET, GET, INCR" {
		t.Errorf("method = %q, want the command list", got)
	}
	if got := gjson.Get(stdout, "stats.total_requests").Int(); got != 9 {
		t.Errorf("total_requests = %d, want 9", got)
	}
	if got := gjson.Get(stdout, "stats.successful_requests").Int(); got != 6 {
		t.Errorf("successful_requests = %d, want 6 (SET and nil GET)", got)
	}
	if got := gjson.Get(stdout, "stats.status_codes.404").Int(); got != 3 {
		t.Errorf("status_codes.404 = %d, want 3", got)
	}
	if got := gjson.Get(stdout, "stats.status_codes.500").Int(); got != 3 {
		t.Errorf("status_codes.500 = %d, want 3", got)
	}
	if got := gets.Load(); got != 3 {
		t.Errorf("server saw %d GETs, want 3", got)
	}
	if !strings.Contains(stderr, "FlashKV status 500") {
		t.Errorf("stderr = %q, want FlashKV failures logged", stderr)
	}
}

func TestRunFlashKVRejectsBadCommand(t *testing.T) {
	_, _, err := execute(t, "--protocol", "kv", "127.0.0.1:6380", "--kv-command", "SET only-key", "--no-progress")
	if err == nil || !strings.Contains(err.Error(), "SET requires a key and value") {
		t.Fatalf("execute() error = %v, want command parse failure", err)
	}
}

func TestRunFlashKVRejectsURLTarget(t *testing.T) {
	_, _, err := execute(t, "--protocol", "flashkv", "http://example.com", "--no-progress")
	if err == nil || !strings.Contains(err.Error(), "host:port") {
		t.Fatalf("execute() error = %v, want address validation failure", err)
	}
}
