package metrics_test

import (
	"sync"
	"testing"
	"time"

	"github.com/torosent/volley/internal/metrics"
)

func TestCollectorCountsOutcomes(t *testing.T) {
	c := metrics.NewCollector()

	c.Record(metrics.Outcome{Duration: 10 * time.Millisecond, StatusCode: 200, Success: true})
	c.Record(metrics.Outcome{Duration: 20 * time.Millisecond, StatusCode: 200, Success: true})
	c.Record(metrics.Outcome{Duration: 5 * time.Millisecond, StatusCode: 503})
	c.Record(metrics.Outcome{Duration: time.Second, Error: "dial tcp: connection refused"})

	snap := c.Snapshot(time.Second)
	if snap.Completed != 4 {
		t.Fatalf("expected 4 completed, got %d", snap.Completed)
	}
	if snap.Successes != 2 || snap.Failures != 2 {
		t.Fatalf("expected 2 successes and 2 failures, got %d/%d", snap.Successes, snap.Failures)
	}
	if snap.TransportErrs != 1 {
		t.Fatalf("expected 1 transport error, got %d", snap.TransportErrs)
	}
	if snap.RequestsPerSec != 4 {
		t.Fatalf("expected 4 rps, got %f", snap.RequestsPerSec)
	}
}

func TestCollectorPercentilesIgnoreFailures(t *testing.T) {
	c := metrics.NewCollector()
	for i := 0; i < 100; i++ {
		c.Record(metrics.Outcome{Duration: 10 * time.Millisecond, StatusCode: 200, Success: true})
	}
	// Slow failures must not drag the live percentiles.
	for i := 0; i < 100; i++ {
		c.Record(metrics.Outcome{Duration: 5 * time.Second, StatusCode: 500})
	}

	snap := c.Snapshot(0)
	if snap.P99Latency < 9*time.Millisecond || snap.P99Latency > 11*time.Millisecond {
		t.Fatalf("expected p99 near 10ms, got %s", snap.P99Latency)
	}
	if snap.RequestsPerSec != 0 {
		t.Fatalf("expected zero rps for zero elapsed, got %f", snap.RequestsPerSec)
	}
}

func TestCollectorEmptySnapshot(t *testing.T) {
	snap := metrics.NewCollector().Snapshot(time.Second)
	if snap.Completed != 0 || snap.P50Latency != 0 || snap.P99Latency != 0 {
		t.Fatalf("expected zero snapshot, got %+v", snap)
	}
}

func TestCollectorConcurrentRecord(t *testing.T) {
	c := metrics.NewCollector()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				c.Record(metrics.Outcome{Duration: time.Millisecond, StatusCode: 200, Success: true})
			}
		}()
	}
	wg.Wait()

	if got := c.Snapshot(time.Second).Completed; got != 2000 {
		t.Fatalf("expected 2000 completed, got %d", got)
	}
}
