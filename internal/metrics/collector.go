package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Collector records outcomes while a run is in flight, in a thread-safe manner.
type Collector struct {
	mu        sync.Mutex
	hist      *hdrhistogram.Histogram
	successes int64
	failures  int64
	transport int64
}

// LiveSnapshot is a point-in-time view used by progress displays.
type LiveSnapshot struct {
	Completed      int64
	Successes      int64
	Failures       int64
	TransportErrs  int64
	RequestsPerSec float64
	P50Latency     time.Duration
	P99Latency     time.Duration
}

func NewCollector() *Collector {
	// Track latencies from 1µs up to 10min with 3 significant figures.
	h := hdrhistogram.New(1, int64(10*time.Minute/time.Microsecond), 3)
	return &Collector{hist: h}
}

// Record adds one outcome. Only successful outcomes feed the latency histogram.
func (c *Collector) Record(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !o.Success {
		c.failures++
		if o.TransportFailure() {
			c.transport++
		}
		return
	}
	c.successes++

	us := o.Duration.Microseconds()
	if us < c.hist.LowestTrackableValue() {
		us = c.hist.LowestTrackableValue()
	}
	if us > c.hist.HighestTrackableValue() {
		us = c.hist.HighestTrackableValue()
	}
	_ = c.hist.RecordValue(us)
}

// Snapshot returns current counters and approximate percentiles.
func (c *Collector) Snapshot(elapsed time.Duration) LiveSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := LiveSnapshot{
		Completed:     c.successes + c.failures,
		Successes:     c.successes,
		Failures:      c.failures,
		TransportErrs: c.transport,
	}
	if c.hist.TotalCount() > 0 {
		snap.P50Latency = time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond
		snap.P99Latency = time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond
	}
	if elapsed > 0 && snap.Completed > 0 {
		snap.RequestsPerSec = float64(snap.Completed) / elapsed.Seconds()
	}
	return snap
}
