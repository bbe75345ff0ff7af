package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/torosent/volley/internal/metrics"
)

// ProgressView is a live display driven by per-request ticks.
type ProgressView interface {
	Start()
	Tick()
	Stop()
}

// ProgressReporter displays real-time progress updates as a single
// carriage-return refreshed line.
type ProgressReporter struct {
	collector *metrics.Collector
	total     int64
	done      atomic.Int64
	interval  time.Duration
	stop      chan struct{}
	finished  chan struct{}
	writer    io.Writer
	active    int32
	start     time.Time
}

// NewProgressReporter creates a progress reporter that updates at the given interval.
// collector may be nil, in which case only the completed count is shown.
func NewProgressReporter(collector *metrics.Collector, total int, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &ProgressReporter{
		collector: collector,
		total:     int64(total),
		interval:  interval,
		stop:      make(chan struct{}),
		finished:  make(chan struct{}),
		writer:    writer,
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	p.start = time.Now()
	go p.run()
}

// Tick records one finished request.
func (p *ProgressReporter) Tick() {
	p.done.Add(1)
}

// Stop halts progress updates after printing a final line.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 2) {
		close(p.stop)
		<-p.finished
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fmt.Fprint(p.writer, "\r"+p.line())
		case <-p.stop:
			fmt.Fprintln(p.writer, "\r"+p.line())
			return
		}
	}
}

func (p *ProgressReporter) line() string {
	done := p.done.Load()
	line := fmt.Sprintf("Progress: %d/%d", done, p.total)
	if p.total > 0 {
		line += fmt.Sprintf(" (%.0f%%)", float64(done)/float64(p.total)*100)
	}
	if p.collector == nil {
		return line
	}
	snap := p.collector.Snapshot(time.Since(p.start))
	line += fmt.Sprintf(" | Successes: %d | Failures: %d | RPS: %.1f",
		snap.Successes, snap.Failures, snap.RequestsPerSec)
	if snap.Successes > 0 {
		line += fmt.Sprintf(" | P50: %dms | P99: %dms", snap.P50Latency.Milliseconds(), snap.P99Latency.Milliseconds())
	}
	return line
}
