package metrics

import (
	"math"
	"sort"
	"time"
)

// Stats is the aggregate computed once from the full outcome list of a run.
type Stats struct {
	TotalRequests      int64 `json:"total_requests" yaml:"total_requests"`
	SuccessfulRequests int64 `json:"successful_requests" yaml:"successful_requests"`
	FailedRequests     int64 `json:"failed_requests" yaml:"failed_requests"`
	TransportErrors    int64 `json:"transport_errors" yaml:"transport_errors"`

	TotalDurationMillis int64   `json:"total_duration_ms" yaml:"total_duration_ms"`
	MinLatencyMillis    int64   `json:"min_latency_ms" yaml:"min_latency_ms"`
	MaxLatencyMillis    int64   `json:"max_latency_ms" yaml:"max_latency_ms"`
	AvgLatencyMillis    float64 `json:"avg_latency_ms" yaml:"avg_latency_ms"`
	P50                 int64   `json:"p50_ms" yaml:"p50_ms"`
	P95                 int64   `json:"p95_ms" yaml:"p95_ms"`
	P99                 int64   `json:"p99_ms" yaml:"p99_ms"`
	RequestsPerSecond   float64 `json:"requests_per_second" yaml:"requests_per_second"`

	StatusCodes map[int]int64    `json:"status_codes,omitempty" yaml:"status_codes,omitempty"`
	Errors      map[string]int64 `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Reduce computes Stats from outcomes and the wall-clock span of the run.
// An empty outcome list yields zeroed stats.
func Reduce(outcomes []Outcome, totalDuration time.Duration) Stats {
	totalMs := totalDuration.Milliseconds()
	if totalMs < 0 {
		totalMs = 0
	}
	stats := Stats{
		TotalRequests:       int64(len(outcomes)),
		TotalDurationMillis: totalMs,
	}

	durations := make([]int64, 0, len(outcomes))
	var sum int64
	for _, o := range outcomes {
		if stats.StatusCodes == nil {
			stats.StatusCodes = make(map[int]int64)
		}
		stats.StatusCodes[o.StatusCode]++

		if o.TransportFailure() {
			stats.TransportErrors++
			if stats.Errors == nil {
				stats.Errors = make(map[string]int64)
			}
			kind := o.ErrorKind
			if kind == "" {
				kind = "Unknown error"
			}
			stats.Errors[kind]++
		}

		if !o.Success {
			continue
		}
		stats.SuccessfulRequests++
		ms := o.DurationMillis()
		durations = append(durations, ms)
		sum += ms
	}
	stats.FailedRequests = stats.TotalRequests - stats.SuccessfulRequests

	if len(durations) > 0 {
		stats.AvgLatencyMillis = float64(sum) / float64(len(durations))
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
		stats.MinLatencyMillis = durations[0]
		stats.MaxLatencyMillis = durations[len(durations)-1]
		stats.P50 = Percentile(durations, 50)
		stats.P95 = Percentile(durations, 95)
		stats.P99 = Percentile(durations, 99)
	}

	if totalMs > 0 {
		stats.RequestsPerSecond = float64(stats.TotalRequests) / (float64(totalMs) / 1000.0)
	}

	return stats
}

// Percentile returns the p-th percentile (0-100) of an ascending slice using
// linear interpolation between the two closest ranks. The interpolated value
// is truncated toward zero. p is clamped to [0,100]; NaN yields 0.
func Percentile(sorted []int64, p float64) int64 {
	n := len(sorted)
	if n == 0 || math.IsNaN(p) {
		return 0
	}
	p = math.Max(0, math.Min(100, p))
	rank := (p / 100.0) * float64(n-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower < 0 {
		lower = 0
	}
	if lower == upper || upper >= n {
		if lower > n-1 {
			lower = n - 1
		}
		return sorted[lower]
	}
	weight := rank - float64(lower)
	lo := float64(sorted[lower])
	hi := float64(sorted[upper])
	return int64(lo + weight*(hi-lo))
}
