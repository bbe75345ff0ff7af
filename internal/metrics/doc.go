// Package metrics turns request outcomes into load test statistics.
//
// Every request, HTTP or FlashKV, produces exactly one [Outcome]. Outcomes are
// never errors: a transport failure is an Outcome with a zero status code and
// a populated Error field, while a failed response is an Outcome with its
// real status code and an empty Error.
//
// # Reduction
//
// [Reduce] folds the full outcome list of a run into [Stats]:
//
//	stats := metrics.Reduce(result.Outcomes, result.Duration)
//
// Latency extremes, the mean and the p50/p95/p99 percentiles are computed
// over successful outcomes only. Percentiles use linear interpolation
// between closest ranks (see [Percentile]), so they are exact for the
// recorded millisecond samples. Reduce is pure and safe to call repeatedly.
//
// # Live Collection
//
// [Collector] is a goroutine-safe sink that records outcomes while a run is
// in progress. It keeps an HDR histogram so progress displays can show
// approximate percentiles without holding every sample:
//
//	collector := metrics.NewCollector()
//	collector.Record(outcome)
//	snap := collector.Snapshot(time.Since(start))
//
// The final report always comes from Reduce, never from the Collector.
package metrics
