package threshold

import (
	"errors"
	"testing"

	"github.com/torosent/volley/internal/metrics"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Threshold
		wantError bool
	}{
		{
			name:  "valid p95 latency threshold",
			input: "latency:p95 < 500",
			want: Threshold{
				Metric:    "latency",
				Aggregate: "p95",
				Operator:  "<",
				Value:     500,
				Raw:       "latency:p95 < 500",
			},
			wantError: false,
		},
		{
			name:  "valid failure rate threshold",
			input: "failures:rate < 0.01",
			want: Threshold{
				Metric:    "failures",
				Aggregate: "rate",
				Operator:  "<",
				Value:     0.01,
				Raw:       "failures:rate < 0.01",
			},
			wantError: false,
		},
		{
			name:  "valid p99 latency with <=",
			input: "latency:p99 <= 1000",
			want: Threshold{
				Metric:    "latency",
				Aggregate: "p99",
				Operator:  "<=",
				Value:     1000,
				Raw:       "latency:p99 <= 1000",
			},
			wantError: false,
		},
		{
			name:  "valid requests rate threshold with >",
			input: "requests:rate > 100",
			want: Threshold{
				Metric:    "requests",
				Aggregate: "rate",
				Operator:  ">",
				Value:     100,
				Raw:       "requests:rate > 100",
			},
			wantError: false,
		},
		{
			name:  "valid avg latency",
			input: "latency:avg < 200",
			want: Threshold{
				Metric:    "latency",
				Aggregate: "avg",
				Operator:  "<",
				Value:     200,
				Raw:       "latency:avg < 200",
			},
			wantError: false,
		},
		{
			name:  "long-form alias",
			input: "http_req_duration:p95 < 250",
			want: Threshold{
				Metric:    "latency",
				Aggregate: "p95",
				Operator:  "<",
				Value:     250,
				Raw:       "http_req_duration:p95 < 250",
			},
			wantError: false,
		},
		{
			name:      "empty string",
			input:     "",
			wantError: true,
		},
		{
			name:      "invalid format - missing operator",
			input:     "latency:p95 500",
			wantError: true,
		},
		{
			name:      "invalid metric",
			input:     "invalid_metric:p95 < 500",
			wantError: true,
		},
		{
			name:      "invalid aggregate",
			input:     "latency:p85 < 500",
			wantError: true,
		},
		{
			name:      "invalid operator",
			input:     "latency:p95 << 500",
			wantError: true,
		},
		{
			name:      "invalid value - not a number",
			input:     "latency:p95 < abc",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantError {
				t.Errorf("Parse() error = %v, wantError %v", err, tt.wantError)
				return
			}
			if !tt.wantError {
				if got.Metric != tt.want.Metric {
					t.Errorf("Parse() Metric = %v, want %v", got.Metric, tt.want.Metric)
				}
				if got.Aggregate != tt.want.Aggregate {
					t.Errorf("Parse() Aggregate = %v, want %v", got.Aggregate, tt.want.Aggregate)
				}
				if got.Operator != tt.want.Operator {
					t.Errorf("Parse() Operator = %v, want %v", got.Operator, tt.want.Operator)
				}
				if got.Value != tt.want.Value {
					t.Errorf("Parse() Value = %v, want %v", got.Value, tt.want.Value)
				}
				if got.Raw != tt.want.Raw {
					t.Errorf("Parse() Raw = %v, want %v", got.Raw, tt.want.Raw)
				}
			}
		})
	}
}

func TestParseMultiple(t *testing.T) {
	tests := []struct {
		name      string
		input     []string
		wantCount int
		wantError bool
	}{
		{
			name: "multiple valid thresholds",
			input: []string{
				"latency:p95 < 500",
				"failures:rate < 0.01",
				"requests:rate > 100",
			},
			wantCount: 3,
			wantError: false,
		},
		{
			name:      "empty slice",
			input:     []string{},
			wantCount: 0,
			wantError: false,
		},
		{
			name: "one valid, one invalid",
			input: []string{
				"latency:p95 < 500",
				"invalid threshold",
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMultiple(tt.input)
			if (err != nil) != tt.wantError {
				t.Errorf("ParseMultiple() error = %v, wantError %v", err, tt.wantError)
				return
			}
			if !tt.wantError && len(got) != tt.wantCount {
				t.Errorf("ParseMultiple() returned %d thresholds, want %d", len(got), tt.wantCount)
			}
		})
	}
}

func TestEvaluator(t *testing.T) {
	// Create sample stats
	stats := metrics.Stats{
		TotalRequests:       1000,
		SuccessfulRequests:  980,
		FailedRequests:      20,
		TotalDurationMillis: 10000,
		MinLatencyMillis:    10,
		MaxLatencyMillis:    500,
		AvgLatencyMillis:    100,
		P50:                 80,
		P95:                 300,
		P99:                 400,
		RequestsPerSecond:   100,
	}

	tests := []struct {
		name       string
		thresholds []string
		wantPass   []bool
	}{
		{
			name: "all thresholds pass",
			thresholds: []string{
				"latency:p99 < 500",
				"failures:rate < 0.05",
				"requests:rate > 50",
			},
			wantPass: []bool{true, true, true},
		},
		{
			name: "some thresholds fail",
			thresholds: []string{
				"latency:p99 < 300",
				"failures:rate < 0.01",
				"requests:rate > 50",
			},
			wantPass: []bool{false, false, true},
		},
		{
			name: "latency percentiles",
			thresholds: []string{
				"latency:p50 < 100",
				"latency:p95 < 250",
				"latency:p99 < 450",
			},
			wantPass: []bool{true, false, true},
		},
		{
			name: "avg and max latency",
			thresholds: []string{
				"latency:avg < 150",
				"latency:max < 600",
				"latency:min > 5",
			},
			wantPass: []bool{true, true, true},
		},
		{
			name: "failure count",
			thresholds: []string{
				"failures:count < 50",
			},
			wantPass: []bool{true},
		},
		{
			name: "request count",
			thresholds: []string{
				"requests:count > 900",
			},
			wantPass: []bool{true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thresholds, err := ParseMultiple(tt.thresholds)
			if err != nil {
				t.Fatalf("ParseMultiple() error = %v", err)
			}

			evaluator := NewEvaluator(thresholds)
			results := evaluator.Evaluate(stats)

			if len(results) != len(tt.wantPass) {
				t.Fatalf("got %d results, want %d", len(results), len(tt.wantPass))
			}

			for i, result := range results {
				if result.Pass != tt.wantPass[i] {
					t.Errorf("threshold[%d] %q: got pass=%v, want %v (actual=%.2f)",
						i, result.Threshold.Raw, result.Pass, tt.wantPass[i], result.Actual)
				}
			}
		})
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name     string
		actual   float64
		operator string
		expected float64
		want     bool
	}{
		{"less than true", 50, "<", 100, true},
		{"less than false", 100, "<", 50, false},
		{"less than equal", 100, "<", 100, false},
		{"less than or equal true", 50, "<=", 100, true},
		{"less than or equal equal", 100, "<=", 100, true},
		{"less than or equal false", 150, "<=", 100, false},
		{"greater than true", 150, ">", 100, true},
		{"greater than false", 50, ">", 100, false},
		{"greater than equal", 100, ">", 100, false},
		{"greater than or equal true", 150, ">=", 100, true},
		{"greater than or equal equal", 100, ">=", 100, true},
		{"greater than or equal false", 50, ">=", 100, false},
		{"equal true", 100, "==", 100, true},
		{"equal false", 100, "==", 101, false},
		{"equal with floating point precision", 100.0000000001, "==", 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compareValues(tt.actual, tt.operator, tt.expected)
			if got != tt.want {
				t.Errorf("compareValues(%.2f, %s, %.2f) = %v, want %v",
					tt.actual, tt.operator, tt.expected, got, tt.want)
			}
		})
	}
}

func TestExtractMetricValue(t *testing.T) {
	stats := metrics.Stats{
		TotalRequests:      1000,
		SuccessfulRequests: 950,
		FailedRequests:     50,
		MinLatencyMillis:   10,
		MaxLatencyMillis:   500,
		AvgLatencyMillis:   100.75,
		P50:                80,
		P95:                300,
		P99:                400,
		RequestsPerSecond:  123.45,
	}

	tests := []struct {
		name      string
		threshold Threshold
		want      float64
		wantError bool
	}{
		{
			name:      "latency p50",
			threshold: Threshold{Metric: "latency", Aggregate: "p50"},
			want:      80,
		},
		{
			name:      "latency p95",
			threshold: Threshold{Metric: "latency", Aggregate: "p95"},
			want:      300,
		},
		{
			name:      "latency p99",
			threshold: Threshold{Metric: "latency", Aggregate: "p99"},
			want:      400,
		},
		{
			name:      "latency avg",
			threshold: Threshold{Metric: "latency", Aggregate: "avg"},
			want:      100.75,
		},
		{
			name:      "latency min",
			threshold: Threshold{Metric: "latency", Aggregate: "min"},
			want:      10,
		},
		{
			name:      "latency max",
			threshold: Threshold{Metric: "latency", Aggregate: "max"},
			want:      500,
		},
		{
			name:      "failures rate",
			threshold: Threshold{Metric: "failures", Aggregate: "rate"},
			want:      0.05,
		},
		{
			name:      "failures count",
			threshold: Threshold{Metric: "failures", Aggregate: "count"},
			want:      50,
		},
		{
			name:      "requests rate",
			threshold: Threshold{Metric: "requests", Aggregate: "rate"},
			want:      123.45,
		},
		{
			name:      "requests count",
			threshold: Threshold{Metric: "requests", Aggregate: "count"},
			want:      1000,
		},
		{
			name:      "unsupported metric",
			threshold: Threshold{Metric: "invalid_metric", Aggregate: "p95"},
			wantError: true,
		},
		{
			name:      "unsupported aggregate for metric",
			threshold: Threshold{Metric: "failures", Aggregate: "p95"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractMetricValue(tt.threshold, stats)
			if (err != nil) != tt.wantError {
				t.Errorf("extractMetricValue() error = %v, wantError %v", err, tt.wantError)
				return
			}
			if !tt.wantError && got != tt.want {
				t.Errorf("extractMetricValue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllPassed(t *testing.T) {
	if !AllPassed(nil) {
		t.Error("AllPassed(nil) = false, want true")
	}
	if !AllPassed([]Result{{Pass: true}, {Pass: true}}) {
		t.Error("AllPassed(all pass) = false, want true")
	}
	if AllPassed([]Result{{Pass: true}, {Pass: false}}) {
		t.Error("AllPassed(one failure) = true, want false")
	}
}

func TestEvaluateZeroRequests(t *testing.T) {
	thresholds, err := ParseMultiple([]string{"failures:rate < 0.5", "latency:p99 < 100"})
	if err != nil {
		t.Fatalf("ParseMultiple() error = %v", err)
	}
	results := NewEvaluator(thresholds).Evaluate(metrics.Reduce(nil, 0))
	for _, r := range results {
		if !r.Pass {
			t.Errorf("%s failed on an empty run: %s", r.Expr, r.Message)
		}
		if r.Expr == "" {
			t.Errorf("result missing expression")
		}
	}
}

func TestCheck(t *testing.T) {
	if err := Check([]Result{{Pass: true}}); err != nil {
		t.Fatalf("Check(pass) error = %v", err)
	}
	err := Check([]Result{{Pass: true}, {Pass: false}, {Pass: false}})
	if !errors.Is(err, ErrThresholdsFailed) {
		t.Fatalf("errors.Is(%v, ErrThresholdsFailed) = false", err)
	}
	if err.Error() != "one or more thresholds failed: 2 of 3" {
		t.Fatalf("Check() error = %q", err.Error())
	}
}
