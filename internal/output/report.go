// Package output renders run summaries and live progress for the terminal,
// and serializes the final report as JSON, YAML or HTML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/torosent/volley/internal/config"
	"github.com/torosent/volley/internal/metrics"
	"github.com/torosent/volley/internal/runner"
	"github.com/torosent/volley/internal/threshold"
)

// Report is the complete, serializable summary of one run.
type Report struct {
	RunID       string             `json:"run_id" yaml:"run_id"`
	StartedAt   time.Time          `json:"started_at" yaml:"started_at"`
	Protocol    string             `json:"protocol" yaml:"protocol"`
	Target      string             `json:"target" yaml:"target"`
	Method      string             `json:"method" yaml:"method"`
	Requests    int                `json:"requests" yaml:"requests"`
	Concurrency int                `json:"concurrency" yaml:"concurrency"`
	Timeout     string             `json:"timeout" yaml:"timeout"`
	Rate        int                `json:"rate,omitempty" yaml:"rate,omitempty"`
	Dispatched  int64              `json:"dispatched" yaml:"dispatched"`
	Dropped     int64              `json:"dropped" yaml:"dropped"`
	Stats       metrics.Stats      `json:"stats" yaml:"stats"`
	Thresholds  []threshold.Result `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
}

// NewReport assembles a Report. Each report gets a fresh, time-ordered run ID.
func NewReport(cfg *config.Config, startedAt time.Time, res runner.Result, stats metrics.Stats, thresholds []threshold.Result) Report {
	return Report{
		RunID:       ulid.Make().String(),
		StartedAt:   startedAt.UTC(),
		Protocol:    string(protocolOf(cfg)),
		Target:      cfg.TargetURL,
		Method:      cfg.Operation(),
		Requests:    cfg.Requests,
		Concurrency: cfg.Concurrency,
		Timeout:     cfg.Timeout.String(),
		Rate:        cfg.Rate,
		Dispatched:  res.Dispatched,
		Dropped:     res.Dropped,
		Stats:       stats,
		Thresholds:  thresholds,
	}
}

func protocolOf(cfg *config.Config) config.Protocol {
	if p, err := config.ParseProtocol(string(cfg.Protocol)); err == nil {
		return p
	}
	return cfg.Protocol
}

// SuccessRate returns the share of successful requests as a percentage.
func (r Report) SuccessRate() float64 {
	if r.Stats.TotalRequests == 0 {
		return 0
	}
	return float64(r.Stats.SuccessfulRequests) / float64(r.Stats.TotalRequests) * 100
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// PrintYAMLReport outputs a YAML-formatted report.
func PrintYAMLReport(w io.Writer, report Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}

// Write renders report in the requested format.
func Write(w io.Writer, format config.OutputFormat, report Report) error {
	switch format {
	case config.FormatJSON:
		return PrintJSONReport(w, report)
	case config.FormatYAML:
		return PrintYAMLReport(w, report)
	case config.FormatText, "":
		PrintReport(w, report)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
