package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/torosent/volley/internal/config"
	"github.com/torosent/volley/internal/metrics"
)

const banner = `
              _ _
 __   _____  | | | ___ _   _
 \ \ / / _ \ | | |/ _ \ | | |
  \ V / (_) || | |  __/ |_| |
   \_/ \___/ |_|_|\___|\__, |
                       |___/`

const maxTargetWidth = 48

// PrintBanner prints the tool banner and the run configuration before the
// run starts.
func PrintBanner(w io.Writer, cfg *config.Config) {
	p := newPalette(w)
	fmt.Fprintln(w, p.title.Render(banner))
	protocol := protocolOf(cfg)
	fmt.Fprintln(w, p.subtle.Render("  HTTP and FlashKV load generator"))
	fmt.Fprintln(w)

	operation := "Method"
	if protocol == config.ProtocolFlashKV {
		operation = "Commands"
	}
	rows := [][]string{
		{"Protocol", string(protocol)},
		{"Target", truncate(cfg.TargetURL, maxTargetWidth)},
		{operation, truncate(cfg.Operation(), maxTargetWidth)},
		{"Requests", strconv.Itoa(cfg.Requests)},
		{"Concurrency", strconv.Itoa(cfg.Concurrency)},
		{"Timeout", cfg.Timeout.String()},
	}
	if cfg.Rate > 0 {
		rows = append(rows, []string{"Rate limit", fmt.Sprintf("%d req/s", cfg.Rate)})
	}
	fmt.Fprintln(w, p.section("Configuration", rows))
	fmt.Fprintln(w)
	fmt.Fprintln(w, p.warn.Render("Starting load test..."))
}

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, report Report) {
	p := newPalette(w)
	stats := report.Stats

	fmt.Fprintln(w)
	summary := [][]string{
		{"Total Requests", strconv.FormatInt(stats.TotalRequests, 10)},
		{"Successful", p.rate(report.SuccessRate()).Render(fmt.Sprintf("%d (%.1f%%)", stats.SuccessfulRequests, report.SuccessRate()))},
		{"Failed", countStyle(p, stats.FailedRequests).Render(strconv.FormatInt(stats.FailedRequests, 10))},
		{"Transport Errors", countStyle(p, stats.TransportErrors).Render(strconv.FormatInt(stats.TransportErrors, 10))},
	}
	if report.Dropped > 0 {
		summary = append(summary, []string{"Dropped", p.err.Render(strconv.FormatInt(report.Dropped, 10))})
	}
	fmt.Fprintln(w, p.section("Results", summary))

	fmt.Fprintln(w, p.section("Latency (ms)", [][]string{
		{"Min", fmt.Sprintf("%d ms", stats.MinLatencyMillis)},
		{"Max", fmt.Sprintf("%d ms", stats.MaxLatencyMillis)},
		{"Average", fmt.Sprintf("%.2f ms", stats.AvgLatencyMillis)},
		{"p50 (median)", p.pctl.Render(fmt.Sprintf("%d ms", stats.P50))},
		{"p95", p.pctl.Render(fmt.Sprintf("%d ms", stats.P95))},
		{"p99", p.pctl.Render(fmt.Sprintf("%d ms", stats.P99))},
	}))

	fmt.Fprintln(w, p.section("Throughput", [][]string{
		{"Requests/sec", p.success.Render(fmt.Sprintf("%.2f", stats.RequestsPerSecond))},
		{"Total time", fmt.Sprintf("%d ms", stats.TotalDurationMillis)},
	}))

	if rows := metrics.StatusRows(stats.StatusCodes); len(rows) > 0 {
		cells := make([][]string, 0, len(rows))
		for _, row := range rows {
			cells = append(cells, []string{statusLabel(row.Code), strconv.FormatInt(row.Count, 10)})
		}
		fmt.Fprintln(w, p.section("Status Codes", cells))
	}

	if rows := metrics.ErrorRows(stats.Errors); len(rows) > 0 {
		cells := make([][]string, 0, len(rows))
		for _, row := range rows {
			cells = append(cells, []string{row.Kind, p.err.Render(strconv.FormatInt(row.Count, 10))})
		}
		fmt.Fprintln(w, p.section("Errors", cells))
	}

	if len(report.Thresholds) > 0 {
		cells := make([][]string, 0, len(report.Thresholds))
		passed := 0
		for _, r := range report.Thresholds {
			status := p.err.Render("✗ FAIL")
			if r.Pass {
				status = p.success.Render("✓ PASS")
				passed++
			}
			cells = append(cells, []string{r.Expr, fmt.Sprintf("%.2f", r.Actual), status})
		}
		title := fmt.Sprintf("Thresholds (%d/%d passed)", passed, len(report.Thresholds))
		fmt.Fprintln(w, p.section(title, cells))
	}

	fmt.Fprintln(w)
	if stats.FailedRequests == 0 && report.Dropped == 0 {
		fmt.Fprintln(w, p.success.Render("✅ Load test completed successfully!"))
	} else {
		fmt.Fprintln(w, p.warn.Render(fmt.Sprintf("⚠️  Load test completed with %d failed requests", stats.FailedRequests+report.Dropped)))
	}
}

// section renders a titled, bordered table. The first column is a label.
func (p palette) section(title string, rows [][]string) string {
	cols := 2
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	headers := make([]string, cols)
	headers[0] = title

	cell := p.value.Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return p.title.Padding(0, 1)
			case col == 0:
				return p.label.Padding(0, 1)
			default:
				return cell
			}
		})
	return t.Render()
}

func countStyle(p palette, n int64) lipgloss.Style {
	if n == 0 {
		return p.success
	}
	return p.err
}

func statusLabel(code int) string {
	if code == 0 {
		return "no response"
	}
	return strconv.Itoa(code)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
