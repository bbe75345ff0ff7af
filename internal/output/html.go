package output

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/torosent/volley/internal/metrics"
	"github.com/torosent/volley/internal/threshold"
)

// HTMLReportData contains all data needed for the HTML report template.
type HTMLReportData struct {
	Report           Report
	GeneratedAt      string
	StatusRows       []metrics.StatusRow
	ErrorRows        []metrics.ErrorRow
	ThresholdSummary *ThresholdSummary
}

// ThresholdSummary counts passing and failing thresholds for display.
type ThresholdSummary struct {
	Total   int
	Passed  int
	Failed  int
	Results []threshold.Result
}

// GenerateHTMLReport writes a standalone HTML summary of report to w.
func GenerateHTMLReport(w io.Writer, report Report) error {
	var thresholdSummary *ThresholdSummary
	if len(report.Thresholds) > 0 {
		thresholdSummary = &ThresholdSummary{
			Total:   len(report.Thresholds),
			Results: report.Thresholds,
		}
		for _, tr := range report.Thresholds {
			if tr.Pass {
				thresholdSummary.Passed++
			} else {
				thresholdSummary.Failed++
			}
		}
	}

	data := HTMLReportData{
		Report:           report,
		GeneratedAt:      time.Now().Format(time.RFC3339),
		StatusRows:       metrics.StatusRows(report.Stats.StatusCodes),
		ErrorRows:        metrics.ErrorRows(report.Stats.Errors),
		ThresholdSummary: thresholdSummary,
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatFloat": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
		"formatPercent": func(part, total int64) string {
			if total == 0 {
				return "0.0"
			}
			return fmt.Sprintf("%.1f", (float64(part)/float64(total))*100)
		},
		"statusLabel": statusLabel,
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Volley Load Test Report</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #2c3e50;
            line-height: 1.6;
            padding: 20px;
        }
        .container {
            max-width: 1400px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0,0,0,0.1);
            overflow: hidden;
        }
        header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 30px 40px;
        }
        header h1 {
            font-size: 2rem;
            margin-bottom: 10px;
        }
        header .meta {
            opacity: 0.9;
            font-size: 0.9rem;
        }
        .content {
            padding: 40px;
        }
        .grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));
            gap: 20px;
            margin-bottom: 40px;
        }
        .card {
            background: #f8f9fa;
            border-radius: 8px;
            padding: 20px;
            border-left: 4px solid #667eea;
        }
        .card h3 {
            font-size: 0.9rem;
            color: #6c757d;
            text-transform: uppercase;
            letter-spacing: 0.5px;
            margin-bottom: 10px;
        }
        .card .value {
            font-size: 2rem;
            font-weight: bold;
            color: #2c3e50;
        }
        .card .subvalue {
            font-size: 0.85rem;
            color: #6c757d;
            margin-top: 5px;
        }
        .card.success {
            border-left-color: #10b981;
        }
        .card.error {
            border-left-color: #ef4444;
        }
        .card.warning {
            border-left-color: #f59e0b;
        }
        .section {
            margin-bottom: 40px;
        }
        .section h2 {
            font-size: 1.5rem;
            margin-bottom: 20px;
            padding-bottom: 10px;
            border-bottom: 2px solid #e5e7eb;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            background: white;
        }
        th, td {
            text-align: left;
            padding: 12px;
            border-bottom: 1px solid #e5e7eb;
        }
        th {
            background: #f8f9fa;
            font-weight: 600;
            color: #4b5563;
            font-size: 0.9rem;
            text-transform: uppercase;
            letter-spacing: 0.5px;
        }
        tr:hover {
            background: #f8f9fa;
        }
        .badge {
            display: inline-block;
            padding: 4px 12px;
            border-radius: 12px;
            font-size: 0.85rem;
            font-weight: 600;
        }
        .badge-success {
            background: #d1fae5;
            color: #065f46;
        }
        .badge-error {
            background: #fee2e2;
            color: #991b1b;
        }
        .latency-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(150px, 1fr));
            gap: 15px;
            margin-top: 20px;
        }
        .latency-item {
            background: #f8f9fa;
            padding: 15px;
            border-radius: 6px;
            text-align: center;
        }
        .latency-item .label {
            font-size: 0.85rem;
            color: #6c757d;
            margin-bottom: 5px;
        }
        .latency-item .value {
            font-size: 1.3rem;
            font-weight: bold;
            color: #2c3e50;
        }
        .no-data {
            text-align: center;
            padding: 40px;
            color: #6c757d;
            font-style: italic;
        }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>Volley Load Test Report</h1>
            <div class="meta" style="margin-top: 5px;">{{.Report.Method}} <a href="{{.Report.Target}}" style="color: white; text-decoration: underline;">{{.Report.Target}}</a></div>
            <div class="meta">Run {{.Report.RunID}} | Generated: {{.GeneratedAt}} | Duration: {{.Report.Stats.TotalDurationMillis}} ms</div>
            <div class="meta">Requests: {{.Report.Requests}} | Concurrency: {{.Report.Concurrency}} | Timeout: {{.Report.Timeout}}{{if .Report.Rate}} | Rate: {{.Report.Rate}} req/s{{end}}</div>
        </header>

        <div class="content">
            <!-- Summary Cards -->
            <div class="grid">
                <div class="card">
                    <h3>Total Requests</h3>
                    <div class="value">{{.Report.Stats.TotalRequests}}</div>
                    {{if .Report.Dropped}}<div class="subvalue">{{.Report.Dropped}} dropped</div>{{end}}
                </div>
                <div class="card success">
                    <h3>Successful</h3>
                    <div class="value">{{.Report.Stats.SuccessfulRequests}}</div>
                    <div class="subvalue">{{formatPercent .Report.Stats.SuccessfulRequests .Report.Stats.TotalRequests}}%</div>
                </div>
                <div class="card error">
                    <h3>Failed</h3>
                    <div class="value">{{.Report.Stats.FailedRequests}}</div>
                    <div class="subvalue">{{.Report.Stats.TransportErrors}} transport errors</div>
                </div>
                <div class="card">
                    <h3>Requests/sec</h3>
                    <div class="value">{{formatFloat .Report.Stats.RequestsPerSecond}}</div>
                </div>
            </div>

            <!-- Latency Statistics -->
            <div class="section">
                <h2>Latency Statistics (ms)</h2>
                {{if .Report.Stats.SuccessfulRequests}}
                <div class="latency-grid">
                    <div class="latency-item">
                        <div class="label">Min</div>
                        <div class="value">{{.Report.Stats.MinLatencyMillis}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">Max</div>
                        <div class="value">{{.Report.Stats.MaxLatencyMillis}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">Average</div>
                        <div class="value">{{formatFloat .Report.Stats.AvgLatencyMillis}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P50</div>
                        <div class="value">{{.Report.Stats.P50}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P95</div>
                        <div class="value">{{.Report.Stats.P95}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P99</div>
                        <div class="value">{{.Report.Stats.P99}}</div>
                    </div>
                </div>
                {{else}}
                <div class="no-data">No successful requests</div>
                {{end}}
            </div>

            <!-- Status Codes -->
            {{if .StatusRows}}
            <div class="section">
                <h2>Status Codes</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Status</th>
                            <th>Count</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .StatusRows}}
                        <tr>
                            <td><strong>{{statusLabel .Code}}</strong></td>
                            <td>{{.Count}} ({{formatPercent .Count $.Report.Stats.TotalRequests}}%)</td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}

            <!-- Errors -->
            {{if .ErrorRows}}
            <div class="section">
                <h2>Errors</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Error</th>
                            <th>Count</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .ErrorRows}}
                        <tr>
                            <td>{{.Kind}}</td>
                            <td><span class="badge badge-error">{{.Count}}</span></td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}

            <!-- Thresholds -->
            {{if .ThresholdSummary}}
            <div class="section">
                <h2>Thresholds ({{.ThresholdSummary.Passed}}/{{.ThresholdSummary.Total}} Passed)</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Threshold</th>
                            <th>Metric</th>
                            <th>Expected</th>
                            <th>Actual</th>
                            <th>Status</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .ThresholdSummary.Results}}
                        <tr>
                            <td>{{.Expr}}</td>
                            <td>{{.Threshold.Metric}} ({{.Threshold.Aggregate}})</td>
                            <td>{{.Threshold.Operator}} {{formatFloat .Threshold.Value}}</td>
                            <td>{{formatFloat .Actual}}</td>
                            <td>
                                {{if .Pass}}
                                <span class="badge badge-success">✓ PASS</span>
                                {{else}}
                                <span class="badge badge-error">✗ FAIL</span>
                                {{end}}
                            </td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}
        </div>
    </div>
</body>
</html>
`
