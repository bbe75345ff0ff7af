package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/torosent/volley/internal/config"
	"github.com/torosent/volley/internal/metrics"
	"github.com/torosent/volley/internal/output"
	"github.com/torosent/volley/internal/runner"
	"github.com/torosent/volley/internal/threshold"
	"github.com/torosent/volley/internal/tracing"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

type stderrFailureLogger struct {
	mu       sync.Mutex
	w        io.Writer
	protocol config.Protocol
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCommand(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "volley [url]",
		Short:         "Fire a fixed number of HTTP or FlashKV requests with bounded concurrency",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader().Load(cmd.Flags(), args)
			if err != nil {
				if errors.Is(err, config.ErrHelpRequested) {
					return cmd.Help()
				}
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	config.RegisterFlags(cmd)
	return cmd
}

func run(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(stderr, "[volley] tracing shutdown: %v\n", err)
		}
	}()

	exec, err := newExecutorFromConfig(cfg, provider)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()
	exec = runner.WithRecorder(exec, collector)
	if cfg.LogErrors {
		exec = runner.WithLogging(exec, &stderrFailureLogger{w: stderr, protocol: cfg.Protocol})
	}

	textOutput := cfg.Format == config.FormatText || cfg.Format == ""
	if textOutput {
		output.PrintBanner(stdout, cfg)
	}

	opts := runner.Options{
		Concurrency:   cfg.Concurrency,
		TotalRequests: cfg.Requests,
		RatePerSecond: cfg.Rate,
		Executor:      exec,
	}
	view := newProgressView(cfg, collector, stderr)
	if view != nil {
		opts.Progress = view.Tick
		view.Start()
	}

	startedAt := time.Now()
	result := runner.New(opts).Run(ctx)
	if view != nil {
		view.Stop()
	}

	stats := metrics.Reduce(result.Outcomes, result.Duration)
	var results []threshold.Result
	if len(thresholds) > 0 {
		results = threshold.NewEvaluator(thresholds).Evaluate(stats)
	}

	report := output.NewReport(cfg, startedAt, result, stats, results)
	if err := output.Write(stdout, cfg.Format, report); err != nil {
		return err
	}
	if cfg.HTMLReport != "" {
		if err := writeHTMLReport(cfg.HTMLReport, report); err != nil {
			return err
		}
		if textOutput {
			fmt.Fprintf(stdout, "HTML report written to %s\n", cfg.HTMLReport)
		}
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted after %d of %d requests: %w", stats.TotalRequests, cfg.Requests, err)
	}
	return threshold.Check(results)
}

func newProgressView(cfg *config.Config, collector *metrics.Collector, w io.Writer) output.ProgressView {
	if cfg.NoProgress {
		return nil
	}
	if isTerminal(w) {
		return output.NewProgressBar(collector, cfg.Requests, w)
	}
	return output.NewProgressReporter(collector, cfg.Requests, progressInterval, w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func writeHTMLReport(path string, report output.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create html report: %w", err)
	}
	if err := output.GenerateHTMLReport(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (l *stderrFailureLogger) LogFailure(o metrics.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if o.TransportFailure() {
		fmt.Fprintf(l.w, "[volley] request failed after %dms: %s\n", o.DurationMillis(), o.Error)
		return
	}
	label := "HTTP"
	if l.protocol == config.ProtocolFlashKV {
		label = "FlashKV status"
	}
	fmt.Fprintf(l.w, "[volley] request failed after %dms: %s %d\n", o.DurationMillis(), label, o.StatusCode)
}
