package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/oklog/ulid/v2"

	"github.com/volleyfire/volleyfire/internal/config"
	"github.com/volleyfire/volleyfire/internal/dashboard"
	"github.com/volleyfire/volleyfire/internal/executor"
	"github.com/volleyfire/volleyfire/internal/history"
	"github.com/volleyfire/volleyfire/internal/metrics"
	"github.com/volleyfire/volleyfire/internal/output"
	"github.com/volleyfire/volleyfire/internal/runner"
	"github.com/volleyfire/volleyfire/internal/telemetry"
	"github.com/volleyfire/volleyfire/internal/threshold"
	"github.com/volleyfire/volleyfire/internal/tracing"
	"github.com/volleyfire/volleyfire/internal/workload"
)

const (
	progressInterval = time.Second
	shutdownGrace    = 5 * time.Second
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if cfg.PrintScenario {
		return config.WriteScenario(os.Stdout, cfg)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	spec, err := workload.FromConfig(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer shutdownProvider(provider)

	exec := executor.New(spec)
	defer exec.Close()
	if cfg.Tracing.Enabled() {
		exec.WithTracing(provider.Tracer(), provider.ShouldPropagate())
	}

	live := metrics.NewLiveStats()

	// Verbose lines move to stderr under --json-output so stdout stays
	// machine readable.
	verboseOut := io.Writer(os.Stdout)
	if cfg.JSONOutput {
		verboseOut = os.Stderr
	}
	var observers []func(metrics.Outcome)
	if cfg.Verbose {
		observers = append(observers, output.Verbose(verboseOut))
	}
	if cfg.LogErrors {
		observers = append(observers, output.FailureLogger(os.Stderr))
	}

	var telem *telemetry.Metrics
	if cfg.MetricsListen != "" {
		telem = telemetry.NewMetrics()
		observers = append(observers, telem.Observer())
		srv := telemetry.NewServer(cfg.MetricsListen, telem)
		if err := srv.Start(); err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
		defer stopTelemetry(srv)
		telem.RunStarted()
	}

	runID := ulid.Make().String()
	agg := metrics.NewAggregator(metrics.AggregatorOptions{
		Concurrency: spec.Concurrency,
		RunID:       runID,
		Streaming:   cfg.StreamingQuantiles,
		Live:        live,
		Observers:   observers,
	})

	r := runner.New(runner.Options{
		Concurrency:   spec.Concurrency,
		Stop:          spec.Stop,
		RatePerSecond: cfg.Rate,
		Executor:      exec,
		Aggregator:    agg,
	})

	if !cfg.JSONOutput && !cfg.Dashboard {
		output.PrintBanner(os.Stdout, spec)
	}

	if cfg.Dashboard {
		dash, err := dashboard.New(live, dashboard.RunConfig{
			TargetURL:    spec.URL,
			Method:       spec.Method,
			Concurrency:  spec.Concurrency,
			Stop:         spec.Stop,
			Rate:         cfg.Rate,
			Timeout:      spec.Timeout,
			ScenarioFile: cfg.ScenarioFile,
		}, cancel)
		if err != nil {
			return err
		}
		dash.Start()
		defer dash.Stop()
	}

	var bar *output.IterationProgress
	var progress *output.ProgressReporter
	switch {
	case cfg.JSONOutput || cfg.Dashboard || cfg.Verbose:
		// No progress line; it would interleave with the chosen output.
	case spec.Stop.Mode == workload.StopAfterIterations && stdoutIsTerminal():
		bar = output.NewIterationProgress(live, spec.Stop.Iterations, os.Stdout, cancel)
		bar.Start()
	default:
		progress = output.NewProgressReporter(live, progressInterval, os.Stdout)
		progress.Start()
		defer func() {
			progress.Stop()
			fmt.Fprintln(os.Stdout)
		}()
	}

	result := r.Run(ctx)

	// The bar owns stdout until it quits, so it stops before any report
	// output.
	if bar != nil {
		bar.Stop()
	}
	if telem != nil {
		telem.RunEnded()
	}

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, result); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, result)
	}

	if err := persistResult(cfg, spec, runID, result); err != nil {
		return err
	}

	if err := checkThresholds(cfg, thresholds, result); err != nil {
		return err
	}

	if result.Failures > 0 {
		return fmt.Errorf("%d requests failed", result.Failures)
	}
	return nil
}

// persistResult records the finished report in the history database and
// the summary log when either is configured.
func persistResult(cfg *config.Config, spec *workload.Spec, runID string, report metrics.Report) error {
	if cfg.HistoryPath != "" {
		store, err := history.Open(cfg.HistoryPath)
		if err != nil {
			return err
		}
		saveErr := store.Save(history.Record{
			RunID:     runID,
			Timestamp: time.Now().UTC(),
			Target:    spec.URL,
			Report:    report,
		})
		if closeErr := store.Close(); saveErr == nil {
			saveErr = closeErr
		}
		if saveErr != nil {
			return fmt.Errorf("save run history: %w", saveErr)
		}
	}
	if cfg.SummaryPath != "" {
		if err := output.AppendSummary(cfg.SummaryPath, spec.URL, report); err != nil {
			return err
		}
	}
	return nil
}

// checkThresholds evaluates and prints threshold results. The returned
// error carries the failure count so the process exits nonzero.
func checkThresholds(cfg *config.Config, thresholds []threshold.Threshold, report metrics.Report) error {
	if len(thresholds) == 0 {
		return nil
	}

	out := io.Writer(os.Stdout)
	if cfg.JSONOutput {
		out = os.Stderr
	}

	results := threshold.NewEvaluator(thresholds).Evaluate(report)
	fmt.Fprintln(out, "\nThresholds:")
	failed := 0
	for _, res := range results {
		fmt.Fprintf(out, "  %s\n", res.Message)
		if !res.Pass {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d thresholds failed", failed, len(results))
	}
	return nil
}

func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func shutdownProvider(provider *tracing.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	_ = provider.Shutdown(ctx)
}

func stopTelemetry(srv *telemetry.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	_ = srv.Stop(ctx)
}
