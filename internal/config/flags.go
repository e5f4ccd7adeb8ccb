package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "volleyfire",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Request shape flags
	flags.String("target", "", `Target to load test, optionally method-prefixed ("POST https://host/path")`)
	flags.StringP("method", "m", "", "HTTP method to use (wins over the method prefix in --target; defaults to GET)")
	flags.StringArrayP("header", "H", nil, `Additional request header in "Name: value" form (repeatable)`)
	flags.StringP("body", "b", "", "Inline request body payload")
	flags.String("body-file", "", "Path to file containing the request body")

	// Load control flags
	flags.IntP("concurrency", "c", 1, "Number of concurrent workers")
	flags.IntP("iterations", "i", 1, "Total number of requests to send across all workers")
	flags.DurationP("duration", "d", 0, "How long to keep dispatching requests (e.g. 30s, 1m)")
	flags.IntP("rate", "r", 0, "Requests per second limit (0 means unlimited)")
	flags.Duration("timeout", 30*time.Second, "Per-request timeout")
	flags.Duration("keep-alive", 0, "TCP keep-alive period for pooled connections (0 keeps the transport default)")
	flags.Bool("insecure", false, "Skip TLS certificate verification")

	// Output flags
	flags.BoolP("verbose", "v", false, "Print every request outcome as it completes")
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.Bool("dashboard", false, "Show live terminal dashboard with metrics")
	flags.Bool("log-errors", false, "Log each failed request to stderr")

	// Scenario flags
	flags.StringP("scenario", "s", "", "Path to scenario file (JSON or YAML)")
	flags.Bool("print-scenario", false, "Print the effective settings as a YAML scenario and exit")

	// Result handling flags
	flags.StringSlice("threshold", nil, "Performance thresholds (repeatable, e.g. 'latency:p95 < 500')")
	flags.String("history", "", "Path to a history database recording every run report")
	flags.String("append-summary", "", "Append the JSON report to this file, one line per run")
	flags.String("metrics-listen", "", "Serve Prometheus metrics on this address while the run is active")
	flags.Bool("streaming-quantiles", false, "Estimate percentiles with an HDR histogram instead of exact samples")

	// Tracing flags
	flags.String("otlp-endpoint", "", "OTLP collector endpoint for span export (host:port)")
	flags.String("otlp-protocol", "grpc", "OTLP transport: 'grpc' or 'http'")
	flags.Bool("otlp-insecure", false, "Disable TLS when talking to the OTLP collector")
	flags.String("trace-service-name", "", "service.name resource attribute on exported spans")
	flags.Float64("trace-sample-rate", 1.0, "Fraction of requests to trace (0.0-1.0)")
	flags.Bool("trace-propagate", false, "Inject W3C trace context headers (on by default when exporting spans)")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config,
// overriding values from the scenario file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("target") {
		val, err := fs.GetString("target")
		if err != nil {
			return err
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}
	if fs.Changed("method") {
		val, err := fs.GetString("method")
		if err != nil {
			return err
		}
		cfg.Method = val
	}
	if fs.Changed("body") {
		val, err := fs.GetString("body")
		if err != nil {
			return err
		}
		cfg.Body = val
		cfg.BodyFile = ""
	}
	if fs.Changed("body-file") {
		val, err := fs.GetString("body-file")
		if err != nil {
			return err
		}
		cfg.BodyFile = val
		cfg.Body = ""
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("iterations") {
		val, err := fs.GetInt("iterations")
		if err != nil {
			return err
		}
		cfg.Iterations = val
		cfg.HasIterations = true
	}
	if fs.Changed("duration") {
		val, err := fs.GetDuration("duration")
		if err != nil {
			return err
		}
		cfg.Duration = val
		cfg.HasDuration = true
	}
	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("keep-alive") {
		val, err := fs.GetDuration("keep-alive")
		if err != nil {
			return err
		}
		cfg.KeepAlive = val
	}
	if fs.Changed("insecure") {
		val, err := fs.GetBool("insecure")
		if err != nil {
			return err
		}
		cfg.Insecure = val
	}
	if fs.Changed("verbose") {
		val, err := fs.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = val
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("dashboard") {
		val, err := fs.GetBool("dashboard")
		if err != nil {
			return err
		}
		cfg.Dashboard = val
	}
	if fs.Changed("log-errors") {
		val, err := fs.GetBool("log-errors")
		if err != nil {
			return err
		}
		cfg.LogErrors = val
	}

	// Flag headers append after scenario headers so both survive in order.
	vals, err := fs.GetStringArray("header")
	if err != nil {
		return err
	}
	for _, entry := range vals {
		if strings.TrimSpace(entry) == "" {
			return fmt.Errorf("header cannot be empty")
		}
		cfg.Headers = append(cfg.Headers, entry)
	}

	if fs.Changed("print-scenario") {
		val, err := fs.GetBool("print-scenario")
		if err != nil {
			return err
		}
		cfg.PrintScenario = val
	}
	if fs.Changed("threshold") {
		val, err := fs.GetStringSlice("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = val
	}
	if fs.Changed("history") {
		val, err := fs.GetString("history")
		if err != nil {
			return err
		}
		cfg.HistoryPath = strings.TrimSpace(val)
	}
	if fs.Changed("append-summary") {
		val, err := fs.GetString("append-summary")
		if err != nil {
			return err
		}
		cfg.SummaryPath = strings.TrimSpace(val)
	}
	if fs.Changed("metrics-listen") {
		val, err := fs.GetString("metrics-listen")
		if err != nil {
			return err
		}
		cfg.MetricsListen = strings.TrimSpace(val)
	}
	if fs.Changed("streaming-quantiles") {
		val, err := fs.GetBool("streaming-quantiles")
		if err != nil {
			return err
		}
		cfg.StreamingQuantiles = val
	}

	if fs.Changed("otlp-endpoint") {
		val, err := fs.GetString("otlp-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("otlp-protocol") {
		val, err := fs.GetString("otlp-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("otlp-insecure") {
		val, err := fs.GetBool("otlp-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("trace-service-name") {
		val, err := fs.GetString("trace-service-name")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = strings.TrimSpace(val)
	}
	if fs.Changed("trace-sample-rate") {
		val, err := fs.GetFloat64("trace-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("trace-propagate") {
		val, err := fs.GetBool("trace-propagate")
		if err != nil {
			return err
		}
		cfg.Tracing.Propagate = &val
	}

	return nil
}
