package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config carries everything a run needs, merged from the scenario file
// and command-line flags. Flags win over file settings.
type Config struct {
	TargetURL string   `mapstructure:"target"`
	Method    string   `mapstructure:"method"`
	Headers   []string `mapstructure:"headers"`
	Body      string   `mapstructure:"body"`
	BodyFile  string   `mapstructure:"body_file"`

	Concurrency int           `mapstructure:"clients"`
	Iterations  int           `mapstructure:"requests"`
	Duration    time.Duration `mapstructure:"duration"`
	Rate        int           `mapstructure:"rate"`
	Timeout     time.Duration `mapstructure:"timeout"`
	KeepAlive   time.Duration `mapstructure:"keep_alive"`
	Insecure    bool          `mapstructure:"insecure"`

	// HasIterations and HasDuration record whether the request budget and
	// the deadline were given explicitly, by flag or by scenario key. They
	// decide which stop condition the run gets.
	HasIterations bool `mapstructure:"-"`
	HasDuration   bool `mapstructure:"-"`

	Verbose    bool `mapstructure:"verbose"`
	JSONOutput bool `mapstructure:"json_output"`
	Dashboard  bool `mapstructure:"dashboard"`
	LogErrors  bool `mapstructure:"log_errors"`

	Thresholds         []string `mapstructure:"thresholds"`
	HistoryPath        string   `mapstructure:"history"`
	SummaryPath        string   `mapstructure:"append_summary"`
	MetricsListen      string   `mapstructure:"metrics_listen"`
	StreamingQuantiles bool     `mapstructure:"streaming_quantiles"`

	Tracing TracingConfig `mapstructure:"tracing"`

	ScenarioFile  string `mapstructure:"-"`
	PrintScenario bool   `mapstructure:"-"`
}

// TracingConfig configures OTLP span export for outgoing requests.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
	// Propagate controls W3C trace context injection. Unset means
	// "inject whenever spans are exported".
	Propagate *bool `mapstructure:"propagate"`
}

// Enabled reports whether any tracing work was requested, either span
// export or bare W3C header propagation.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != "" || (t.Propagate != nil && *t.Propagate)
}

// ShouldPropagate reports whether trace context headers are injected
// into outgoing requests.
func (t TracingConfig) ShouldPropagate() bool {
	if t.Propagate != nil {
		return *t.Propagate
	}
	return strings.TrimSpace(t.Endpoint) != ""
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Validate checks the merged configuration before any worker spawns.
// Every problem found is reported together in a single ValidationError.
func (c Config) Validate() error {
	var issues []string
	var warnings []string

	if strings.TrimSpace(c.TargetURL) == "" {
		issues = append(issues, "target is required (use --help for usage information)")
	}

	// Security warnings for high rate/concurrency
	if c.Rate > 1000 {
		warnings = append(warnings, fmt.Sprintf("WARNING: High rate limit configured (%d RPS). Ensure you have authorization to test the target system.", c.Rate))
	}
	if c.Concurrency > 500 {
		warnings = append(warnings, fmt.Sprintf("WARNING: High concurrency configured (%d workers). Ensure you have authorization to test the target system.", c.Concurrency))
	}
	if c.Insecure {
		warnings = append(warnings, "WARNING: TLS certificate verification is DISABLED (--insecure). This should ONLY be used in development/testing environments. Man-in-the-middle attacks are possible.")
	}

	// Print warnings to stderr
	if len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, w)
		}
	}

	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Iterations < 0 {
		issues = append(issues, "iterations must be >= 0")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.Duration < 0 {
		issues = append(issues, "duration must be >= 0")
	}
	if c.HasDuration && c.Duration == 0 {
		issues = append(issues, "duration must be > 0 when set")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.KeepAlive < 0 {
		issues = append(issues, "keep-alive must be >= 0")
	}
	if strings.TrimSpace(c.Body) != "" && strings.TrimSpace(c.BodyFile) != "" {
		issues = append(issues, "body and bodyFile are mutually exclusive")
	}
	if c.Dashboard && c.JSONOutput {
		issues = append(issues, "dashboard and json-output are mutually exclusive")
	}
	if c.Dashboard && c.Verbose {
		issues = append(issues, "dashboard and verbose are mutually exclusive")
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}

	return nil
}
