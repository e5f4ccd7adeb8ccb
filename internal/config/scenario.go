package config

import (
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is the YAML document written by --print-scenario. It uses the
// same schema Load accepts, so a dumped scenario can be replayed with
// --scenario.
type Scenario struct {
	Target   string           `yaml:"target"`
	Method   string           `yaml:"method,omitempty"`
	Headers  []ScenarioHeader `yaml:"headers,omitempty"`
	Body     string           `yaml:"body,omitempty"`
	BodyFile string           `yaml:"body_file,omitempty"`

	Clients   int    `yaml:"clients"`
	Requests  int    `yaml:"requests,omitempty"`
	Duration  string `yaml:"duration,omitempty"`
	Rate      int    `yaml:"rate,omitempty"`
	Timeout   string `yaml:"timeout,omitempty"`
	KeepAlive string `yaml:"keep_alive,omitempty"`
	Insecure  bool   `yaml:"insecure,omitempty"`

	Verbose    bool `yaml:"verbose,omitempty"`
	JSONOutput bool `yaml:"json_output,omitempty"`
	Dashboard  bool `yaml:"dashboard,omitempty"`
	LogErrors  bool `yaml:"log_errors,omitempty"`

	Thresholds         []string `yaml:"thresholds,omitempty"`
	History            string   `yaml:"history,omitempty"`
	AppendSummary      string   `yaml:"append_summary,omitempty"`
	MetricsListen      string   `yaml:"metrics_listen,omitempty"`
	StreamingQuantiles bool     `yaml:"streaming_quantiles,omitempty"`

	Tracing *ScenarioTracing `yaml:"tracing,omitempty"`
}

type ScenarioHeader struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

type ScenarioTracing struct {
	Endpoint    string  `yaml:"endpoint,omitempty"`
	Protocol    string  `yaml:"protocol,omitempty"`
	ServiceName string  `yaml:"service_name,omitempty"`
	SampleRate  float64 `yaml:"sample_rate"`
	Insecure    bool    `yaml:"insecure,omitempty"`
	Propagate   *bool   `yaml:"propagate,omitempty"`
}

// ScenarioFromConfig renders the effective settings as a Scenario.
// Requests and duration are only emitted when they were given on the way
// in, so replaying the dump picks the same stop condition.
func ScenarioFromConfig(cfg *Config) Scenario {
	sc := Scenario{
		Target:             cfg.TargetURL,
		Method:             cfg.Method,
		Headers:            scenarioHeaders(cfg.Headers),
		Body:               cfg.Body,
		BodyFile:           cfg.BodyFile,
		Clients:            cfg.Concurrency,
		Rate:               cfg.Rate,
		Insecure:           cfg.Insecure,
		Verbose:            cfg.Verbose,
		JSONOutput:         cfg.JSONOutput,
		Dashboard:          cfg.Dashboard,
		LogErrors:          cfg.LogErrors,
		Thresholds:         append([]string(nil), cfg.Thresholds...),
		History:            cfg.HistoryPath,
		AppendSummary:      cfg.SummaryPath,
		MetricsListen:      cfg.MetricsListen,
		StreamingQuantiles: cfg.StreamingQuantiles,
	}
	if cfg.HasIterations || !cfg.HasDuration {
		sc.Requests = cfg.Iterations
	}
	if cfg.HasDuration {
		sc.Duration = cfg.Duration.String()
	}
	if cfg.Timeout > 0 {
		sc.Timeout = cfg.Timeout.String()
	}
	if cfg.KeepAlive > 0 {
		sc.KeepAlive = cfg.KeepAlive.String()
	}
	if cfg.Tracing.Enabled() {
		sc.Tracing = &ScenarioTracing{
			Endpoint:    cfg.Tracing.Endpoint,
			Protocol:    cfg.Tracing.Protocol,
			ServiceName: cfg.Tracing.ServiceName,
			SampleRate:  cfg.Tracing.SampleRate,
			Insecure:    cfg.Tracing.Insecure,
			Propagate:   cfg.Tracing.Propagate,
		}
	}
	return sc
}

func scenarioHeaders(lines []string) []ScenarioHeader {
	if len(lines) == 0 {
		return nil
	}
	headers := make([]ScenarioHeader, 0, len(lines))
	for _, line := range lines {
		name, value, found := strings.Cut(line, ":")
		if !found {
			name = line
		}
		headers = append(headers, ScenarioHeader{
			Key:   strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}
	return headers
}

// WriteScenario writes cfg to w as a YAML scenario document.
func WriteScenario(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ScenarioFromConfig(cfg)); err != nil {
		return err
	}
	return enc.Close()
}
