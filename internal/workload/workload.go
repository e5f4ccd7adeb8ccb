// Package workload defines the immutable description of a load run:
// what to send, how hard to send it, and when to stop.
package workload

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Header is one name-value pair. Order and duplicates are preserved
// from configuration to transmission, so a name given twice reaches the
// wire twice.
type Header struct {
	Name  string
	Value string
}

// StopMode selects how a run is bounded.
type StopMode int

const (
	// StopAfterIterations ends the run after a fixed request count.
	StopAfterIterations StopMode = iota + 1
	// StopAfterDuration ends the run once a wall-clock deadline passes.
	StopAfterDuration
	// StopFirstOf ends the run at whichever bound is reached first.
	StopFirstOf
)

// StopCondition bounds a run. The zero value is invalid; use one of the
// constructors.
type StopCondition struct {
	Mode       StopMode
	Iterations int
	Duration   time.Duration
}

// Iterations stops the run after exactly n requests. n may be zero,
// which yields a run that dispatches nothing.
func Iterations(n int) StopCondition {
	return StopCondition{Mode: StopAfterIterations, Iterations: n}
}

// Duration stops the run once d has elapsed.
func Duration(d time.Duration) StopCondition {
	return StopCondition{Mode: StopAfterDuration, Duration: d}
}

// Both stops the run at n requests or after d, whichever comes first.
func Both(n int, d time.Duration) StopCondition {
	return StopCondition{Mode: StopFirstOf, Iterations: n, Duration: d}
}

func (s StopCondition) String() string {
	switch s.Mode {
	case StopAfterIterations:
		return fmt.Sprintf("%d iterations", s.Iterations)
	case StopAfterDuration:
		return s.Duration.String()
	case StopFirstOf:
		return fmt.Sprintf("%d iterations or %s", s.Iterations, s.Duration)
	default:
		return "unbounded"
	}
}

// Spec is the fully resolved description of one run. Build is the only
// constructor; treat the result as read-only once a run starts.
type Spec struct {
	Method      string
	URL         string
	Headers     []Header
	Body        []byte
	Concurrency int
	Stop        StopCondition
	// Timeout bounds each individual request.
	Timeout time.Duration
	// KeepAlive sets the TCP keep-alive interval; zero keeps the
	// transport default.
	KeepAlive time.Duration
	// Insecure skips TLS certificate verification.
	Insecure bool
}

var knownMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodHead:   {},
	http.MethodPatch:  {},
	http.MethodPut:    {},
	http.MethodDelete: {},
}

// Build applies defaults, validates, and freezes a Spec. The returned
// value owns private copies of the header and body slices.
func Build(in Spec) (*Spec, error) {
	spec := in
	if spec.Method == "" {
		spec.Method = http.MethodGet
	}
	spec.Method = strings.ToUpper(spec.Method)
	if spec.Concurrency == 0 {
		spec.Concurrency = 1
	}
	if spec.Timeout == 0 {
		spec.Timeout = DefaultTimeout
	}

	var issues []string
	if _, ok := knownMethods[spec.Method]; !ok {
		issues = append(issues, fmt.Sprintf("unsupported method %q", in.Method))
	}
	issues = append(issues, validateURL(spec.URL)...)
	for _, h := range spec.Headers {
		issues = append(issues, validateHeader(h)...)
	}
	if spec.Concurrency < 1 {
		issues = append(issues, "concurrency must be at least 1")
	}
	switch spec.Stop.Mode {
	case StopAfterIterations, StopAfterDuration, StopFirstOf:
		if spec.Stop.Iterations < 0 {
			issues = append(issues, "iterations cannot be negative")
		}
		if spec.Stop.Duration < 0 {
			issues = append(issues, "duration cannot be negative")
		}
	default:
		issues = append(issues, "a stop condition is required")
	}
	if spec.Timeout < 0 {
		issues = append(issues, "timeout cannot be negative")
	}
	if spec.KeepAlive < 0 {
		issues = append(issues, "keep-alive cannot be negative")
	}
	if len(issues) > 0 {
		return nil, fmt.Errorf("invalid workload: %s", strings.Join(issues, "; "))
	}

	spec.Headers = append([]Header(nil), spec.Headers...)
	spec.Body = append([]byte(nil), spec.Body...)
	return &spec, nil
}

func validateURL(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{"target URL is required"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return []string{fmt.Sprintf("invalid target URL: %v", err)}
	}
	var issues []string
	if u.Scheme != "http" && u.Scheme != "https" {
		issues = append(issues, fmt.Sprintf("target URL scheme must be http or https, got %q", u.Scheme))
	}
	if u.Host == "" {
		issues = append(issues, "target URL is missing a host")
	}
	return issues
}

func validateHeader(h Header) []string {
	var issues []string
	name := strings.TrimSpace(h.Name)
	if name == "" {
		issues = append(issues, "header name cannot be empty")
		return issues
	}
	if strings.ContainsAny(name, " :\r\n") {
		issues = append(issues, fmt.Sprintf("invalid header name %q", h.Name))
	}
	if strings.ContainsAny(h.Value, "\r\n") {
		issues = append(issues, fmt.Sprintf("header %q value contains line breaks", h.Name))
	}
	return issues
}
