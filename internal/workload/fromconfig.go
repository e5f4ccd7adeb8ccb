package workload

import (
	"fmt"
	"os"

	"github.com/volleyfire/volleyfire/internal/config"
)

// FromConfig resolves a merged Config into an immutable Spec. The body
// file is read here, once, so workers never touch the filesystem.
func FromConfig(cfg *config.Config) (*Spec, error) {
	method, rawURL := ParseTarget(cfg.TargetURL)
	if cfg.Method != "" {
		method = cfg.Method
	}

	headers := make([]Header, 0, len(cfg.Headers))
	for _, line := range cfg.Headers {
		h, err := ParseHeaderLine(line)
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}

	body := []byte(cfg.Body)
	if cfg.BodyFile != "" {
		data, err := os.ReadFile(cfg.BodyFile)
		if err != nil {
			return nil, fmt.Errorf("read body file: %w", err)
		}
		body = data
	}

	return Build(Spec{
		Method:      method,
		URL:         rawURL,
		Headers:     headers,
		Body:        body,
		Concurrency: cfg.Concurrency,
		Stop:        stopCondition(cfg),
		Timeout:     cfg.Timeout,
		KeepAlive:   cfg.KeepAlive,
		Insecure:    cfg.Insecure,
	})
}

// stopCondition picks the run bound from whichever limits were given
// explicitly. A bare invocation sends a single request.
func stopCondition(cfg *config.Config) StopCondition {
	switch {
	case cfg.HasIterations && cfg.HasDuration:
		return Both(cfg.Iterations, cfg.Duration)
	case cfg.HasDuration:
		return Duration(cfg.Duration)
	case cfg.HasIterations:
		return Iterations(cfg.Iterations)
	default:
		return Iterations(1)
	}
}
