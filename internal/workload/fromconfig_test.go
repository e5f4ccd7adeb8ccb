package workload_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/volleyfire/volleyfire/internal/config"
	"github.com/volleyfire/volleyfire/internal/workload"
)

func TestFromConfigMethodPrefix(t *testing.T) {
	cfg := &config.Config{TargetURL: "POST https://example.com/send", Concurrency: 1}

	spec, err := workload.FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}

	if spec.Method != "POST" {
		t.Errorf("Method = %q, want POST", spec.Method)
	}
	if spec.URL != "https://example.com/send" {
		t.Errorf("URL = %q, want https://example.com/send", spec.URL)
	}
}

func TestFromConfigExplicitMethodWins(t *testing.T) {
	cfg := &config.Config{
		TargetURL:   "POST https://example.com/send",
		Method:      "DELETE",
		Concurrency: 1,
	}

	spec, err := workload.FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}

	if spec.Method != "DELETE" {
		t.Errorf("Method = %q, want DELETE", spec.Method)
	}
}

func TestFromConfigHeaderLines(t *testing.T) {
	cfg := &config.Config{
		TargetURL:   "https://example.com",
		Concurrency: 1,
		Headers: []string{
			"Content-Type: application/json",
			"X-Env: staging",
			"X-Env: backup",
		},
	}

	spec, err := workload.FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}

	want := []workload.Header{
		{Name: "Content-Type", Value: "application/json"},
		{Name: "X-Env", Value: "staging"},
		{Name: "X-Env", Value: "backup"},
	}
	if len(spec.Headers) != len(want) {
		t.Fatalf("len(Headers) = %d, want %d", len(spec.Headers), len(want))
	}
	for i, h := range want {
		if spec.Headers[i] != h {
			t.Errorf("Headers[%d] = %+v, want %+v", i, spec.Headers[i], h)
		}
	}
}

func TestFromConfigRejectsBadHeaderLine(t *testing.T) {
	cfg := &config.Config{
		TargetURL:   "https://example.com",
		Concurrency: 1,
		Headers:     []string{"NoColonHere"},
	}

	if _, err := workload.FromConfig(cfg); err == nil {
		t.Fatalf("FromConfig() error = nil, want header parse error")
	}
}

func TestFromConfigReadsBodyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payload.json")
	payload := []byte(`{"hello":"world"}`)
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg := &config.Config{
		TargetURL:   "https://example.com",
		Concurrency: 1,
		BodyFile:    path,
	}

	spec, err := workload.FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}

	if !bytes.Equal(spec.Body, payload) {
		t.Errorf("Body = %q, want %q", spec.Body, payload)
	}
}

func TestFromConfigMissingBodyFile(t *testing.T) {
	cfg := &config.Config{
		TargetURL:   "https://example.com",
		Concurrency: 1,
		BodyFile:    filepath.Join(t.TempDir(), "absent.json"),
	}

	_, err := workload.FromConfig(cfg)
	if err == nil {
		t.Fatalf("FromConfig() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "read body file") {
		t.Errorf("error = %v, want read body file context", err)
	}
}

func TestFromConfigStopSelection(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want workload.StopCondition
	}{
		{
			name: "bare invocation sends one request",
			cfg:  config.Config{},
			want: workload.Iterations(1),
		},
		{
			name: "iterations only",
			cfg:  config.Config{Iterations: 100, HasIterations: true},
			want: workload.Iterations(100),
		},
		{
			name: "duration only",
			cfg:  config.Config{Duration: 30 * time.Second, HasDuration: true},
			want: workload.Duration(30 * time.Second),
		},
		{
			name: "both bounds",
			cfg: config.Config{
				Iterations:    100,
				HasIterations: true,
				Duration:      30 * time.Second,
				HasDuration:   true,
			},
			want: workload.Both(100, 30*time.Second),
		},
		{
			name: "explicit zero iterations",
			cfg:  config.Config{Iterations: 0, HasIterations: true},
			want: workload.Iterations(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.TargetURL = "https://example.com"
			tt.cfg.Concurrency = 1
			spec, err := workload.FromConfig(&tt.cfg)
			if err != nil {
				t.Fatalf("FromConfig() error = %v", err)
			}
			if spec.Stop != tt.want {
				t.Errorf("Stop = %+v, want %+v", spec.Stop, tt.want)
			}
		})
	}
}
