package main

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/volleyfire/volleyfire/internal/config"
	"github.com/volleyfire/volleyfire/internal/history"
	"github.com/volleyfire/volleyfire/internal/metrics"
	"github.com/volleyfire/volleyfire/internal/threshold"
	"github.com/volleyfire/volleyfire/internal/workload"
)

func sampleReport() metrics.Report {
	return metrics.Report{
		RunID:          "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Total:          100,
		Successes:      95,
		Failures:       5,
		Concurrency:    4,
		RequestsPerSec: 50,
		MeanLatencyMs:  12.5,
		P95LatencyMs:   41,
		P999LatencyMs:  88,
	}
}

func buildSpec(t *testing.T, rawURL string) *workload.Spec {
	t.Helper()
	spec, err := workload.Build(workload.Spec{
		URL:         rawURL,
		Concurrency: 4,
		Stop:        workload.Iterations(100),
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return spec
}

func TestCheckThresholdsPass(t *testing.T) {
	thresholds, err := threshold.ParseMultiple([]string{
		"failures:count <= 5",
		"requests:rate > 10",
	})
	if err != nil {
		t.Fatalf("ParseMultiple() error = %v", err)
	}

	if err := checkThresholds(&config.Config{}, thresholds, sampleReport()); err != nil {
		t.Errorf("expected passing thresholds, got %v", err)
	}
}

func TestCheckThresholdsFail(t *testing.T) {
	thresholds, err := threshold.ParseMultiple([]string{
		"failures:count == 0",
		"requests:rate > 10",
	})
	if err != nil {
		t.Fatalf("ParseMultiple() error = %v", err)
	}

	err = checkThresholds(&config.Config{}, thresholds, sampleReport())
	if err == nil {
		t.Fatal("expected threshold failure")
	}
	if err.Error() != "1 of 2 thresholds failed" {
		t.Errorf("expected '1 of 2 thresholds failed', got %q", err)
	}
}

func TestCheckThresholdsEmpty(t *testing.T) {
	if err := checkThresholds(&config.Config{}, nil, sampleReport()); err != nil {
		t.Errorf("expected nil for no thresholds, got %v", err)
	}
}

func TestPersistResultDisabled(t *testing.T) {
	spec := buildSpec(t, "http://localhost:8080/work")
	if err := persistResult(&config.Config{}, spec, "run-1", sampleReport()); err != nil {
		t.Errorf("expected no-op persist, got %v", err)
	}
}

func TestPersistResultHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	spec := buildSpec(t, "http://localhost:8080/work")
	report := sampleReport()

	cfg := &config.Config{HistoryPath: path}
	if err := persistResult(cfg, spec, report.RunID, report); err != nil {
		t.Fatalf("persistResult() error = %v", err)
	}

	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()

	got, err := store.Get(report.RunID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Target != spec.URL {
		t.Errorf("target = %q, want %q", got.Target, spec.URL)
	}
	if got.Report.Failures != 5 {
		t.Errorf("failures = %d, want 5", got.Report.Failures)
	}
}

func TestPersistResultSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	spec := buildSpec(t, "http://localhost:8080/work")
	report := sampleReport()

	cfg := &config.Config{SummaryPath: path}
	if err := persistResult(cfg, spec, report.RunID, report); err != nil {
		t.Fatalf("persistResult() error = %v", err)
	}
	// A second run appends a second line.
	if err := persistResult(cfg, spec, report.RunID, report); err != nil {
		t.Fatalf("second persistResult() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open summary: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lines := 0
	for scanner.Scan() {
		lines++
		if !strings.Contains(scanner.Text(), spec.URL) {
			t.Errorf("summary line %d missing target", lines)
		}
	}
	if lines != 2 {
		t.Errorf("expected 2 summary lines, got %d", lines)
	}
}
