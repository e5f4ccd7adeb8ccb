package dashboard

import (
	"strings"
	"testing"
	"time"

	"github.com/gizak/termui/v3/widgets"

	"github.com/volleyfire/volleyfire/internal/metrics"
	"github.com/volleyfire/volleyfire/internal/workload"
)

func TestFormatErrorRows(t *testing.T) {
	rows := formatErrorRows(map[string]int{
		"HTTP 500": 3,
		"timeout":  1,
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// Sorted by count descending
	if !strings.Contains(rows[0], "HTTP 500") {
		t.Errorf("expected HTTP 500 first, got %s", rows[0])
	}
	if !strings.Contains(rows[0], "fg:red") {
		t.Errorf("expected red styling in row, got %s", rows[0])
	}
	if !strings.Contains(rows[1], "timeout") {
		t.Errorf("expected timeout second, got %s", rows[1])
	}
}

func TestFormatErrorRowsEmpty(t *testing.T) {
	rows := formatErrorRows(nil)
	if len(rows) != 1 {
		t.Fatalf("expected placeholder row, got %d rows", len(rows))
	}
	if !strings.Contains(rows[0], "No failures") {
		t.Errorf("expected placeholder text, got %s", rows[0])
	}
}

func TestFormatErrorRowsCapped(t *testing.T) {
	errors := map[string]int{
		"HTTP 500": 12, "HTTP 502": 11, "HTTP 503": 10, "HTTP 504": 9,
		"timeout": 8, "dns": 7, "connection": 6, "tls": 5,
		"HTTP 429": 4, "HTTP 400": 3, "HTTP 401": 2, "HTTP 403": 1,
	}
	rows := formatErrorRows(errors)
	if len(rows) != 10 {
		t.Fatalf("expected rows capped at 10, got %d", len(rows))
	}
}

func TestUpdateWidgets(t *testing.T) {
	sparkline := widgets.NewSparkline()
	sparkline.Data = []float64{0}

	d := &Dashboard{
		latencySparkle: widgets.NewSparklineGroup(sparkline),
		latencyPara:    widgets.NewParagraph(),
		rpsGauge:       widgets.NewGauge(),
		errorList:      widgets.NewList(),
		summaryPara:    widgets.NewParagraph(),
		metricsPara:    widgets.NewParagraph(),
		runConfig: RunConfig{
			TargetURL:   "http://localhost:8080",
			Concurrency: 4,
		},
	}

	snap := metrics.LiveSnapshot{
		Total:     100,
		Successes: 97,
		Failures:  3,
		P50:       20 * time.Millisecond,
		P95:       45 * time.Millisecond,
		Max:       90 * time.Millisecond,
		Last:      18 * time.Millisecond,
		Errors:    map[string]int{"HTTP 500": 3},
	}

	d.updateWidgets(snap, 2*time.Second)

	if !strings.Contains(d.metricsPara.Text, "Total Requests:    100") {
		t.Errorf("expected total in metrics pane, got %q", d.metricsPara.Text)
	}
	if !strings.Contains(d.metricsPara.Text, "Current RPS:       50.00") {
		t.Errorf("expected RPS in metrics pane, got %q", d.metricsPara.Text)
	}
	if !strings.Contains(d.metricsPara.Text, "Success Rate:      97.0%") {
		t.Errorf("expected success rate in metrics pane, got %q", d.metricsPara.Text)
	}
	if !strings.Contains(d.latencyPara.Text, "P95:  45.00ms") {
		t.Errorf("expected p95 in latency pane, got %q", d.latencyPara.Text)
	}
	if !strings.Contains(d.summaryPara.Text, "http://localhost:8080") {
		t.Errorf("expected target in summary pane, got %q", d.summaryPara.Text)
	}
	if d.rpsGauge.Label != "50.0 RPS" {
		t.Errorf("expected gauge label 50.0 RPS, got %q", d.rpsGauge.Label)
	}
	if len(d.latencyHistory) != 1 || d.latencyHistory[0] != 20.0 {
		t.Errorf("expected latency history [20], got %v", d.latencyHistory)
	}
	if len(d.errorList.Rows) != 1 || !strings.Contains(d.errorList.Rows[0], "HTTP 500") {
		t.Errorf("expected error row for HTTP 500, got %v", d.errorList.Rows)
	}
}

func TestUpdateWidgetsHistoryCap(t *testing.T) {
	sparkline := widgets.NewSparkline()
	sparkline.Data = []float64{0}

	d := &Dashboard{
		latencySparkle: widgets.NewSparklineGroup(sparkline),
		latencyPara:    widgets.NewParagraph(),
		rpsGauge:       widgets.NewGauge(),
		errorList:      widgets.NewList(),
		summaryPara:    widgets.NewParagraph(),
		metricsPara:    widgets.NewParagraph(),
	}

	snap := metrics.LiveSnapshot{Total: 1, Successes: 1, P50: 10 * time.Millisecond}
	for i := 0; i < 150; i++ {
		d.updateWidgets(snap, time.Second)
	}

	if len(d.latencyHistory) != 100 {
		t.Errorf("expected history capped at 100, got %d", len(d.latencyHistory))
	}
}

func TestFormatRunParams(t *testing.T) {
	tests := []struct {
		name     string
		config   RunConfig
		contains []string
		excludes []string
	}{
		{
			name: "basic config",
			config: RunConfig{
				Concurrency: 10,
				Rate:        100,
				Stop:        workload.Duration(30 * time.Second),
			},
			contains: []string{"Workers: 10", "Rate: 100/s", "Stop: 30s"},
			excludes: []string{"Method:", "Scenario:"},
		},
		{
			name: "unlimited rate",
			config: RunConfig{
				Concurrency: 5,
				Rate:        0,
			},
			contains: []string{"Workers: 5", "Rate: unlimited"},
		},
		{
			name: "POST method shown",
			config: RunConfig{
				Method:      "POST",
				Concurrency: 3,
			},
			contains: []string{"Method: POST"},
		},
		{
			name: "GET method not shown",
			config: RunConfig{
				Method:      "GET",
				Concurrency: 3,
			},
			excludes: []string{"Method:"},
		},
		{
			name: "iteration stop",
			config: RunConfig{
				Concurrency: 5,
				Stop:        workload.Iterations(1000),
			},
			contains: []string{"Stop: 1000 iterations"},
		},
		{
			name: "with timeout",
			config: RunConfig{
				Concurrency: 5,
				Timeout:     10 * time.Second,
			},
			contains: []string{"Timeout: 10s"},
		},
		{
			name: "with scenario file",
			config: RunConfig{
				Concurrency:  5,
				ScenarioFile: "test.yml",
			},
			contains: []string{"Scenario: test.yml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Dashboard{runConfig: tt.config}
			result := d.formatRunParams()

			for _, s := range tt.contains {
				if !strings.Contains(result, s) {
					t.Errorf("expected result to contain %q, got %q", s, result)
				}
			}

			for _, s := range tt.excludes {
				if strings.Contains(result, s) {
					t.Errorf("expected result NOT to contain %q, got %q", s, result)
				}
			}
		})
	}
}
