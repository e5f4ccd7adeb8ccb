package output

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/volleyfire/volleyfire/internal/metrics"
)

func TestAppendSummaryWritesOneLinePerRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")

	first := metrics.Report{RunID: "01A", Total: 10, Successes: 10, Concurrency: 2}
	second := metrics.Report{RunID: "01B", Total: 20, Successes: 18, Failures: 2, Concurrency: 4}

	if err := AppendSummary(path, "https://example.com", first); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if err := AppendSummary(path, "https://example.com", second); err != nil {
		t.Fatalf("second append failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open summary file: %v", err)
	}
	defer f.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var record map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", len(lines)+1, err)
		}
		lines = append(lines, record)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 summary lines, got %d", len(lines))
	}

	if lines[0]["run_id"] != "01A" || lines[1]["run_id"] != "01B" {
		t.Errorf("unexpected run ids: %v, %v", lines[0]["run_id"], lines[1]["run_id"])
	}
	if lines[1]["target"] != "https://example.com" {
		t.Errorf("expected target in record, got %v", lines[1]["target"])
	}
	if _, err := time.Parse(time.RFC3339Nano, lines[0]["timestamp"].(string)); err != nil {
		t.Errorf("timestamp is not RFC3339: %v", err)
	}
}

func TestAppendSummaryConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs <- AppendSummary(path, "https://example.com", metrics.Report{Total: int64(n)})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read summary file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 8 {
		t.Fatalf("expected 8 summary lines, got %d", len(lines))
	}
	for i, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Errorf("line %d is not valid JSON: %q", i+1, line)
		}
	}
}
