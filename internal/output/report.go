package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/volleyfire/volleyfire/internal/metrics"
)

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, report metrics.Report) {
	fmt.Fprintln(w, "\n--- Load Test Results ---")
	fmt.Fprintf(w, "Concurrency level:  %d\n", report.Concurrency)
	fmt.Fprintf(w, "Time taken:         %s\n", report.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "Total requests:     %d\n", report.Total)
	fmt.Fprintf(w, "Successful:         %d\n", report.Successes)
	fmt.Fprintf(w, "Failed:             %d\n", report.Failures)
	fmt.Fprintf(w, "Requests/sec:       %.2f\n", report.RequestsPerSec)
	if report.Empty() {
		return
	}
	fmt.Fprintln(w, "\nLatency:")
	fmt.Fprintf(w, "  Mean request time:   %.2f ms\n", report.MeanLatencyMs)
	fmt.Fprintf(w, "  Max request time:    %.2f ms\n", report.MaxLatencyMs)
	fmt.Fprintf(w, "  Min request time:    %.2f ms\n", report.MinLatencyMs)
	fmt.Fprintf(w, "  95'th percentile:    %.2f ms\n", report.P95LatencyMs)
	fmt.Fprintf(w, "  99.9'th percentile:  %.2f ms\n", report.P999LatencyMs)
	if len(report.Errors) > 0 {
		fmt.Fprintln(w, "\nError Breakdown:")
		for _, row := range metrics.SortedBreakdown(report.Errors) {
			fmt.Fprintf(w, "  %s: %d\n", row.Key, row.Count)
		}
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, report metrics.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
