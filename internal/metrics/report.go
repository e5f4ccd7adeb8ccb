package metrics

import (
	"math"
	"sort"
	"time"
)

// Report is the final aggregated result of a run. Duration-typed fields
// are for in-process consumers; the millisecond mirrors carry the same
// values in JSON output.
type Report struct {
	RunID       string `json:"run_id,omitempty"`
	Total       int64  `json:"total"`
	Successes   int64  `json:"successes"`
	Failures    int64  `json:"failures"`
	Concurrency int    `json:"concurrency"`

	Elapsed     time.Duration `json:"-"`
	MinLatency  time.Duration `json:"-"`
	MaxLatency  time.Duration `json:"-"`
	MeanLatency time.Duration `json:"-"`
	P95Latency  time.Duration `json:"-"`
	P999Latency time.Duration `json:"-"`

	RequestsPerSec float64 `json:"requests_per_sec"`

	// JSON-friendly millisecond fields.
	MinLatencyMs  float64        `json:"min_latency_ms"`
	MaxLatencyMs  float64        `json:"max_latency_ms"`
	MeanLatencyMs float64        `json:"mean_latency_ms"`
	P95LatencyMs  float64        `json:"p95_latency_ms"`
	P999LatencyMs float64        `json:"p999_latency_ms"`
	DurationMs    float64        `json:"duration_ms"`
	Errors        map[string]int `json:"errors,omitempty"`
}

// Empty reports whether the run finished without a single request.
func (r Report) Empty() bool { return r.Total == 0 }

// BreakdownRow is one row of the error breakdown, ready for display.
type BreakdownRow struct {
	Key   string
	Count int
}

// SortedBreakdown flattens the error map into rows sorted by descending
// count, then by key for stability.
func SortedBreakdown(errors map[string]int) []BreakdownRow {
	if len(errors) == 0 {
		return nil
	}
	rows := make([]BreakdownRow, 0, len(errors))
	for key, count := range errors {
		rows = append(rows, BreakdownRow{Key: key, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Key < rows[j].Key
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}

// nearestRank returns the q-quantile of samples using the nearest-rank
// method: the value at index ceil(q*n)-1 of the ascending order, clamped
// to [0, n-1]. samples must already be sorted.
func nearestRank(samples []time.Duration, q float64) time.Duration {
	n := len(samples)
	if n == 0 {
		return 0
	}
	idx := int(math.Ceil(q*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return samples[idx]
}
