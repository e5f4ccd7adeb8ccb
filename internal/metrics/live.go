package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// LiveStats is the running view of an in-progress run. The aggregator
// goroutine is the only writer; progress tickers, the dashboard, and the
// telemetry endpoint read it concurrently through Snapshot. Counters and
// histogram are guarded separately, so a snapshot taken mid-fold may be
// off by a single outcome between them.
type LiveStats struct {
	total     int64
	successes int64
	failures  int64

	mu     sync.Mutex
	hist   *hdrhistogram.Histogram
	last   time.Duration
	errors map[string]int64
}

func NewLiveStats() *LiveStats {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	return &LiveStats{
		hist:   hdrhistogram.New(1, 60_000_000, 3),
		errors: make(map[string]int64),
	}
}

func (l *LiveStats) observe(out Outcome) {
	atomic.AddInt64(&l.total, 1)
	if out.Failed() {
		atomic.AddInt64(&l.failures, 1)
	} else {
		atomic.AddInt64(&l.successes, 1)
	}

	us := out.Latency.Microseconds()
	l.mu.Lock()
	if us < l.hist.LowestTrackableValue() {
		us = l.hist.LowestTrackableValue()
	}
	if us > l.hist.HighestTrackableValue() {
		us = l.hist.HighestTrackableValue()
	}
	_ = l.hist.RecordValue(us)
	l.last = out.Latency
	if out.Failed() {
		l.errors[out.BreakdownKey()]++
	}
	l.mu.Unlock()
}

// Count returns the number of outcomes observed so far.
func (l *LiveStats) Count() int64 { return atomic.LoadInt64(&l.total) }

// LiveSnapshot is a point-in-time copy of the live view.
type LiveSnapshot struct {
	Total     int64
	Successes int64
	Failures  int64
	P50       time.Duration
	P95       time.Duration
	Max       time.Duration
	Last      time.Duration
	// Errors maps breakdown keys to counts, nil while no request has
	// failed.
	Errors map[string]int
}

// Snapshot returns a copy of the live view for display.
func (l *LiveStats) Snapshot() LiveSnapshot {
	snap := LiveSnapshot{
		Total:     atomic.LoadInt64(&l.total),
		Successes: atomic.LoadInt64(&l.successes),
		Failures:  atomic.LoadInt64(&l.failures),
	}
	l.mu.Lock()
	if l.hist.TotalCount() > 0 {
		snap.P50 = time.Duration(l.hist.ValueAtQuantile(50)) * time.Microsecond
		snap.P95 = time.Duration(l.hist.ValueAtQuantile(95)) * time.Microsecond
		snap.Max = time.Duration(l.hist.Max()) * time.Microsecond
	}
	snap.Last = l.last
	if len(l.errors) > 0 {
		snap.Errors = make(map[string]int, len(l.errors))
		for k, v := range l.errors {
			snap.Errors[k] = int(v)
		}
	}
	l.mu.Unlock()
	return snap
}
