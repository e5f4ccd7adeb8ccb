package metrics

import (
	"sort"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Aggregator folds request outcomes into run statistics. It is the sole
// consumer of a run's outcome channel: accumulator state is confined to
// the goroutine running Consume, so folding needs no locks. Concurrent
// readers go through the optional [LiveStats] view instead.
type Aggregator struct {
	concurrency int
	streaming   bool
	runID       string

	count      int64
	successes  int64
	failures   int64
	sumLatency time.Duration
	minLatency time.Duration
	maxLatency time.Duration
	samples    []time.Duration
	hist       *hdrhistogram.Histogram
	errors     map[string]int64

	live      *LiveStats
	observers []func(Outcome)

	done chan struct{}
}

// AggregatorOptions configures an Aggregator for a single run.
type AggregatorOptions struct {
	// Concurrency is echoed into the final report.
	Concurrency int
	// RunID is echoed into the final report when set.
	RunID string
	// Streaming switches p95/p99.9 from the exact sorted-sample method
	// to an HDR histogram estimate, trading exactness for constant
	// memory on very large runs.
	Streaming bool
	// Live, when set, is updated with every folded outcome so tickers
	// and dashboards can read progress concurrently.
	Live *LiveStats
	// Observers are invoked in order for every folded outcome.
	Observers []func(Outcome)
}

func NewAggregator(opts AggregatorOptions) *Aggregator {
	a := &Aggregator{
		concurrency: opts.Concurrency,
		streaming:   opts.Streaming,
		runID:       opts.RunID,
		errors:      make(map[string]int64),
		live:        opts.Live,
		observers:   opts.Observers,
		done:        make(chan struct{}),
	}
	if opts.Streaming {
		// Track latencies from 1µs up to 60s with 3 significant figures.
		a.hist = hdrhistogram.New(1, 60_000_000, 3)
	}
	return a
}

// Consume drains results until the channel is closed. Closure is the
// only finalize signal; run Consume on exactly one goroutine.
func (a *Aggregator) Consume(results <-chan Outcome) {
	for out := range results {
		a.fold(out)
	}
	close(a.done)
}

// Wait blocks until Consume has drained the whole channel.
func (a *Aggregator) Wait() { <-a.done }

func (a *Aggregator) fold(out Outcome) {
	a.count++
	a.sumLatency += out.Latency
	if a.minLatency == 0 || out.Latency < a.minLatency {
		a.minLatency = out.Latency
	}
	if out.Latency > a.maxLatency {
		a.maxLatency = out.Latency
	}

	// Failed attempts keep their measured latency in the distribution;
	// a saturating upstream mostly times out, and excluding those
	// samples would report a rosier latency profile than clients saw.
	if a.streaming {
		a.record(out.Latency)
	} else {
		a.samples = append(a.samples, out.Latency)
	}

	if out.Failed() {
		a.failures++
		a.errors[out.BreakdownKey()]++
	} else {
		a.successes++
	}

	if a.live != nil {
		a.live.observe(out)
	}
	for _, fn := range a.observers {
		fn(out)
	}
}

func (a *Aggregator) record(latency time.Duration) {
	us := latency.Microseconds()
	if us < a.hist.LowestTrackableValue() {
		us = a.hist.LowestTrackableValue()
	}
	if us > a.hist.HighestTrackableValue() {
		us = a.hist.HighestTrackableValue()
	}
	_ = a.hist.RecordValue(us)
}

// Report computes the final statistics for the run. Call it after Wait;
// it is a pure function of the folded state, so repeated calls with the
// same elapsed value yield identical reports.
func (a *Aggregator) Report(elapsed time.Duration) Report {
	r := Report{
		RunID:       a.runID,
		Total:       a.count,
		Successes:   a.successes,
		Failures:    a.failures,
		Concurrency: a.concurrency,
		Elapsed:     elapsed,
		MinLatency:  a.minLatency,
		MaxLatency:  a.maxLatency,
	}

	if a.count > 0 {
		r.MeanLatency = time.Duration(int64(a.sumLatency) / a.count)
	}

	if a.streaming {
		if a.hist.TotalCount() > 0 {
			r.P95Latency = time.Duration(a.hist.ValueAtQuantile(95)) * time.Microsecond
			r.P999Latency = time.Duration(a.hist.ValueAtQuantile(99.9)) * time.Microsecond
		}
	} else if len(a.samples) > 0 {
		sort.Slice(a.samples, func(i, j int) bool { return a.samples[i] < a.samples[j] })
		r.P95Latency = nearestRank(a.samples, 0.95)
		r.P999Latency = nearestRank(a.samples, 0.999)
	}

	r.MinLatencyMs = float64(r.MinLatency) / float64(time.Millisecond)
	r.MaxLatencyMs = float64(r.MaxLatency) / float64(time.Millisecond)
	r.MeanLatencyMs = float64(r.MeanLatency) / float64(time.Millisecond)
	r.P95LatencyMs = float64(r.P95Latency) / float64(time.Millisecond)
	r.P999LatencyMs = float64(r.P999Latency) / float64(time.Millisecond)

	r.DurationMs = float64(elapsed) / float64(time.Millisecond)
	if elapsed > 0 && a.count > 0 {
		r.RequestsPerSec = float64(a.count) / elapsed.Seconds()
	}

	if len(a.errors) > 0 {
		r.Errors = make(map[string]int, len(a.errors))
		for k, v := range a.errors {
			r.Errors[k] = int(v)
		}
	}

	return r
}
