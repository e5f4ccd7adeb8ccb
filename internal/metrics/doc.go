// Package metrics defines the outcome model and statistics pipeline for
// load runs.
//
// Every dispatched request produces exactly one [Outcome], classified as
// a success (2xx/3xx status), an HTTP error (any other status), or a
// transport error (no status line at all). Workers send outcomes over a
// bounded channel; a single [Aggregator] goroutine drains it:
//
//	agg := metrics.NewAggregator(metrics.AggregatorOptions{Concurrency: 8})
//	results := make(chan metrics.Outcome, 8)
//	go agg.Consume(results)
//
//	// workers send, then the scheduler closes results
//	agg.Wait()
//	report := agg.Report(elapsed)
//
// Channel closure is the aggregator's only finalize signal, so a report
// can never be produced while outcomes are still in flight.
//
// # Report
//
// [Report] carries the final counts, the latency envelope (min, mean,
// max), p95 and p99.9 latencies, the throughput, and the error
// breakdown keyed by "HTTP <code>" or transport reason. Percentiles use
// the nearest-rank method over the full sample buffer by default;
// [AggregatorOptions.Streaming] swaps in an HDR histogram estimate for
// runs too large to buffer.
//
// # Live view
//
// The aggregator optionally feeds a [LiveStats], the concurrent-read
// counterpart used by progress tickers, the dashboard, and the
// telemetry endpoint. It is derived state: the accumulator itself stays
// confined to the aggregator goroutine.
package metrics
