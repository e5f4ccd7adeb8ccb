// Package runner provides the load run execution engine.
//
// The runner spawns a fixed pool of worker goroutines that draw from a
// shared iteration budget, execute requests through an [Executor], and
// send every outcome over a bounded channel to a single aggregator.
//
// # Basic Usage
//
// Create a runner with options and an executor implementation:
//
//	opts := runner.Options{
//		Concurrency:   10,
//		Stop:          workload.Both(1000, time.Minute),
//		RatePerSecond: 100,
//		Executor:      myExecutor,
//	}
//	r := runner.New(opts)
//	report := r.Run(ctx)
//
// # Stop conditions
//
// A run is bounded by an iteration count, a wall-clock duration, or
// both (first one reached wins). The iteration budget is a shared
// atomic counter claimed by workers, so a count-bounded run dispatches
// exactly its configured number of requests regardless of concurrency.
//
// # Cancellation
//
// Cancelling the context passed to Run (or hitting the duration
// deadline) stops new dispatches only. Requests already in flight run
// to completion or to their per-request timeout, and their outcomes are
// still counted. The outcome channel uses blocking sends and is closed
// only after all workers exit, so no outcome can be lost.
//
// # Pacing
//
// [Options.RatePerSecond] caps the dispatch rate through a shared
// rate.Limiter with uniform spacing. Zero disables pacing. The cap is
// constant for the whole run.
package runner
