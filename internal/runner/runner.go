package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/volleyfire/volleyfire/internal/metrics"
	"github.com/volleyfire/volleyfire/internal/workload"
)

// Runner dispatches requests from a shared iteration budget across a
// fixed pool of workers and folds their outcomes into a single report.
type Runner struct {
	opt     Options
	arrival arrivalController
	bounded bool

	remaining  int64
	dispatched int64
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{
		opt:     opt,
		arrival: &uniformArrival{limiter: opt.LimiterFactory(opt.RatePerSecond)},
		bounded: opt.Stop.Mode == workload.StopAfterIterations || opt.Stop.Mode == workload.StopFirstOf,
	}
}

// Run executes the workload until the stop condition fires or ctx is
// cancelled, then returns the finalized report. Cancellation and the
// deadline gate new dispatches only: requests already in flight run to
// completion or to their own timeout, and every outcome reaches the
// report. Run must not be called concurrently on the same Runner.
func (r *Runner) Run(ctx context.Context) metrics.Report {
	start := time.Now()
	agg := r.opt.Aggregator

	atomic.StoreInt64(&r.remaining, int64(r.opt.Stop.Iterations))
	atomic.StoreInt64(&r.dispatched, 0)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	switch r.opt.Stop.Mode {
	case workload.StopAfterDuration, workload.StopFirstOf:
		// The deadline is fixed at run start; it is not extended by
		// in-flight work.
		deadlineCtx, deadlineCancel := context.WithTimeout(runCtx, r.opt.Stop.Duration)
		defer deadlineCancel()
		runCtx = deadlineCtx
	}

	results := make(chan metrics.Outcome, r.opt.Concurrency)
	go agg.Consume(results)

	var wg sync.WaitGroup
	if r.opt.Executor != nil {
		// Request contexts are detached from run cancellation so that
		// stopping the run never aborts an exchange already on the wire.
		reqCtx := context.WithoutCancel(runCtx)
		wg.Add(r.opt.Concurrency)
		for i := 0; i < r.opt.Concurrency; i++ {
			go r.worker(runCtx, reqCtx, i, results, &wg)
		}
	}
	wg.Wait()

	// Closing the channel is the aggregator's only finalize signal, and
	// it happens strictly after the last worker has sent its outcome.
	close(results)
	agg.Wait()

	return agg.Report(time.Since(start))
}

func (r *Runner) worker(runCtx, reqCtx context.Context, id int, results chan<- metrics.Outcome, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		if runCtx.Err() != nil {
			return
		}
		if err := r.arrival.Wait(runCtx); err != nil {
			return
		}
		seq, ok := r.claim()
		if !ok {
			return
		}
		// Blocking send: outcomes are never dropped. The aggregator
		// keeps draining until every worker has exited.
		results <- r.opt.Executor.Execute(reqCtx, seq, id)
	}
}

// claim takes one iteration from the shared budget. Once the counter
// drops below zero the budget is spent and all later claims are denied,
// so a bounded run dispatches exactly its iteration count no matter how
// many workers race here. The returned sequence number is unique and
// dense within the run.
func (r *Runner) claim() (uint64, bool) {
	if r.bounded {
		if atomic.AddInt64(&r.remaining, -1) < 0 {
			return 0, false
		}
	}
	return uint64(atomic.AddInt64(&r.dispatched, 1) - 1), true
}
