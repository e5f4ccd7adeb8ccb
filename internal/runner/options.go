package runner

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/volleyfire/volleyfire/internal/metrics"
	"github.com/volleyfire/volleyfire/internal/workload"
)

// Executor abstracts performing a single request attempt.
// Implementations must be safe for concurrent use and must return an
// outcome for every call, whatever the fate of the request.
type Executor interface {
	Execute(ctx context.Context, seq uint64, worker int) metrics.Outcome
}

// Options configure the Runner.
type Options struct {
	Concurrency   int                    // number of worker goroutines
	Stop          workload.StopCondition // run bound (required)
	RatePerSecond int                    // dispatch pacing cap (0 means unlimited)
	Executor      Executor               // request executor (required)
	// Aggregator consumes the run's outcomes. A plain one is built when
	// nil; supply your own to attach live stats or observers.
	Aggregator     *metrics.Aggregator
	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.Aggregator == nil {
		o.Aggregator = metrics.NewAggregator(metrics.AggregatorOptions{Concurrency: o.Concurrency})
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}
