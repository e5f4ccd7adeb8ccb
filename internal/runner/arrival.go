package runner

import (
	"context"

	"golang.org/x/time/rate"
)

// arrivalController paces dispatch starts across the worker pool.
type arrivalController interface {
	Wait(ctx context.Context) error
}

// uniformArrival delegates pacing to a rate.Limiter (uniform spacing).
// The limiter serializes token grants internally, so every worker waits
// on the same clock.
type uniformArrival struct {
	limiter *rate.Limiter
}

func (u *uniformArrival) Wait(ctx context.Context) error {
	if u == nil || u.limiter == nil {
		return nil
	}
	return u.limiter.Wait(ctx)
}
