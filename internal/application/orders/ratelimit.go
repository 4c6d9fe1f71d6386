package orders

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrHourlyCapReached is returned when the invocation-scoped hourly order
// creation budget is exhausted. The import sweep stops creating and leaves
// the remainder for the next run.
var ErrHourlyCapReached = errors.New("orders: hourly order creation cap reached")

// RateLimiter paces storefront order creation: a minimum delay between
// consecutive creations plus a rolling hourly cap.
//
// State is in-process and in-memory: a restart resets both the counter and
// the pacing. A multi-instance deployment would need to move the counter
// into the persistence store. The limiter is constructed explicitly and
// injected so the trade-off stays visible and testable.
type RateLimiter struct {
	limiter   *rate.Limiter
	hourlyCap int

	mu          sync.Mutex
	windowStart time.Time
	created     int

	now func() time.Time
}

// NewRateLimiter creates a limiter with the given minimum delay between
// order creations and hourly cap. Non-positive values disable the
// corresponding control.
func NewRateLimiter(minInterval time.Duration, hourlyCap int) *RateLimiter {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &RateLimiter{
		limiter:   rate.NewLimiter(limit, 1),
		hourlyCap: hourlyCap,
		now:       time.Now,
	}
}

// Reserve consumes one order-creation slot, blocking for the inter-order
// delay. Returns ErrHourlyCapReached when the hourly budget is spent, or the
// context error if the wait is cancelled.
func (r *RateLimiter) Reserve(ctx context.Context) error {
	if err := r.reserveHourly(); err != nil {
		return err
	}
	return r.limiter.Wait(ctx)
}

func (r *RateLimiter) reserveHourly() error {
	if r.hourlyCap <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.windowStart.IsZero() || now.Sub(r.windowStart) >= time.Hour {
		r.windowStart = now
		r.created = 0
	}
	if r.created >= r.hourlyCap {
		return ErrHourlyCapReached
	}
	r.created++
	return nil
}

// CreatedInWindow returns the number of creations counted in the current
// hourly window. For observability endpoints.
func (r *RateLimiter) CreatedInWindow() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created
}
