package advisor

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter spaces out requests and honours the request budget the
// service reports in its x-ratelimit-* headers.
type RateLimiter struct {
	mu sync.Mutex

	// remaining < 0 means the service has not reported a budget yet
	remaining int
	resetsAt  time.Time

	// Minimum interval between requests
	minInterval time.Duration
	lastRequest time.Time
}

// NewRateLimiter creates a limiter allowing one request per second until
// the service reports its limits.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		remaining:   -1,
		minInterval: time.Second,
	}
}

// Wait blocks until a request can be made without exceeding the budget
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if !r.resetsAt.IsZero() && now.After(r.resetsAt) {
		r.remaining = -1
		r.resetsAt = time.Time{}
	}

	if r.remaining == 0 {
		if err := r.sleep(ctx, time.Until(r.resetsAt)); err != nil {
			return err
		}
		r.remaining = -1
		r.resetsAt = time.Time{}
	}

	if elapsed := time.Since(r.lastRequest); elapsed < r.minInterval {
		if err := r.sleep(ctx, r.minInterval-elapsed); err != nil {
			return err
		}
	}

	if r.remaining > 0 {
		r.remaining--
	}
	r.lastRequest = time.Now()
	return nil
}

// sleep waits for d with the lock released. Caller holds r.mu.
func (r *RateLimiter) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	r.mu.Unlock()
	defer r.mu.Lock()

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateFromHeaders updates the budget from response headers such as
// x-ratelimit-remaining-requests: "59" and x-ratelimit-reset-requests: "1s".
func (r *RateLimiter) UpdateFromHeaders(h http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v := h.Get("X-Ratelimit-Remaining-Requests"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			r.remaining = n
		}
	}
	if v := h.Get("X-Ratelimit-Reset-Requests"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			r.resetsAt = time.Now().Add(d)
		}
	}
}

// Status returns the remaining request budget (-1 when unknown) and the
// time until it resets.
func (r *RateLimiter) Status() (remaining int, resetsIn time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.resetsAt.IsZero() {
		resetsIn = max(time.Until(r.resetsAt), 0)
	}
	return r.remaining, resetsIn
}
