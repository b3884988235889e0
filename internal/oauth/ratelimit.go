package oauth

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Throttle keeps one token bucket per marketplace so a burst of refreshes
// against one provider cannot exhaust its rate limit or delay another.
type Throttle struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewThrottle creates a Throttle. A non-positive perSecond disables limiting.
func NewThrottle(perSecond float64, burst int) *Throttle {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &Throttle{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a call to slug is allowed or ctx is done.
func (t *Throttle) Wait(ctx context.Context, slug string) error {
	if err := t.limiter(slug).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

func (t *Throttle) limiter(slug string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.limiters[slug]
	if !ok {
		l = rate.NewLimiter(t.limit, t.burst)
		t.limiters[slug] = l
	}
	return l
}
