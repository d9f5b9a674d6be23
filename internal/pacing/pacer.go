// Package pacing enforces a minimum delay between successive calls to the
// same external provider so the pipeline stays inside provider rate limits.
package pacing

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer hands out one rate.Limiter per provider key. Limiters are created
// lazily on first use; different providers never wait on each other.
type Pacer struct {
	interval time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewPacer creates a Pacer enforcing the given minimum inter-request interval
// per provider. A non-positive interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the provider's minimum interval since its previous call
// has elapsed, or until ctx is cancelled.
func (p *Pacer) Wait(ctx context.Context, provider string) error {
	if p.interval <= 0 {
		return nil
	}
	return p.limiter(provider).Wait(ctx)
}

func (p *Pacer) limiter(provider string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	lim, ok := p.limiters[provider]
	if !ok {
		// Burst 1 makes the limiter a strict minimum-interval gate.
		lim = rate.NewLimiter(rate.Every(p.interval), 1)
		p.limiters[provider] = lim
	}
	return lim
}
