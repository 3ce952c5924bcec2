package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/cratedocs"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond is the per-host request rate used by the Loader
// when no limiter is configured.
const DefaultRequestsPerSecond = 10

var _ cratedocs.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter rate limits requests per host using token buckets.
// Requests to different hosts proceed independently.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewDomainLimiter creates a limiter allowing rps requests per second to
// each host with no bursting. A non-positive rps disables limiting.
func NewDomainLimiter(rps float64) *DomainLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    1,
	}
}

// Wait blocks until a request to host is allowed or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(d.limit, d.burst)
		d.limiters[host] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
