package httpserver

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// clientIdleTimeout is how long an unused client bucket is kept.
	clientIdleTimeout = 5 * time.Minute
	// sweepThreshold is the number of tracked clients that triggers eviction.
	sweepThreshold = 10000
)

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientRateLimiter keeps one token bucket per client key.
// It is safe for concurrent use.
type ClientRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewClientRateLimiter creates a limiter allowing ratePerSecond sustained
// requests per client with bursts of up to burst requests.
func NewClientRateLimiter(ratePerSecond float64, burst int) *ClientRateLimiter {
	return &ClientRateLimiter{
		clients: make(map[string]*clientBucket),
		limit:   rate.Limit(ratePerSecond),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow reports whether the client may make a request now, consuming one
// token when it may.
func (l *ClientRateLimiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.clients[client]
	if !ok {
		if len(l.clients) >= sweepThreshold {
			l.sweep(now)
		}
		b = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Clients returns the number of tracked clients.
func (l *ClientRateLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// sweep drops buckets idle for longer than clientIdleTimeout. Caller holds mu.
func (l *ClientRateLimiter) sweep(now time.Time) {
	for key, b := range l.clients {
		if now.Sub(b.lastSeen) > clientIdleTimeout {
			delete(l.clients, key)
		}
	}
}
