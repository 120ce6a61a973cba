package api

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterExpiry   = time.Hour
	limiterSweepGap = time.Minute
)

// IPRateLimiter keeps a token bucket per client address
type IPRateLimiter struct {
	mu     sync.Mutex
	ips    map[string]*limiterEntry
	rate   rate.Limit
	burst  int
	expiry time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// NewIPRateLimiter allows rps requests per second per address with the given burst
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:    make(map[string]*limiterEntry),
		rate:   rate.Limit(rps),
		burst:  burst,
		expiry: limiterExpiry,
	}
}

// Allow reports whether ip may make a request now
func (l *IPRateLimiter) Allow(ip string) bool {
	return l.limiter(ip, time.Now()).Allow()
}

func (l *IPRateLimiter) limiter(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.ips[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.ips[ip] = e
	}
	e.lastUsed = now
	return e.limiter
}

// Run drops idle limiters until ctx is done
func (l *IPRateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(limiterSweepGap)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.sweep(now)
		}
	}
}

func (l *IPRateLimiter) sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for ip, e := range l.ips {
		if now.Sub(e.lastUsed) > l.expiry {
			delete(l.ips, ip)
			removed++
		}
	}
	return removed
}

// clientIP is the request's remote address without the port. RealIP has
// already replaced RemoteAddr when a proxy header is present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
