// rate_limiter.go - Per-client rate limiting for the wallet daemon
package main

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter implements a simple token bucket rate limiter
type RateLimiter struct {
	mu           sync.Mutex
	tokens       int
	maxTokens    int
	refillRate   int
	lastRefill   time.Time
	refillPeriod time.Duration
	lastUsed     time.Time
	now          func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(maxTokens int, refillRate int, refillPeriod time.Duration) *RateLimiter {
	return newRateLimiter(maxTokens, refillRate, refillPeriod, time.Now)
}

func newRateLimiter(maxTokens, refillRate int, refillPeriod time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		tokens:       maxTokens,
		maxTokens:    maxTokens,
		refillRate:   refillRate,
		lastRefill:   now(),
		refillPeriod: refillPeriod,
		lastUsed:     now(),
		now:          now,
	}
}

// Allow checks if a request is allowed and consumes a token if so
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.lastUsed = now
	refillCount := int(now.Sub(rl.lastRefill) / rl.refillPeriod)
	if refillCount > 0 {
		rl.tokens += refillCount * rl.refillRate
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		// Keep the remainder so partial periods still count
		rl.lastRefill = rl.lastRefill.Add(time.Duration(refillCount) * rl.refillPeriod)
	}

	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}

// GetTokens returns the current number of available tokens
func (rl *RateLimiter) GetTokens() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.tokens
}

func (rl *RateLimiter) idleSince(t time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return !rl.lastUsed.After(t)
}

// ClientRateLimiter keeps one bucket per client address
type ClientRateLimiter struct {
	mu           sync.Mutex
	limiters     map[string]*RateLimiter
	maxTokens    int
	refillRate   int
	refillPeriod time.Duration
	now          func() time.Time
}

// NewClientRateLimiter creates a new per-client rate limiter
func NewClientRateLimiter(maxTokens int, refillRate int, refillPeriod time.Duration) *ClientRateLimiter {
	return &ClientRateLimiter{
		limiters:     make(map[string]*RateLimiter),
		maxTokens:    maxTokens,
		refillRate:   refillRate,
		refillPeriod: refillPeriod,
		now:          time.Now,
	}
}

// Allow checks if a request from a client is allowed
func (crl *ClientRateLimiter) Allow(clientID string) bool {
	crl.mu.Lock()
	limiter, exists := crl.limiters[clientID]
	if !exists {
		limiter = newRateLimiter(crl.maxTokens, crl.refillRate, crl.refillPeriod, crl.now)
		crl.limiters[clientID] = limiter
	}
	crl.mu.Unlock()

	return limiter.Allow()
}

// GetTokens returns the tokens left for a client
func (crl *ClientRateLimiter) GetTokens(clientID string) int {
	crl.mu.Lock()
	limiter, exists := crl.limiters[clientID]
	crl.mu.Unlock()

	if !exists {
		return crl.maxTokens
	}
	return limiter.GetTokens()
}

// Len returns the number of tracked clients.
func (crl *ClientRateLimiter) Len() int {
	crl.mu.Lock()
	defer crl.mu.Unlock()
	return len(crl.limiters)
}

// Prune drops the buckets of clients that have not sent a request for idle
// and returns how many were dropped. A dropped client starts again with a full bucket.
func (crl *ClientRateLimiter) Prune(idle time.Duration) int {
	cutoff := crl.now().Add(-idle)
	crl.mu.Lock()
	defer crl.mu.Unlock()

	dropped := 0
	for id, limiter := range crl.limiters {
		if limiter.idleSince(cutoff) {
			delete(crl.limiters, id)
			dropped++
		}
	}
	return dropped
}

// Run prunes idle buckets every interval until ctx is done.
func (crl *ClientRateLimiter) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			crl.Prune(idle)
		}
	}
}

// Middleware rejects requests from clients that have run out of tokens.
// onReject is called for each rejected request and may be nil.
func (crl *ClientRateLimiter) Middleware(onReject func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !crl.Allow(clientAddr(r)) {
				if onReject != nil {
					onReject()
				}
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
