// Package ratelimit throttles outbound RPC calls (simulate/send) against a
// Solana cluster so the trading core stays under provider-imposed request
// budgets.
package ratelimit

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RPCLimiter wraps a token-bucket limiter around the RPC stub's
// simulate/send collaborator calls, tracking usage for warning logs the
// way the teacher's weight-based limiter did.
type RPCLimiter struct {
	limiter *rate.Limiter

	mu        sync.Mutex
	allowed   uint64
	delayedNs int64
}

// NewRPCLimiter creates a limiter permitting ratePerSec requests per second
// with a burst of burst requests.
func NewRPCLimiter(ratePerSec float64, burst int) *RPCLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RPCLimiter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
	}
}

// Wait blocks until a token is available or ctx is done, logging when the
// wait crosses a threshold that suggests the cluster endpoint is saturated.
func (l *RPCLimiter) Wait(ctx context.Context) error {
	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}
	elapsed := time.Since(start)

	l.mu.Lock()
	l.allowed++
	l.delayedNs += elapsed.Nanoseconds()
	l.mu.Unlock()

	if elapsed >= 250*time.Millisecond {
		log.Printf("rpc rate limiter: request delayed %s waiting for token", elapsed)
	}
	return nil
}

// Allow reports whether a request may proceed immediately without blocking.
func (l *RPCLimiter) Allow() bool {
	ok := l.limiter.Allow()
	if ok {
		l.mu.Lock()
		l.allowed++
		l.mu.Unlock()
	}
	return ok
}

// Usage returns the total number of permitted calls and cumulative delay
// incurred waiting for tokens.
func (l *RPCLimiter) Usage() (allowed uint64, totalDelay time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allowed, time.Duration(l.delayedNs)
}

// SetLimit adjusts the steady-state rate, e.g. after a provider changes its
// published budget.
func (l *RPCLimiter) SetLimit(ratePerSec float64) {
	l.limiter.SetLimit(rate.Limit(ratePerSec))
}
