package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestRPCLimiter_Allow(t *testing.T) {
	l := NewRPCLimiter(1000, 5)

	for i := 0; i < 5; i++ {
		if !l.Allow() {
			t.Fatalf("expected burst token %d to be allowed", i)
		}
	}

	allowed, _ := l.Usage()
	if allowed != 5 {
		t.Fatalf("expected usage.allowed=5, got %d", allowed)
	}
}

func TestRPCLimiter_WaitRespectsContext(t *testing.T) {
	l := NewRPCLimiter(0.001, 1)
	// Drain the single burst token.
	if !l.Allow() {
		t.Fatalf("expected initial burst token to be allowed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx); err == nil {
		t.Fatalf("expected Wait to return context deadline error")
	}
}

func TestRPCLimiter_SetLimit(t *testing.T) {
	l := NewRPCLimiter(1, 1)
	l.SetLimit(1000)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx); err != nil {
		t.Fatalf("expected Wait to succeed after raising limit: %v", err)
	}
}
