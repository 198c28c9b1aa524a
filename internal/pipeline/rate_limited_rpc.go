package pipeline

import (
	"context"

	"solana-trading-core/internal/ipc"
	"solana-trading-core/internal/router"
	"solana-trading-core/pkg/ratelimit"
)

// RateLimitedRPC wraps an RPC collaborator with a token-bucket limiter on
// its simulate/submit calls, so a dense burst of intents (or 6005 retries)
// can't exceed the cluster RPC provider's request budget. Confirm is left
// unthrottled: it is a read against an already-submitted signature, not a
// new write against the cluster's request budget.
type RateLimitedRPC struct {
	Inner   RPC
	Limiter *ratelimit.RPCLimiter
}

// NewRateLimitedRPC wraps inner with a limiter permitting the given
// steady-state rate and burst.
func NewRateLimitedRPC(inner RPC, ratePerSec float64, burst int) *RateLimitedRPC {
	return &RateLimitedRPC{Inner: inner, Limiter: ratelimit.NewRPCLimiter(ratePerSec, burst)}
}

func (r *RateLimitedRPC) Simulate(ctx context.Context, intent ipc.TradeIntent, route router.RoutedQuote) ipc.SimulationResult {
	if err := r.Limiter.Wait(ctx); err != nil {
		errCode := err.Error()
		return ipc.SimulationResult{Success: false, ErrorCode: &errCode}
	}
	return r.Inner.Simulate(ctx, intent, route)
}

func (r *RateLimitedRPC) Submit(ctx context.Context, intent ipc.TradeIntent, route router.RoutedQuote) (string, error) {
	if err := r.Limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.Inner.Submit(ctx, intent, route)
}

func (r *RateLimitedRPC) Confirm(ctx context.Context, signature string) (uint64, uint64, int64, uint64, error) {
	return r.Inner.Confirm(ctx, signature)
}

var _ RPC = (*RateLimitedRPC)(nil)
