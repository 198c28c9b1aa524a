package pipeline

import (
	"context"
	"strings"

	"solana-trading-core/internal/ipc"
	"solana-trading-core/internal/router"
)

// RPC abstracts the external simulate/submit/confirm surface. Production
// wires this against a real Solana RPC client; replay and tests wire a
// deterministic stub, per the determinism requirement on suspension
// points.
type RPC interface {
	Simulate(ctx context.Context, intent ipc.TradeIntent, route router.RoutedQuote) ipc.SimulationResult
	Submit(ctx context.Context, intent ipc.TradeIntent, route router.RoutedQuote) (signature string, err error)
	Confirm(ctx context.Context, signature string) (slot, fees uint64, pnl int64, latencyMs uint64, err error)
}

// StubRPC is a deterministic RPC double for replay and tests. Per
// intent_id, it returns the pre-scripted outcome; intents with no scripted
// outcome simulate and confirm successfully with fixed observed values
// (slot 1, fees 5000, pnl 0, latency 100 ms).
type StubRPC struct {
	SimulateOverrides map[string]ipc.SimulationResult
	SubmitErrors      map[string]error
	ConfirmErrors     map[string]error
}

func NewStubRPC() *StubRPC {
	return &StubRPC{
		SimulateOverrides: make(map[string]ipc.SimulationResult),
		SubmitErrors:      make(map[string]error),
		ConfirmErrors:     make(map[string]error),
	}
}

func (s *StubRPC) Simulate(ctx context.Context, intent ipc.TradeIntent, route router.RoutedQuote) ipc.SimulationResult {
	if r, ok := s.SimulateOverrides[intent.IntentID]; ok {
		return r
	}
	return ipc.SimulationResult{Success: true}
}

func (s *StubRPC) Submit(ctx context.Context, intent ipc.TradeIntent, route router.RoutedQuote) (string, error) {
	if err, ok := s.SubmitErrors[intent.IntentID]; ok {
		return "", err
	}
	return "stub-signature-" + intent.IntentID, nil
}

func (s *StubRPC) Confirm(ctx context.Context, signature string) (uint64, uint64, int64, uint64, error) {
	if err, ok := s.ConfirmErrors[strings.TrimPrefix(signature, "stub-signature-")]; ok {
		return 0, 0, 0, 0, err
	}
	return 1, 5_000, 0, 100, nil
}
