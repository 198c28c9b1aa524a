package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"

	"solana-trading-core/internal/dex"
	"solana-trading-core/internal/ipc"
	"solana-trading-core/internal/lockmgr"
	"solana-trading-core/internal/poolcache"
	"solana-trading-core/internal/router"
)

func testMint(seed byte) solana.PublicKey {
	var b [32]byte
	b[0] = seed
	return solana.PublicKeyFromBytes(b[:])
}

type stubDex struct {
	name    string
	out     uint64
	noQuote bool
}

func (d stubDex) Name() string { return d.name }

func (d stubDex) QuoteExactIn(ctx context.Context, inputMint, outputMint solana.PublicKey, amountIn uint64) (*dex.Quote, error) {
	if d.noQuote {
		return nil, nil
	}
	return &dex.Quote{AmountOut: d.out, PriceImpactBps: 10}, nil
}

func (d stubDex) BuildSwapInstructions(inputMint, outputMint solana.PublicKey, amountIn, minOut uint64, user solana.PublicKey, poolAccounts []solana.PublicKey) ([]solana.Instruction, error) {
	return nil, nil
}

func baseIntent(inputMint, outputMint solana.PublicKey) ipc.TradeIntent {
	return ipc.NewTradeIntent(
		"trading-core-test", "test-build", "run-1",
		"intent-1", "strategy-a",
		ipc.Tier0,
		ipc.OriginStrategyA,
		ipc.NewExplicitAmount(1_000_000, 9),
		ipc.TradeResources{InputMint: inputMint.String(), OutputMint: outputMint.String()},
		1_000,
		60_000,
		ipc.SideBuy,
		ipc.RegimeEstablished,
	)
}

func newTestPipeline(dexes []dex.Dex, clock Clock, rpc RPC) *Pipeline {
	mints := NewMintRegistry()
	locks := lockmgr.New(10_000_000, lockmgr.FairnessPolicy{})
	r := router.New(dexes)
	risk := NewRiskState()
	return New(poolcache.New(), locks, r, mints, risk, RiskLimits{}, rpc, clock, Config{
		Component:         "trading-core-test",
		Build:             "test-build",
		RunID:             "run-1",
		MinProfitBps:      50,
		EstTxCostLamports: 1_000,
	}, nil)
}

func TestProcess_TtlExpiredRejects(t *testing.T) {
	in, out := testMint(1), testMint(2)
	p := newTestPipeline(nil, FrozenClock{Ms: 1_000_000}, NewStubRPC())
	intent := baseIntent(in, out)

	decision, exec := p.Process(context.Background(), intent)

	if decision.Outcome != ipc.OutcomeRejected {
		t.Fatalf("outcome = %v, want Rejected", decision.Outcome)
	}
	if decision.PrimaryRejectReason == nil || *decision.PrimaryRejectReason != string(ipc.ReasonTtlExpired) {
		t.Fatalf("reason = %v, want TtlExpired", decision.PrimaryRejectReason)
	}
	if exec != nil {
		t.Fatalf("exec = %v, want nil", exec)
	}
}

func TestProcess_MissingDecimalsRejects(t *testing.T) {
	in, out := testMint(1), testMint(2)
	p := newTestPipeline(nil, FrozenClock{Ms: 1_000}, NewStubRPC())
	intent := baseIntent(in, out)

	decision, _ := p.Process(context.Background(), intent)

	if decision.Outcome != ipc.OutcomeRejected {
		t.Fatalf("outcome = %v, want Rejected", decision.Outcome)
	}
	if *decision.PrimaryRejectReason != string(ipc.ReasonMissingDecimals) {
		t.Fatalf("reason = %v, want MissingDecimals", *decision.PrimaryRejectReason)
	}
}

func TestProcess_RouteUnavailableRejects(t *testing.T) {
	in, out := testMint(1), testMint(2)
	p := newTestPipeline([]dex.Dex{stubDex{name: "x", noQuote: true}}, FrozenClock{Ms: 1_000}, NewStubRPC())
	p.Mints.Set(in, 9)
	p.Mints.Set(out, 6)
	intent := baseIntent(in, out)

	decision, _ := p.Process(context.Background(), intent)

	if *decision.PrimaryRejectReason != string(ipc.ReasonRouteUnavailable) {
		t.Fatalf("reason = %v, want RouteUnavailable", *decision.PrimaryRejectReason)
	}
}

func TestProcess_InsufficientProfitRejects(t *testing.T) {
	in, out := testMint(1), testMint(2)
	p := newTestPipeline([]dex.Dex{stubDex{name: "x", out: 1_000_100}}, FrozenClock{Ms: 1_000}, NewStubRPC())
	p.Mints.Set(in, 9)
	p.Mints.Set(out, 6)
	intent := baseIntent(in, out)

	decision, _ := p.Process(context.Background(), intent)

	if *decision.PrimaryRejectReason != string(ipc.ReasonInsufficientProfit) {
		t.Fatalf("reason = %v, want InsufficientProfit", *decision.PrimaryRejectReason)
	}
}

func TestProcess_AcceptedAndConfirmed(t *testing.T) {
	in, out := testMint(1), testMint(2)
	p := newTestPipeline([]dex.Dex{stubDex{name: "x", out: 1_100_000}}, FrozenClock{Ms: 1_000}, NewStubRPC())
	p.Mints.Set(in, 9)
	p.Mints.Set(out, 6)
	intent := baseIntent(in, out)

	decision, exec := p.Process(context.Background(), intent)

	if decision.Outcome != ipc.OutcomeAccepted {
		t.Fatalf("outcome = %v, want Accepted", decision.Outcome)
	}
	if exec == nil || exec.Status != ipc.StatusConfirmed {
		t.Fatalf("exec = %+v, want Confirmed", exec)
	}
	if decision.PlanHash == nil || *decision.PlanHash == "" {
		t.Fatalf("plan hash not set")
	}
	// lock must be released after the call returns, whatever the outcome.
	if _, locked := p.Locks.Snapshot(); locked != 0 {
		t.Fatalf("locked = %d, want 0 after release", locked)
	}
}

func TestProcess_SimFailed(t *testing.T) {
	in, out := testMint(1), testMint(2)
	rpc := NewStubRPC()
	rpc.SimulateOverrides["intent-1"] = ipc.SimulationResult{Success: false}
	p := newTestPipeline([]dex.Dex{stubDex{name: "x", out: 1_100_000}}, FrozenClock{Ms: 1_000}, rpc)
	p.Mints.Set(in, 9)
	p.Mints.Set(out, 6)
	intent := baseIntent(in, out)

	decision, exec := p.Process(context.Background(), intent)

	if decision.Outcome != ipc.OutcomeSimFailed {
		t.Fatalf("outcome = %v, want SimFailed", decision.Outcome)
	}
	if exec != nil {
		t.Fatalf("exec = %v, want nil on sim failure", exec)
	}
}

func TestProcess_6005RetrySucceeds(t *testing.T) {
	in, out := testMint(1), testMint(2)
	rpc := &retrying6005RPC{failFirst: true}
	p := newTestPipeline([]dex.Dex{stubDex{name: "x", out: 1_100_000}}, FrozenClock{Ms: 1_000}, rpc)
	p.Mints.Set(in, 9)
	p.Mints.Set(out, 6)
	intent := baseIntent(in, out)

	decision, exec := p.Process(context.Background(), intent)

	if decision.Outcome != ipc.OutcomeAccepted {
		t.Fatalf("outcome = %v, want Accepted", decision.Outcome)
	}
	if exec == nil || exec.Status != ipc.StatusConfirmed {
		t.Fatalf("exec = %+v, want Confirmed after 6005 retry", exec)
	}
	if rpc.submitCalls != 2 {
		t.Fatalf("submitCalls = %d, want 2 (initial + retry)", rpc.submitCalls)
	}
}

// retrying6005RPC fails the first Submit with a 6005-classified error, then
// succeeds on the retry.
type retrying6005RPC struct {
	failFirst  bool
	submitCalls int
}

func (r *retrying6005RPC) Simulate(ctx context.Context, intent ipc.TradeIntent, route router.RoutedQuote) ipc.SimulationResult {
	return ipc.SimulationResult{Success: true}
}

func (r *retrying6005RPC) Submit(ctx context.Context, intent ipc.TradeIntent, route router.RoutedQuote) (string, error) {
	r.submitCalls++
	if r.submitCalls == 1 && r.failFirst {
		return "", errors.New("Transaction simulation failed: Custom(6005)")
	}
	return "sig-ok", nil
}

func (r *retrying6005RPC) Confirm(ctx context.Context, signature string) (uint64, uint64, int64, uint64, error) {
	return 1, 5_000, 1_000, 50, nil
}
