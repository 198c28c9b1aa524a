// Package pipeline implements the Decision Pipeline: a fixed, ordered
// sequence of pure check stages over a TradeIntent, each producing a
// CheckResult, with early-exit on the first failure. Grounded on
// internal/risk/manager.go's sequential-gate evaluation shape, generalized
// from inlined if-chains into an explicit ordered sequence of check methods
// called in turn by Process, per the
// "pipeline of pure stages, not nested exception handlers" design note.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"solana-trading-core/internal/classify"
	"solana-trading-core/internal/events"
	"solana-trading-core/internal/ipc"
	"solana-trading-core/internal/lockmgr"
	"solana-trading-core/internal/poolcache"
	"solana-trading-core/internal/profit"
	"solana-trading-core/internal/router"
)

// Config carries the pipeline's tunables and the audit header stamp.
type Config struct {
	Component          string
	Build              string
	RunID              string
	MinProfitBps       uint64
	EstTxCostLamports  uint64
	DefaultSlippageBps uint64
	Retry6005TimeoutMs uint64
}

// Pipeline wires the Decision Pipeline's collaborators: the cache, lock
// manager, router, mint registry, risk state, and the clock/RPC pair that
// replay mode freezes.
type Pipeline struct {
	Cache      *poolcache.Cache
	Locks      *lockmgr.Manager
	Router     *router.Router
	Mints      *MintRegistry
	Risk       *RiskState
	RiskLimits RiskLimits
	RPC        RPC
	Clock      Clock
	Config     Config
	// Bus is an optional event sink the admin metrics surface subscribes
	// to; nil is safe (publish becomes a no-op). See monitor.WireMetrics.
	Bus *events.Bus

	decisionSeq atomic.Uint64
}

func (p *Pipeline) publish(e events.Event, payload any) {
	if p.Bus != nil {
		p.Bus.Publish(e, payload)
	}
}

// New constructs a Pipeline. If bus is non-nil, it also wires the lock
// manager's lazy TTL sweep to publish events.EventLockExpired so the admin
// metrics surface observes reclaimed capital without lockmgr depending on
// the event bus directly.
func New(cache *poolcache.Cache, locks *lockmgr.Manager, r *router.Router, mints *MintRegistry, risk *RiskState, riskLimits RiskLimits, rpc RPC, clock Clock, cfg Config, bus *events.Bus) *Pipeline {
	p := &Pipeline{
		Cache:      cache,
		Locks:      locks,
		Router:     r,
		Mints:      mints,
		Risk:       risk,
		RiskLimits: riskLimits,
		RPC:        rpc,
		Clock:      clock,
		Config:     cfg,
		Bus:        bus,
	}
	if bus != nil {
		locks.SetOnExpire(func(e lockmgr.LockEntry) {
			bus.Publish(events.EventLockExpired, e)
		})
	}
	return p
}

// state is the mutable working context one intent's checks accumulate
// into. Not exported: callers only ever see the finished DecisionRecord /
// ExecutionResult pair.
type state struct {
	intent      ipc.TradeIntent
	inputMint   solana.PublicKey
	outputMint  solana.PublicKey
	checks      []ipc.CheckResult
	lockEntered bool
	riskEntered bool
	routed      *router.RoutedQuote
	netProfit   *uint64
	planHash    string
}

func (s *state) pass(name string) {
	s.checks = append(s.checks, ipc.CheckResult{CheckName: name, Passed: true})
}

func (s *state) fail(name string, reason ipc.RejectReason) {
	code := string(reason)
	s.checks = append(s.checks, ipc.CheckResult{CheckName: name, Passed: false, ReasonCode: &code})
}

// Process runs the full fixed check sequence for intent and returns its
// DecisionRecord, plus an ExecutionResult if the intent reached
// submission. Stage order is a contract: ttl, mint_decimals, capital_lock,
// risk_limits, routing_profit, simulation, submission.
func (p *Pipeline) Process(ctx context.Context, intent ipc.TradeIntent) (ipc.DecisionRecord, *ipc.ExecutionResult) {
	st := &state{intent: intent}
	p.publish(events.EventIntentReceived, intent)

	now := p.Clock.NowUnixMs()

	if reason, ok := p.checkTTL(st, now); !ok {
		return p.reject(st, reason), nil
	}

	inputMint, err := solana.PublicKeyFromBase58(intent.Resources.InputMint)
	if err != nil {
		return p.rejectEarly(st, "mint_decimals", ipc.ReasonMissingDecimals), nil
	}
	outputMint, err := solana.PublicKeyFromBase58(intent.Resources.OutputMint)
	if err != nil {
		return p.rejectEarly(st, "mint_decimals", ipc.ReasonMissingDecimals), nil
	}
	st.inputMint, st.outputMint = inputMint, outputMint

	if reason, ok := p.checkMintDecimals(st); !ok {
		return p.reject(st, reason), nil
	}
	if reason, ok := p.checkCapitalLock(st, now); !ok {
		return p.reject(st, reason), nil
	}
	defer p.releaseIfHeld(st)

	if reason, ok := p.checkRiskLimits(st); !ok {
		return p.reject(st, reason), nil
	}
	defer p.exitRiskIfEntered(st)

	if reason, ok := p.checkRoutingProfit(ctx, st); !ok {
		return p.reject(st, reason), nil
	}

	sim := p.RPC.Simulate(ctx, intent, *st.routed)
	if !sim.Success {
		st.fail("simulation", ipc.ReasonSimFailed)
		return p.simFailed(st, sim), nil
	}
	st.pass("simulation")

	return p.submit(ctx, st)
}

func (p *Pipeline) checkTTL(st *state, now uint64) (ipc.RejectReason, bool) {
	if now > st.intent.DeadlineUnixMs() {
		st.fail("ttl", ipc.ReasonTtlExpired)
		return ipc.ReasonTtlExpired, false
	}
	st.pass("ttl")
	return "", true
}

func (p *Pipeline) checkMintDecimals(st *state) (ipc.RejectReason, bool) {
	if _, ok := p.Mints.Decimals(st.inputMint); !ok {
		st.fail("mint_decimals", ipc.ReasonMissingDecimals)
		return ipc.ReasonMissingDecimals, false
	}
	if _, ok := p.Mints.Decimals(st.outputMint); !ok {
		st.fail("mint_decimals", ipc.ReasonMissingDecimals)
		return ipc.ReasonMissingDecimals, false
	}
	st.pass("mint_decimals")
	return "", true
}

func (p *Pipeline) checkCapitalLock(st *state, now uint64) (ipc.RejectReason, bool) {
	holder := lockmgr.Holder{IntentID: st.intent.IntentID, Origin: st.intent.Origin, Tier: st.intent.Tier}
	res, preempted := p.Locks.TryLockCapital(holder, st.intent.RequiredCapital.Raw, nil, now)
	if res.Kind != lockmgr.Acquired {
		st.fail("capital_lock", ipc.ReasonLockCapitalConflict)
		return ipc.ReasonLockCapitalConflict, false
	}
	if preempted != nil {
		p.publish(events.EventLockPreempted, preempted.Entry)
	}
	st.lockEntered = true
	st.pass("capital_lock")
	return "", true
}

func (p *Pipeline) releaseIfHeld(st *state) {
	if st.lockEntered {
		p.Locks.ReleaseLocks(st.intent.IntentID)
	}
}

func (p *Pipeline) checkRiskLimits(st *state) (ipc.RejectReason, bool) {
	if !p.Risk.tryEnter(st.intent.Origin, p.RiskLimits) {
		st.fail("risk_limits", ipc.ReasonRiskDailyLossLimit)
		return ipc.ReasonRiskDailyLossLimit, false
	}
	st.riskEntered = true
	st.pass("risk_limits")
	return "", true
}

func (p *Pipeline) exitRiskIfEntered(st *state) {
	if st.riskEntered {
		p.Risk.exit(st.intent.Origin)
	}
}

func (p *Pipeline) checkRoutingProfit(ctx context.Context, st *state) (ipc.RejectReason, bool) {
	amountIn := st.intent.RequiredCapital.Raw
	best, err := p.Router.BestQuoteExactIn(ctx, st.inputMint, st.outputMint, amountIn)
	if err != nil || best == nil {
		st.fail("routing_profit", ipc.ReasonRouteUnavailable)
		return ipc.ReasonRouteUnavailable, false
	}
	st.routed = best

	net := profit.ComputeNetProfit(amountIn, best.Quote.AmountOut, p.Config.MinProfitBps, p.Config.EstTxCostLamports)
	if net == nil {
		st.fail("routing_profit", ipc.ReasonInsufficientProfit)
		return ipc.ReasonInsufficientProfit, false
	}
	st.netProfit = net
	st.planHash = planHash(best.DexIndex, st.intent.Resources.Pools, amountIn, best.Quote.AmountOut)
	st.pass("routing_profit")
	return "", true
}

func (p *Pipeline) rejectEarly(st *state, checkName string, reason ipc.RejectReason) ipc.DecisionRecord {
	st.fail(checkName, reason)
	return p.reject(st, reason)
}

func (p *Pipeline) reject(st *state, reason ipc.RejectReason) ipc.DecisionRecord {
	d := ipc.NewRejectedDecision(
		p.Config.Component, p.Config.Build, p.Config.RunID,
		p.Clock.NowUnixMs(),
		p.nextDecisionID(), st.intent.IntentID, st.intent.Source,
		st.intent.Origin, st.intent.Regime,
		st.checks, string(reason),
	)
	p.publish(events.EventDecisionRejected, d)
	return d
}

func (p *Pipeline) simFailed(st *state, sim ipc.SimulationResult) ipc.DecisionRecord {
	var planHashPtr *string
	if st.planHash != "" {
		planHashPtr = &st.planHash
	}
	d := ipc.NewSimFailedDecision(
		p.Config.Component, p.Config.Build, p.Config.RunID,
		p.Clock.NowUnixMs(),
		p.nextDecisionID(), st.intent.IntentID, st.intent.Source,
		st.intent.Origin, st.intent.Regime,
		st.checks, planHashPtr, sim,
	)
	p.publish(events.EventDecisionSimFailed, d)
	return d
}

func (p *Pipeline) submit(ctx context.Context, st *state) (ipc.DecisionRecord, *ipc.ExecutionResult) {
	st.pass("submission")
	planHashPtr := &st.planHash

	decision := ipc.NewAcceptedDecision(
		p.Config.Component, p.Config.Build, p.Config.RunID,
		p.Clock.NowUnixMs(),
		p.nextDecisionID(), st.intent.IntentID, st.intent.Source,
		st.intent.Origin, st.intent.Regime,
		st.checks, planHashPtr,
	)
	p.publish(events.EventDecisionAccepted, decision)

	mint := st.outputMint.String()
	sig, err := p.RPC.Submit(ctx, st.intent, *st.routed)
	if err != nil {
		exec := ipc.NewSentExecution(p.Config.Component, p.Config.Build, p.Config.RunID, p.Clock.NowUnixMs(),
			uuid.NewString(), decision.DecisionID, st.intent.IntentID, st.intent.Source, &mint, nil, nil).
			WithFailed(ipc.String(err), err.Error())
		p.publish(events.EventExecutionFailed, exec)
		return decision, p.maybeRetry6005(ctx, st, decision, exec)
	}

	exec := ipc.NewSentExecution(p.Config.Component, p.Config.Build, p.Config.RunID, p.Clock.NowUnixMs(),
		uuid.NewString(), decision.DecisionID, st.intent.IntentID, st.intent.Source, &mint, &sig, nil)
	p.publish(events.EventExecutionSent, exec)

	slot, fees, pnl, latencyMs, err := p.RPC.Confirm(ctx, sig)
	if err != nil {
		failed := exec.WithFailed(ipc.String(err), err.Error())
		p.publish(events.EventExecutionFailed, failed)
		return decision, p.maybeRetry6005(ctx, st, decision, failed)
	}
	confirmed := exec.WithConfirmed(slot, fees, pnl, latencyMs)
	if pnl < 0 {
		p.Risk.RecordLoss(uint64(-pnl))
	}
	p.publish(events.EventExecutionConfirmed, confirmed)
	return decision, &confirmed
}

// maybeRetry6005 issues a single retry through the pipeline's routing and
// submission stages (re-quoting the AMM variant; the bonding-curve pool
// having graduated, the cache's base-mint index now resolves to the AMM
// state) when the failed execution's error classifies as 6005. The retry
// preserves decision_id and intent_id, and is bounded by a fixed timeout
// (Config.Retry6005TimeoutMs; zero leaves it unbounded) rather than the
// intent's original TTL — the check sequence has already
// admitted this intent; TTL is an admission-time gate, not a submission
// gate.
func (p *Pipeline) maybeRetry6005(ctx context.Context, st *state, decision ipc.DecisionRecord, failed ipc.ExecutionResult) *ipc.ExecutionResult {
	errText := ""
	if failed.ErrorCode != nil {
		errText = *failed.ErrorCode
	}
	if !classify.Is6005BondingCurveComplete(errText) {
		return &failed
	}
	p.publish(events.EventRetry6005, failed)

	if p.Config.Retry6005TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(p.Config.Retry6005TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	best, err := p.Router.BestQuoteExactIn(ctx, st.inputMint, st.outputMint, st.intent.RequiredCapital.Raw)
	if err != nil || best == nil {
		return &failed
	}

	sig, err := p.RPC.Submit(ctx, st.intent, *best)
	if err != nil {
		retried := failed
		retried.ErrorMessage = strPtr("6005 retry: " + err.Error())
		p.publish(events.EventExecutionFailed, retried)
		return &retried
	}

	slot, fees, pnl, latencyMs, err := p.RPC.Confirm(ctx, sig)
	if err != nil {
		retried := failed
		retried.ErrorMessage = strPtr("6005 retry confirm failed: " + err.Error())
		p.publish(events.EventExecutionFailed, retried)
		return &retried
	}

	mint := st.outputMint.String()
	retried := ipc.NewSentExecution(p.Config.Component, p.Config.Build, p.Config.RunID, p.Clock.NowUnixMs(),
		uuid.NewString(), decision.DecisionID, st.intent.IntentID, st.intent.Source, &mint, &sig, nil).
		WithConfirmed(slot, fees, pnl, latencyMs)
	p.publish(events.EventExecutionConfirmed, retried)
	return &retried
}

func strPtr(s string) *string { return &s }

func (p *Pipeline) nextDecisionID() string {
	return fmt.Sprintf("decision-%d-%s", p.decisionSeq.Add(1), uuid.NewString())
}

// planHash is a stable hash of the route (dex index, pool ids, amounts),
// computed before simulation so it can be compared across a replay run
// without depending on any non-deterministic input.
func planHash(dexIndex int, pools []string, amountIn, amountOut uint64) string {
	h := sha256.New()
	h.Write([]byte(strconv.Itoa(dexIndex)))
	h.Write([]byte(strings.Join(pools, ",")))
	h.Write([]byte(strconv.FormatUint(amountIn, 10)))
	h.Write([]byte(strconv.FormatUint(amountOut, 10)))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
