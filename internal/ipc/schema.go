// Package ipc defines the canonical line-delimited audit record schema
// shared across the decision pipeline: RecordHeader, ExplicitAmount,
// MarketEvent, TradeIntent, DecisionRecord, and ExecutionResult.
package ipc

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RecordHeader is embedded in every audit record.
type RecordHeader struct {
	SchemaVersion uint32 `json:"schema_version"`
	TsUnixMs      uint64 `json:"ts_unix_ms"`
	Component     string `json:"component"`
	Build         string `json:"build"`
	RunID         string `json:"run_id"`
}

// NewHeader builds a RecordHeader stamped with tsUnixMs.
func NewHeader(component, build, runID string, tsUnixMs uint64) RecordHeader {
	return RecordHeader{
		SchemaVersion: 1,
		TsUnixMs:      tsUnixMs,
		Component:     component,
		Build:         build,
		RunID:         runID,
	}
}

// ExplicitAmount pairs a raw integer amount with its decimal scale. `UI` is
// derived from Raw/Decimals at construction time and is never an
// independent input.
type ExplicitAmount struct {
	Raw      uint64          `json:"raw"`
	Decimals uint8           `json:"decimals"`
	UI       decimal.Decimal `json:"ui"`
}

// NewExplicitAmount derives UI = raw / 10^decimals as an exact decimal.
func NewExplicitAmount(raw uint64, decimals uint8) ExplicitAmount {
	scale := decimal.New(1, int32(decimals))
	return ExplicitAmount{
		Raw:      raw,
		Decimals: decimals,
		UI:       decimal.NewFromUint64(raw).Div(scale),
	}
}

// IntentTier ranks intents for fairness and preemption purposes.
// Tier0 has the highest priority, Tier2 the lowest.
type IntentTier string

const (
	Tier0 IntentTier = "Tier0"
	Tier1 IntentTier = "Tier1"
	Tier2 IntentTier = "Tier2"
)

// Priority returns a lower-is-higher-priority rank: Tier0=0, Tier1=1, Tier2=2.
func (t IntentTier) Priority() int {
	switch t {
	case Tier0:
		return 0
	case Tier1:
		return 1
	case Tier2:
		return 2
	default:
		return 3
	}
}

// IntentOrigin identifies the strategy family that produced an intent.
type IntentOrigin string

const (
	OriginStrategyA IntentOrigin = "StrategyA"
	OriginStrategyB IntentOrigin = "StrategyB"
	OriginStrategyC IntentOrigin = "StrategyC"
)

// TradeSide is the direction of a trade.
type TradeSide string

const (
	SideBuy  TradeSide = "Buy"
	SideSell TradeSide = "Sell"
)

// TradingRegime classifies the liquidity stage of the target pool.
type TradingRegime string

const (
	RegimeEarly         TradingRegime = "Early"
	RegimeEstablished   TradingRegime = "Established"
	RegimeNotApplicable TradingRegime = "NotApplicable"
)

// TradeResources names the pools, accounts, and mints an intent touches.
type TradeResources struct {
	InputMint  string   `json:"input_mint"`
	OutputMint string   `json:"output_mint"`
	Pools      []string `json:"pools"`
	Accounts   []string `json:"accounts"`
}

// ExecutionParams carries caller-specified execution constraints.
type ExecutionParams struct {
	MinOut *ExplicitAmount `json:"min_out,omitempty"`
}

// TradeIntent is a strategy-emitted request to trade. Immutable once
// emitted.
type TradeIntent struct {
	Header          RecordHeader     `json:"header"`
	IntentID        string           `json:"intent_id"`
	Source          string           `json:"source"`
	Tier            IntentTier       `json:"tier"`
	Origin          IntentOrigin     `json:"origin"`
	RequiredCapital ExplicitAmount   `json:"required_capital"`
	Resources       TradeResources   `json:"resources"`
	ExpectedROIBps  int64            `json:"expected_roi_bps"`
	TTLMs           uint64           `json:"ttl_ms"`
	Side            TradeSide        `json:"side"`
	Regime          TradingRegime    `json:"regime"`
	Execution       *ExecutionParams `json:"execution,omitempty"`
}

// NewTradeIntent builds a TradeIntent, stamping its header with tsUnixMs.
func NewTradeIntent(
	component, build, runID string,
	intentID, source string,
	tier IntentTier,
	origin IntentOrigin,
	requiredCapital ExplicitAmount,
	resources TradeResources,
	tsUnixMs uint64,
	ttlMs uint64,
	side TradeSide,
	regime TradingRegime,
) TradeIntent {
	return TradeIntent{
		Header:          NewHeader(component, build, runID, tsUnixMs),
		IntentID:        intentID,
		Source:          source,
		Tier:            tier,
		Origin:          origin,
		RequiredCapital: requiredCapital,
		Resources:       resources,
		ExpectedROIBps:  0,
		TTLMs:           ttlMs,
		Side:            side,
		Regime:          regime,
	}
}

// DeadlineUnixMs returns the absolute deadline emitted_at + ttl_ms.
func (t TradeIntent) DeadlineUnixMs() uint64 {
	return t.Header.TsUnixMs + t.TTLMs
}

// MarketEventKindTag discriminates MarketEventKind variants.
type MarketEventKindTag string

const (
	KindPoolCreated     MarketEventKindTag = "PoolCreated"
	KindReservesUpdated MarketEventKindTag = "ReservesUpdated"
)

// MarketEventKind is a tagged union over pool-creation and
// reserves-update ingress events. Exactly one of the payload structs is
// populated, selected by Tag.
type MarketEventKind struct {
	Tag MarketEventKindTag `json:"tag"`

	// PoolCreated fields
	PoolAddress         string           `json:"pool_address,omitempty"`
	BaseMint            string           `json:"base_mint,omitempty"`
	QuoteMint           string           `json:"quote_mint,omitempty"`
	Dex                 string           `json:"dex,omitempty"`
	InitialLiquiditySOL *decimal.Decimal `json:"initial_liquidity_sol,omitempty"`

	// ReservesUpdated fields
	BaseReserve  *uint64 `json:"base_reserve,omitempty"`
	QuoteReserve *uint64 `json:"quote_reserve,omitempty"`
}

// NewPoolCreatedKind builds a PoolCreated-tagged MarketEventKind.
func NewPoolCreatedKind(poolAddress, baseMint, quoteMint, dex string, initialLiquiditySOL *decimal.Decimal) MarketEventKind {
	return MarketEventKind{
		Tag:                 KindPoolCreated,
		PoolAddress:         poolAddress,
		BaseMint:            baseMint,
		QuoteMint:           quoteMint,
		Dex:                 dex,
		InitialLiquiditySOL: initialLiquiditySOL,
	}
}

// NewReservesUpdatedKind builds a ReservesUpdated-tagged MarketEventKind.
func NewReservesUpdatedKind(poolAddress string, baseReserve, quoteReserve uint64) MarketEventKind {
	return MarketEventKind{
		Tag:          KindReservesUpdated,
		PoolAddress:  poolAddress,
		BaseReserve:  &baseReserve,
		QuoteReserve: &quoteReserve,
	}
}

// MarketEvent is the sole legal way external producers mutate the Live
// Pool Cache.
type MarketEvent struct {
	Header  RecordHeader    `json:"header"`
	EventID string          `json:"event_id"`
	Source  string          `json:"source"`
	Slot    *uint64         `json:"slot,omitempty"`
	Kind    MarketEventKind `json:"kind"`
}

// NewMarketEvent builds a MarketEvent, stamping its header with tsUnixMs.
func NewMarketEvent(component, build, runID string, tsUnixMs uint64, eventID, source string, slot *uint64, kind MarketEventKind) MarketEvent {
	return MarketEvent{
		Header:  NewHeader(component, build, runID, tsUnixMs),
		EventID: eventID,
		Source:  source,
		Slot:    slot,
		Kind:    kind,
	}
}

// CheckResult is the outcome of one pipeline check stage.
type CheckResult struct {
	CheckName  string  `json:"check_name"`
	Passed     bool    `json:"passed"`
	ReasonCode *string `json:"reason_code,omitempty"`
	Details    *string `json:"details,omitempty"`
}

// DecisionOutcome is the pipeline's verdict on an intent.
type DecisionOutcome string

const (
	OutcomeAccepted  DecisionOutcome = "Accepted"
	OutcomeRejected  DecisionOutcome = "Rejected"
	OutcomeSimFailed DecisionOutcome = "SimFailed"
)

// SimulationResult records the outcome of submitting a plan to the
// external RPC simulator.
type SimulationResult struct {
	Success              bool    `json:"success"`
	ErrorCode            *string `json:"error_code,omitempty"`
	LogsPreview          *string `json:"logs_preview,omitempty"`
	ComputeUnitsConsumed *uint64 `json:"compute_units_consumed,omitempty"`
}

// DecisionRecord is the pipeline's verdict on a TradeIntent.
type DecisionRecord struct {
	Header              RecordHeader      `json:"header"`
	DecisionID          string            `json:"decision_id"`
	IntentID            string            `json:"intent_id"`
	Strategy            string            `json:"strategy"`
	Origin              IntentOrigin      `json:"origin"`
	Regime              TradingRegime     `json:"regime"`
	Outcome             DecisionOutcome   `json:"outcome"`
	Checks              []CheckResult     `json:"checks"`
	PrimaryRejectReason *string           `json:"primary_reject_reason,omitempty"`
	PlanHash            *string           `json:"plan_hash,omitempty"`
	Simulate            *SimulationResult `json:"simulate,omitempty"`
}

// NewAcceptedDecision builds an Accepted DecisionRecord.
func NewAcceptedDecision(
	component, build, runID string,
	tsUnixMs uint64,
	decisionID, intentID, strategy string,
	origin IntentOrigin,
	regime TradingRegime,
	checks []CheckResult,
	planHash *string,
) DecisionRecord {
	return DecisionRecord{
		Header:     NewHeader(component, build, runID, tsUnixMs),
		DecisionID: decisionID,
		IntentID:   intentID,
		Strategy:   strategy,
		Origin:     origin,
		Regime:     regime,
		Outcome:    OutcomeAccepted,
		Checks:     checks,
		PlanHash:   planHash,
	}
}

// NewRejectedDecision builds a Rejected DecisionRecord with the given
// primary reject reason.
func NewRejectedDecision(
	component, build, runID string,
	tsUnixMs uint64,
	decisionID, intentID, strategy string,
	origin IntentOrigin,
	regime TradingRegime,
	checks []CheckResult,
	primaryRejectReason string,
) DecisionRecord {
	return DecisionRecord{
		Header:              NewHeader(component, build, runID, tsUnixMs),
		DecisionID:          decisionID,
		IntentID:            intentID,
		Strategy:            strategy,
		Origin:              origin,
		Regime:              regime,
		Outcome:             OutcomeRejected,
		Checks:              checks,
		PrimaryRejectReason: &primaryRejectReason,
	}
}

// NewSimFailedDecision builds a SimFailed DecisionRecord.
func NewSimFailedDecision(
	component, build, runID string,
	tsUnixMs uint64,
	decisionID, intentID, strategy string,
	origin IntentOrigin,
	regime TradingRegime,
	checks []CheckResult,
	planHash *string,
	sim SimulationResult,
) DecisionRecord {
	return DecisionRecord{
		Header:     NewHeader(component, build, runID, tsUnixMs),
		DecisionID: decisionID,
		IntentID:   intentID,
		Strategy:   strategy,
		Origin:     origin,
		Regime:     regime,
		Outcome:    OutcomeSimFailed,
		Checks:     checks,
		PlanHash:   planHash,
		Simulate:   &sim,
	}
}

// ExecutionStatus is the lifecycle state of a submitted transaction.
type ExecutionStatus string

const (
	StatusSent      ExecutionStatus = "Sent"
	StatusConfirmed ExecutionStatus = "Confirmed"
	StatusFailed    ExecutionStatus = "Failed"
)

// FillStatus reports whether an execution's trade fully filled.
type FillStatus string

const (
	FillFilled      FillStatus = "Filled"
	FillPartial     FillStatus = "Partial"
	FillUnavailable FillStatus = "Unavailable"
)

// FillUnavailableReason explains why fill status could not be determined.
type FillUnavailableReason string

const (
	FillUnavailableRPCTxFetchFailed FillUnavailableReason = "RpcTxFetchFailed"
)

// ExecutionResult is the submitted-and-observed result of an accepted
// decision.
type ExecutionResult struct {
	Header                RecordHeader           `json:"header"`
	ExecutionID           string                 `json:"execution_id"`
	DecisionID            string                 `json:"decision_id"`
	IntentID              string                 `json:"intent_id"`
	Strategy              string                 `json:"strategy"`
	Mint                  *string                `json:"mint,omitempty"`
	Signature             *string                `json:"signature,omitempty"`
	Status                ExecutionStatus        `json:"status"`
	Slot                  *uint64                `json:"slot,omitempty"`
	Fees                  *uint64                `json:"fees,omitempty"`
	PNL                   *int64                 `json:"pnl,omitempty"`
	LatencyMs             *uint64                `json:"latency_ms,omitempty"`
	FillStatus            *FillStatus            `json:"fill_status,omitempty"`
	FillUnavailableReason *FillUnavailableReason `json:"fill_unavailable_reason,omitempty"`
	ErrorCode             *string                `json:"error_code,omitempty"`
	ErrorMessage          *string                `json:"error_message,omitempty"`
}

// NewSentExecution builds an ExecutionResult with status Sent.
func NewSentExecution(
	component, build, runID string,
	tsUnixMs uint64,
	executionID, decisionID, intentID, strategy string,
	mint, signature *string,
	slot *uint64,
) ExecutionResult {
	return ExecutionResult{
		Header:      NewHeader(component, build, runID, tsUnixMs),
		ExecutionID: executionID,
		DecisionID:  decisionID,
		IntentID:    intentID,
		Strategy:    strategy,
		Mint:        mint,
		Signature:   signature,
		Status:      StatusSent,
		Slot:        slot,
	}
}

// WithConfirmed upgrades a Sent execution to Confirmed with observed
// slot/fees/pnl.
func (e ExecutionResult) WithConfirmed(slot, fees uint64, pnl int64, latencyMs uint64) ExecutionResult {
	e.Status = StatusConfirmed
	e.Slot = &slot
	e.Fees = &fees
	e.PNL = &pnl
	e.LatencyMs = &latencyMs
	return e
}

// WithFailed upgrades an execution to Failed with the observed on-chain
// error.
func (e ExecutionResult) WithFailed(errorCode, errorMessage string) ExecutionResult {
	e.Status = StatusFailed
	e.ErrorCode = &errorCode
	e.ErrorMessage = &errorMessage
	return e
}

// RejectReason is the closed set of pipeline rejection/failure codes.
type RejectReason string

const (
	ReasonTtlExpired          RejectReason = "TtlExpired"
	ReasonMissingDecimals     RejectReason = "MissingDecimals"
	ReasonLockCapitalConflict RejectReason = "LockCapitalConflict"
	ReasonRiskDailyLossLimit  RejectReason = "RiskDailyLossLimit"
	ReasonRouteUnavailable    RejectReason = "RouteUnavailable"
	ReasonInsufficientProfit  RejectReason = "InsufficientProfit"
	ReasonSimFailed           RejectReason = "SimFailed"
	ReasonExecutionFailed     RejectReason = "ExecutionFailed"
	// ReasonPreempted is not one of the pipeline's check reasons. No code
	// path in this module emits it: a preemption surfaces as the evicted
	// lockmgr entry, which the pipeline publishes as events.EventLockPreempted.
	ReasonPreempted RejectReason = "Preempted"
)

// String renders v via fmt.Sprintf for display in audit details and the
// error classifier.
func String(v any) string {
	return fmt.Sprintf("%v", v)
}
