package ipc

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestExplicitAmount_DerivesUI(t *testing.T) {
	amt := NewExplicitAmount(10_000_000, 9)
	if amt.UI.String() != "0.01" {
		t.Fatalf("expected ui=0.01, got %s", amt.UI.String())
	}
}

func TestMarketEventRoundtrip(t *testing.T) {
	slot := uint64(12345)
	initLiq := mustDecimal(t, "100")
	event := NewMarketEvent("market-data", "v0.1.0", "run-abc", 1000, "evt-001", "geyser", &slot,
		NewPoolCreatedKind("Pool123", "BaseMint", "QuoteMint", "raydium", &initLiq))

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var parsed MarketEvent
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.EventID != event.EventID || parsed.Source != event.Source {
		t.Fatalf("roundtrip mismatch: %+v vs %+v", parsed, event)
	}
	if parsed.Slot == nil || *parsed.Slot != slot {
		t.Fatalf("expected slot %d, got %v", slot, parsed.Slot)
	}
}

func TestTradeIntentRoundtrip(t *testing.T) {
	resources := TradeResources{
		InputMint:  "So11111111111111111111111111111111111111112",
		OutputMint: "MintAddr",
		Pools:      []string{"PoolAddr"},
	}
	intent := NewTradeIntent("momentum-bot", "v0.1", "run-1", "intent-001", "momentum-bot",
		Tier0, OriginStrategyA, NewExplicitAmount(10_000_000, 9), resources, 0, 300, SideBuy, RegimeEarly)

	data, err := json.Marshal(intent)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var parsed TradeIntent
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.IntentID != intent.IntentID || parsed.Side != intent.Side {
		t.Fatalf("roundtrip mismatch")
	}
	if parsed.RequiredCapital.Raw != intent.RequiredCapital.Raw {
		t.Fatalf("required_capital.raw mismatch: %d vs %d", parsed.RequiredCapital.Raw, intent.RequiredCapital.Raw)
	}
}

func TestExecutionResultRoundtrip(t *testing.T) {
	mint := "Mint11111111111111111111111111111111"
	sig := "sig123"
	result := NewSentExecution("exec-engine", "v0.1", "run-1", 1000, "exec-001", "decision-001", "intent-001",
		"momentum-bot", &mint, &sig, nil)

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var parsed ExecutionResult
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.ExecutionID != result.ExecutionID || parsed.Status != StatusSent {
		t.Fatalf("roundtrip mismatch")
	}
}

func TestDecisionRecordRoundtrip(t *testing.T) {
	record := NewRejectedDecision("exec-engine", "v0.1", "run-1", 1000, "dec-001", "intent-001", "momentum-bot",
		OriginStrategyA, RegimeEarly,
		[]CheckResult{{CheckName: "test_check", Passed: true}},
		"TEST")

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var parsed DecisionRecord
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.DecisionID != record.DecisionID || parsed.IntentID != record.IntentID {
		t.Fatalf("roundtrip mismatch")
	}
	if parsed.Outcome != OutcomeRejected {
		t.Fatalf("expected outcome Rejected, got %s", parsed.Outcome)
	}
}

func TestIntentCausalityChain(t *testing.T) {
	intentID := "intent-corr-001"
	decisionID := "dec-corr-001"

	intent := NewTradeIntent("test", "v0.1.0", "run-test", intentID, "test-strategy",
		Tier1, OriginStrategyA, NewExplicitAmount(100, 9), TradeResources{}, 0, 100, SideBuy, RegimeNotApplicable)

	decision := NewRejectedDecision("test", "v0.1.0", "run-test", 0, decisionID, intentID, "test-strategy",
		OriginStrategyA, RegimeNotApplicable, nil, "TEST")

	mint := "So11111111111111111111111111111111111111112"
	execution := NewSentExecution("test", "v0.1.0", "run-test", 0, "exe-corr-001", decisionID, intentID,
		"test-strategy", &mint, nil, nil)

	if intent.IntentID != intentID {
		t.Fatalf("intent_id mismatch")
	}
	if decision.IntentID != intentID || decision.DecisionID != decisionID {
		t.Fatalf("decision causality mismatch")
	}
	if execution.IntentID != intentID || execution.DecisionID != decisionID {
		t.Fatalf("execution causality mismatch")
	}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	dec, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return dec
}
