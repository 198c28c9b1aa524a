package monitor

import "solana-trading-core/internal/ipc"

// RuleEvaluator inspects a DecisionRecord's outcome and decides whether it
// warrants delivery to an AlertSink. Only a configured subset of reject
// reasons page an operator: most rejections (stale routes, thin profit)
// are routine flow-control, not incidents.
type RuleEvaluator struct {
	AlertOnReasons map[string]bool
}

// DefaultRuleEvaluator alerts on the two reject reasons that indicate a
// systemic problem rather than an individual intent losing a race:
// exhausted risk budget and simulation failure.
func DefaultRuleEvaluator() RuleEvaluator {
	return RuleEvaluator{AlertOnReasons: map[string]bool{
		string(ipc.ReasonRiskDailyLossLimit): true,
		string(ipc.ReasonSimFailed):          true,
	}}
}

// Check reports whether decision should be forwarded to an AlertSink, and
// the message to send.
func (r RuleEvaluator) Check(decision ipc.DecisionRecord) (bool, string) {
	if decision.Outcome == ipc.OutcomeAccepted {
		return false, ""
	}
	reason := ""
	if decision.PrimaryRejectReason != nil {
		reason = *decision.PrimaryRejectReason
	}
	if reason == "" && decision.Outcome == ipc.OutcomeSimFailed {
		reason = string(ipc.ReasonSimFailed)
	}
	if reason == "" || !r.AlertOnReasons[reason] {
		return false, ""
	}
	return true, "decision " + decision.DecisionID + " (" + decision.IntentID + "): " + reason
}
