package events

// Event enumerates high-level topics inside the trading core.
type Event string

const (
	// EventMarketEvent is the topic for ingress MarketEvents (pool creation
	// or reserves update). No component in this module publishes it.
	EventMarketEvent Event = "market.event"
	// EventIntentReceived fires when a TradeIntent enters the decision pipeline.
	EventIntentReceived Event = "intent.received"
	// EventDecisionAccepted fires when a DecisionRecord's outcome is Accepted.
	EventDecisionAccepted Event = "decision.accepted"
	// EventDecisionRejected fires when a DecisionRecord's outcome is Rejected.
	EventDecisionRejected Event = "decision.rejected"
	// EventDecisionSimFailed fires when simulation fails prior to submission.
	EventDecisionSimFailed Event = "decision.sim_failed"
	// EventExecutionSent fires when a transaction is sent to the cluster.
	EventExecutionSent Event = "execution.sent"
	// EventExecutionConfirmed fires when a sent transaction confirms on-chain.
	EventExecutionConfirmed Event = "execution.confirmed"
	// EventExecutionFailed fires when a sent transaction fails or expires.
	EventExecutionFailed Event = "execution.failed"
	// EventRetry6005 fires when a bonding-curve-complete error triggers a retry.
	EventRetry6005 Event = "execution.retry_6005"
	// EventLockExpired fires when the lock manager's lazy sweep reclaims a
	// TTL-expired capital reservation.
	EventLockExpired Event = "lock.expired"
	// EventLockPreempted fires when a lower-priority lock is preempted for
	// capital fairness.
	EventLockPreempted Event = "lock.preempted"
	// EventRiskAlert is the topic whose payloads monitor.Monitor forwards to
	// its alert function. The pipeline's risk check does not publish on it;
	// risk rejections reach the Monitor as EventDecisionRejected.
	EventRiskAlert Event = "risk.alert"
)
