package monitor

import (
	"solana-trading-core/internal/events"
	"solana-trading-core/internal/ipc"
)

// WireMetrics subscribes metrics to the pipeline's decision/execution
// lifecycle events so SystemMetrics' counters populate without the
// pipeline importing this package directly. Returns an unsubscribe-all
// function; callers should defer it alongside server shutdown.
func WireMetrics(bus *events.Bus, metrics *SystemMetrics) func() {
	intents, unsubIntents := bus.Subscribe(events.EventIntentReceived, 256)
	accepted, unsubAccepted := bus.Subscribe(events.EventDecisionAccepted, 256)
	rejected, unsubRejected := bus.Subscribe(events.EventDecisionRejected, 256)
	simFailed, unsubSimFailed := bus.Subscribe(events.EventDecisionSimFailed, 256)
	sent, unsubSent := bus.Subscribe(events.EventExecutionSent, 256)
	confirmed, unsubConfirmed := bus.Subscribe(events.EventExecutionConfirmed, 256)
	failed, unsubFailed := bus.Subscribe(events.EventExecutionFailed, 256)
	retried, unsubRetried := bus.Subscribe(events.EventRetry6005, 256)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case _, ok := <-intents:
				if !ok {
					return
				}
				metrics.IncrementIntents()
			case msg, ok := <-accepted:
				if !ok {
					return
				}
				recordDecision(metrics, msg)
			case msg, ok := <-rejected:
				if !ok {
					return
				}
				recordDecision(metrics, msg)
			case msg, ok := <-simFailed:
				if !ok {
					return
				}
				recordDecision(metrics, msg)
			case msg, ok := <-sent:
				if !ok {
					return
				}
				recordExecution(metrics, msg)
			case msg, ok := <-confirmed:
				if !ok {
					return
				}
				recordExecution(metrics, msg)
			case msg, ok := <-failed:
				if !ok {
					return
				}
				recordExecution(metrics, msg)
			case _, ok := <-retried:
				if !ok {
					return
				}
				metrics.IncrementRetries6005()
			}
		}
	}()

	return func() {
		close(done)
		unsubIntents()
		unsubAccepted()
		unsubRejected()
		unsubSimFailed()
		unsubSent()
		unsubConfirmed()
		unsubFailed()
		unsubRetried()
	}
}

func recordDecision(metrics *SystemMetrics, msg any) {
	d, ok := msg.(ipc.DecisionRecord)
	if !ok {
		return
	}
	reason := ""
	if d.PrimaryRejectReason != nil {
		reason = *d.PrimaryRejectReason
	}
	metrics.RecordOutcome(string(d.Outcome), reason)
}

func recordExecution(metrics *SystemMetrics, msg any) {
	e, ok := msg.(ipc.ExecutionResult)
	if !ok {
		return
	}
	metrics.RecordExecutionStatus(string(e.Status))
}
