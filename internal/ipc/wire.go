package ipc

import (
	"log"

	"solana-trading-core/internal/events"
)

// WireAuditTrail subscribes w to the pipeline's decision and execution
// lifecycle events and appends each one to the audit log, so live mode's
// JSONL trail matches what replay mode writes directly. Returns an
// unsubscribe-all function.
func WireAuditTrail(bus *events.Bus, w *RotatingWriter) func() {
	accepted, unsubAccepted := bus.Subscribe(events.EventDecisionAccepted, 256)
	rejected, unsubRejected := bus.Subscribe(events.EventDecisionRejected, 256)
	simFailed, unsubSimFailed := bus.Subscribe(events.EventDecisionSimFailed, 256)
	sent, unsubSent := bus.Subscribe(events.EventExecutionSent, 256)
	confirmed, unsubConfirmed := bus.Subscribe(events.EventExecutionConfirmed, 256)
	failed, unsubFailed := bus.Subscribe(events.EventExecutionFailed, 256)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case msg, ok := <-accepted:
				if !ok {
					return
				}
				appendIfRecord(w, msg)
			case msg, ok := <-rejected:
				if !ok {
					return
				}
				appendIfRecord(w, msg)
			case msg, ok := <-simFailed:
				if !ok {
					return
				}
				appendIfRecord(w, msg)
			case msg, ok := <-sent:
				if !ok {
					return
				}
				appendIfRecord(w, msg)
			case msg, ok := <-confirmed:
				if !ok {
					return
				}
				appendIfRecord(w, msg)
			case msg, ok := <-failed:
				if !ok {
					return
				}
				appendIfRecord(w, msg)
			}
		}
	}()

	return func() {
		close(done)
		unsubAccepted()
		unsubRejected()
		unsubSimFailed()
		unsubSent()
		unsubConfirmed()
		unsubFailed()
	}
}

func appendIfRecord(w *RotatingWriter, msg any) {
	switch msg.(type) {
	case DecisionRecord, ExecutionResult:
		if err := w.Append(msg); err != nil {
			log.Printf("audit append failed: %v", err)
		}
	}
}
