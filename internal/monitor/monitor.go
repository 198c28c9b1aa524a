package monitor

import (
	"context"
	"log"
	"time"

	"solana-trading-core/internal/events"
	"solana-trading-core/internal/ipc"
)

// Monitor watches events and emits alerts. Rules decides which decision
// outcomes are alert-worthy; the zero value (DefaultRuleEvaluator) is used
// if Rules is left unset.
type Monitor struct {
	Bus     *events.Bus
	AlertFn func(string)
	Rules   RuleEvaluator
}

func (m *Monitor) Start(ctx context.Context) {
	if m.Bus == nil || m.AlertFn == nil {
		log.Println("monitor not fully configured; skipping")
		return
	}
	if m.Rules.AlertOnReasons == nil {
		m.Rules = DefaultRuleEvaluator()
	}

	riskStream, unsubRisk := m.Bus.Subscribe(events.EventRiskAlert, 50)
	rejectedStream, unsubRejected := m.Bus.Subscribe(events.EventDecisionRejected, 50)
	simFailedStream, unsubSimFailed := m.Bus.Subscribe(events.EventDecisionSimFailed, 50)

	go func() {
		defer unsubRisk()
		defer unsubRejected()
		defer unsubSimFailed()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-riskStream:
				if !ok {
					return
				}
				m.AlertFn(formatAlert(msg))
			case msg, ok := <-rejectedStream:
				if !ok {
					return
				}
				m.checkAndAlert(msg)
			case msg, ok := <-simFailedStream:
				if !ok {
					return
				}
				m.checkAndAlert(msg)
			}
		}
	}()
}

func (m *Monitor) checkAndAlert(msg any) {
	decision, ok := msg.(ipc.DecisionRecord)
	if !ok {
		return
	}
	if alert, message := m.Rules.Check(decision); alert {
		m.AlertFn(formatAlert(message))
	}
}

func formatAlert(msg any) string {
	return "[" + time.Now().Format(time.RFC3339) + "] " + toString(msg)
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	default:
		return "alert triggered"
	}
}
