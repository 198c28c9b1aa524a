package monitor

import "log"

// AlertSink interface for pluggable alert delivery.
type AlertSink interface {
	Send(message string) error
}

// LogAlertSink delivers alerts to the process log. It is the default sink
// when no external alerting integration (PagerDuty, Slack, …) is wired —
// those are out of this core's scope per its external-collaborator list.
type LogAlertSink struct{}

func (LogAlertSink) Send(message string) error {
	log.Printf("[ALERT] %s", message)
	return nil
}
