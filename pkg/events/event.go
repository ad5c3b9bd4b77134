package events

import "time"

// Event is the contract every message on the audit bus satisfies.
type Event interface {
	// EventType returns the action code, e.g. "DOCUMENT_UPLOADED".
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is a plain implementation of Event for ad-hoc payloads.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewAudit builds the standard audit trail event: who did what to which
// resource, scoped to a tenant.
func NewAudit(action, actor, tenant, target string) BaseEvent {
	return BaseEvent{
		Type: action,
		Data: map[string]interface{}{
			"actor":  actor,
			"action": action,
			"target": target,
			"tenant": tenant,
		},
		OccurredAt: time.Now(),
	}
}
