// Package queue defines message payloads exchanged over the message broker.
package queue

// UserEventsQueue is the durable queue carrying user lifecycle events.
const UserEventsQueue = "user.lifecycle"

// User lifecycle event types.
const (
	UserCreated     = "user.created"
	UserActivated   = "user.activated"
	UserDeactivated = "user.deactivated"
)

// UserLifecycleEvent is published after a user is created, activated or
// deactivated. It carries enough for downstream consumers to log or notify
// without querying the catalog database.
type UserLifecycleEvent struct {
	Type       string `json:"type"`
	UserID     uint64 `json:"user_id"`
	UserName   string `json:"user_name"`
	Email      string `json:"email"`
	OccurredAt string `json:"occurred_at"` // RFC 3339, UTC
}
