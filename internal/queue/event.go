// Package queue defines message payloads exchanged over the message broker
// together with the publisher and consumer that move them.
package queue

import "time"

// Activity actions carried in ActivityEvent.Action.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Entity kinds carried in ActivityEvent.Entity.
const (
	EntityProject = "project"
	EntityTask    = "task"
)

// ActivityEvent is published after a project or task mutation has been
// committed. It carries enough information for downstream consumers to log
// or audit the change without querying the primary database.
type ActivityEvent struct {
	Action     string    `json:"action"`
	Entity     string    `json:"entity"`
	EntityID   uint64    `json:"entity_id"`
	OwnerID    uint64    `json:"owner_id"`
	Title      string    `json:"title,omitempty"` // project name or task title
	OccurredAt time.Time `json:"occurred_at"`
}
