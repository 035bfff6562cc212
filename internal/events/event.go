// Package events announces record changes to other services. Publishing is best effort:
// a write that reached the database is never rolled back because its event was lost.
package events

import (
	"context"
	"time"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event describes one committed change. Record holds the record as stored after the
// change, or as it was before a delete.
type Event struct {
	Resource   string    `json:"resource"`
	Action     Action    `json:"action"`
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurredAt"`
	Record     any       `json:"record,omitempty"`
}

// Key groups every change of one record onto the same partition.
func (e Event) Key() string {
	return e.Resource + ":" + e.ID
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
