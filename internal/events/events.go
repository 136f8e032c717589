package events

import (
	"context"
	"time"

	"timetracker/internal/storage/models"
)

// Event announces a committed time entry lifecycle transition.
type Event struct {
	EntryID string             `json:"entry_id"`
	Action  models.AuditAction `json:"action"`
	At      time.Time          `json:"at"`
}

// Publisher delivers lifecycle events to interested listeners.
// Delivery is best effort: the transition is already committed.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
