package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBooked    EventType = "slot.booked"
	EventCancelled EventType = "slot.cancelled"
	EventExpired   EventType = "slot.expired"
	EventCompleted EventType = "slot.completed"
	EventReminder  EventType = "slot.reminder"
)

// Event describes a slot transition that already committed.
type Event struct {
	Type           EventType  `json:"type"`
	SlotID         uuid.UUID  `json:"slot_id"`
	TherapistID    uuid.UUID  `json:"therapist_id"`
	OrderID        *uuid.UUID `json:"order_id,omitempty"`
	ClientID       *uuid.UUID `json:"client_id,omitempty"`
	AvailableAtUTC time.Time  `json:"available_at_utc"`
	Status         string     `json:"status"`
	Revision       int64      `json:"revision"`
}

// Key identifies the transition. A slot reaches a given revision once, so
// the key is stable across redeliveries of the same event.
func (e Event) Key() string {
	return fmt.Sprintf("%s:%s:%d", e.Type, e.SlotID, e.Revision)
}

// Notifier is fire-and-forget: Notify must not block on delivery and has
// no way to report failure back to the transition that triggered it.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, event Event) {
	for _, n := range f {
		if n != nil {
			n.Notify(ctx, event)
		}
	}
}

type Nop struct{}

func (Nop) Notify(context.Context, Event) {}
