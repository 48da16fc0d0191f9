package order

import (
	"time"

	"github.com/google/uuid"
)

// EventKind labels an audit trail entry.
type EventKind string

const (
	EventPlaced           EventKind = "placed"
	EventPaymentConfirmed EventKind = "payment_confirmed"
	EventPaymentDeclined  EventKind = "payment_declined"
	EventStatusChanged    EventKind = "status_changed"
	EventDeleted          EventKind = "deleted"
)

// Event is one entry in an order's audit trail. Events are append-only
// and survive order deletion, so declined and admin-deleted orders
// remain auditable.
type Event struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	ActorID   uuid.UUID `json:"actorId"`
	Kind      EventKind `json:"kind"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewEvent(orderID string, actorID uuid.UUID, kind EventKind, detail string) Event {
	return Event{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		ActorID:   actorID,
		Kind:      kind,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
}
