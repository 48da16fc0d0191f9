package order_repo

import (
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/domain/order"

	"github.com/google/uuid"
)

// orderRow mirrors the orders table. Items and address live in JSONB
// columns as placement-time snapshots.
type orderRow struct {
	ID            string
	UserID        uuid.UUID
	Items         []byte
	Amount        float64
	Address       []byte
	PaymentMethod string
	Payment       bool
	BankSlipURL   *string
	Status        string
	CreatedAt     time.Time
}

func (m orderRow) toDomain() (order.Order, error) {
	method, err := order.NewPaymentMethod(m.PaymentMethod)
	if err != nil {
		return order.Order{}, fmt.Errorf("invalid payment method in database: %w", err)
	}

	status, err := order.NewStatus(m.Status)
	if err != nil {
		return order.Order{}, fmt.Errorf("invalid status in database: %w", err)
	}

	var items []order.Item
	if err := json.Unmarshal(m.Items, &items); err != nil {
		return order.Order{}, fmt.Errorf("unmarshal items: %w", err)
	}

	var address order.Address
	if err := json.Unmarshal(m.Address, &address); err != nil {
		return order.Order{}, fmt.Errorf("unmarshal address: %w", err)
	}

	return order.Order{
		ID:            m.ID,
		UserID:        m.UserID,
		Items:         items,
		Amount:        m.Amount,
		Address:       address,
		PaymentMethod: method,
		Payment:       m.Payment,
		BankSlipURL:   m.BankSlipURL,
		Status:        status,
		CreatedAt:     m.CreatedAt,
	}, nil
}

type eventRow struct {
	ID        string
	OrderID   string
	ActorID   uuid.UUID
	Kind      string
	Detail    string
	CreatedAt time.Time
}

func (m eventRow) toDomain() order.Event {
	return order.Event{
		ID:        m.ID,
		OrderID:   m.OrderID,
		ActorID:   m.ActorID,
		Kind:      order.EventKind(m.Kind),
		Detail:    m.Detail,
		CreatedAt: m.CreatedAt,
	}
}
