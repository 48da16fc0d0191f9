package order

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source port.go -destination mock_port.go -package order

// TxOrderRepo is the repository surface available both directly and
// inside a transaction.
type TxOrderRepo interface {
	GetOrders(ctx context.Context, query *OrdersQuery) ([]Order, error)
	CreateOrder(ctx context.Context, o Order) error

	// MarkPaid unconditionally sets payment=true and the given status.
	// Replays are harmless: the update is an absolute set, not a
	// compare-and-swap.
	MarkPaid(ctx context.Context, id string, status Status) error

	// UpdateStatus overwrites the status label. markPaid additionally
	// flips payment to true; it never flips it back. Returns false when
	// no order matched.
	UpdateStatus(ctx context.Context, id string, status Status, markPaid bool) (bool, error)

	// DeleteOrder hard-deletes. Returns false when the order did not
	// exist, which callers treat as a no-op success.
	DeleteOrder(ctx context.Context, id string) (bool, error)

	CreateEvent(ctx context.Context, e Event) error
	GetEvents(ctx context.Context, orderID string) ([]Event, error)
}

type OrderRepo interface {
	TxOrderRepo
	InTransaction(ctx context.Context, fn func(repo TxOrderRepo) error) error
}

// SessionLine is one line item of a hosted checkout session. UnitAmount
// is in the currency's minor unit.
type SessionLine struct {
	Name       string
	UnitAmount int64
	Quantity   int
}

type SessionRequest struct {
	OrderID    string
	Lines      []SessionLine
	SuccessURL string
	CancelURL  string
}

type Session struct {
	ID  string
	URL string
}

// CheckoutGateway creates hosted checkout sessions with the payment
// provider. It holds no state of its own.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
}

// SlipStore uploads bank slip proof files and returns a durable public
// URL.
type SlipStore interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// CartStore is the cart collaborator. Clearing an absent cart is a
// no-op by construction.
type CartStore interface {
	Clear(ctx context.Context, userID uuid.UUID) error
}
