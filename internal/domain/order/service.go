package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"storefront/internal/controller/apperror"
	"storefront/internal/domain/auth"
	"storefront/pkg/logger"

	"github.com/google/uuid"
)

// DeliveryChargeName is the synthetic line item added to every hosted
// checkout session.
const DeliveryChargeName = "Delivery Charges"

type Service struct {
	repo    OrderRepo
	gateway CheckoutGateway
	slips   SlipStore
	carts   CartStore
	l       logger.Interface

	deliveryFee float64
}

func NewService(repo OrderRepo, gateway CheckoutGateway, slips SlipStore, carts CartStore, l logger.Interface, deliveryFee float64) *Service {
	return &Service{
		repo:        repo,
		gateway:     gateway,
		slips:       slips,
		carts:       carts,
		l:           l,
		deliveryFee: deliveryFee,
	}
}

// SlipUpload is the bank slip proof attached to a bankSlip placement.
type SlipUpload struct {
	Filename string
	Data     []byte
}

type PlaceOrderRequest struct {
	Method  PaymentMethod
	Items   []Item
	Amount  float64
	Address Address

	// Origin is the storefront base URL the buyer returns to after a
	// hosted checkout round-trip.
	Origin string

	Slip *SlipUpload
}

func (r PlaceOrderRequest) validate() error {
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: empty item list", apperror.ErrInvalidInput)
	}
	if r.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", apperror.ErrInvalidInput)
	}
	if err := r.Address.Validate(); err != nil {
		return fmt.Errorf("%w: %s", apperror.ErrInvalidInput, err.Error())
	}

	switch r.Method {
	case MethodCOD:
	case MethodHostedCheckout:
		if r.Origin == "" {
			return fmt.Errorf("%w: missing origin for hosted checkout", apperror.ErrInvalidInput)
		}
	case MethodBankSlip:
		if r.Slip == nil || len(r.Slip.Data) == 0 {
			return fmt.Errorf("%w: bank slip image is required", apperror.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: invalid payment method %q", apperror.ErrInvalidInput, r.Method)
	}
	return nil
}

type PlacementResult struct {
	OrderID string

	// RedirectURL is set only for hosted checkout placements.
	RedirectURL string
}

// PlaceOrder validates the checkout request, branches on the payment
// channel and persists the order. The cart is cleared only after the
// order write durably succeeded; for hosted checkout it is not cleared
// at all until reconciliation confirms the payment.
func (s *Service) PlaceOrder(ctx context.Context, p auth.Principal, req PlaceOrderRequest) (PlacementResult, error) {
	if p.IsZero() {
		return PlacementResult{}, apperror.ErrUnauthenticated
	}
	if err := req.validate(); err != nil {
		return PlacementResult{}, err
	}

	switch req.Method {
	case MethodCOD:
		return s.placeCOD(ctx, p, req)
	case MethodHostedCheckout:
		return s.placeHostedCheckout(ctx, p, req)
	default:
		return s.placeBankSlip(ctx, p, req)
	}
}

func (s *Service) placeCOD(ctx context.Context, p auth.Principal, req PlaceOrderRequest) (PlacementResult, error) {
	o := s.newOrder(p, req, nil)

	if err := s.persistOrder(ctx, p, o); err != nil {
		return PlacementResult{}, err
	}

	s.clearCart(ctx, p.UserID, o.ID)

	return PlacementResult{OrderID: o.ID}, nil
}

func (s *Service) placeHostedCheckout(ctx context.Context, p auth.Principal, req PlaceOrderRequest) (PlacementResult, error) {
	o := s.newOrder(p, req, nil)

	if err := s.persistOrder(ctx, p, o); err != nil {
		return PlacementResult{}, err
	}

	sess, err := s.gateway.CreateSession(ctx, SessionRequest{
		OrderID:    o.ID,
		Lines:      s.sessionLines(req.Items),
		SuccessURL: fmt.Sprintf("%s/verify?success=true&orderId=%s", req.Origin, o.ID),
		CancelURL:  fmt.Sprintf("%s/verify?success=false&orderId=%s", req.Origin, o.ID),
	})
	if err != nil {
		// The pending order stays behind and is reclaimed out of band.
		s.l.Error(fmt.Errorf("checkout session for order %s: %w", o.ID, err))
		return PlacementResult{}, fmt.Errorf("%w: create checkout session: %v", apperror.ErrAdapterFailure, err)
	}

	return PlacementResult{OrderID: o.ID, RedirectURL: sess.URL}, nil
}

func (s *Service) placeBankSlip(ctx context.Context, p auth.Principal, req PlaceOrderRequest) (PlacementResult, error) {
	// Upload before persisting: no order may exist without its
	// attachment.
	url, err := s.slips.Upload(ctx, req.Slip.Filename, req.Slip.Data)
	if err != nil {
		return PlacementResult{}, fmt.Errorf("%w: upload bank slip: %v", apperror.ErrAdapterFailure, err)
	}

	o := s.newOrder(p, req, &url)

	if err := s.persistOrder(ctx, p, o); err != nil {
		return PlacementResult{}, err
	}

	s.clearCart(ctx, p.UserID, o.ID)

	return PlacementResult{OrderID: o.ID}, nil
}

// Reconcile finalizes or discards a pending hosted checkout order based
// on the redirect outcome. Confirmed replays are harmless; a declined
// replay finds nothing to delete and succeeds as a no-op.
func (s *Service) Reconcile(ctx context.Context, p auth.Principal, orderID string, confirmed bool) error {
	if p.IsZero() {
		return apperror.ErrUnauthenticated
	}

	o, err := s.getOrderByID(ctx, orderID)
	if err != nil {
		if !confirmed && isNotFound(err) {
			// Already discarded, nothing to do.
			return nil
		}
		return err
	}

	if o.UserID != p.UserID {
		return apperror.ErrForbidden
	}
	if o.PaymentMethod != MethodHostedCheckout {
		return fmt.Errorf("%w: order %s was not placed through hosted checkout", apperror.ErrInvalidInput, orderID)
	}

	if !confirmed {
		return s.repo.InTransaction(ctx, func(tx TxOrderRepo) error {
			if _, err := tx.DeleteOrder(ctx, orderID); err != nil {
				return fmt.Errorf("discard declined order: %w", err)
			}
			return tx.CreateEvent(ctx, NewEvent(orderID, p.UserID, EventPaymentDeclined, ""))
		})
	}

	err = s.repo.InTransaction(ctx, func(tx TxOrderRepo) error {
		if err := tx.MarkPaid(ctx, orderID, StatusPaid); err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		return tx.CreateEvent(ctx, NewEvent(orderID, p.UserID, EventPaymentConfirmed, ""))
	})
	if err != nil {
		return err
	}

	s.clearCart(ctx, p.UserID, orderID)

	return nil
}

// UserOrders returns the principal's own orders, newest first.
func (s *Service) UserOrders(ctx context.Context, p auth.Principal) ([]Order, error) {
	if p.IsZero() {
		return nil, apperror.ErrUnauthenticated
	}

	query, _ := NewOrdersQueryBuilder().
		WithUserIDs(p.UserID.String()).
		WithSort("created_at", "desc").
		Build()

	orders, err := s.repo.GetOrders(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("user orders: %w", err)
	}
	return orders, nil
}

// GetOrder returns a single order. Owners see their own orders; admins
// see everything.
func (s *Service) GetOrder(ctx context.Context, p auth.Principal, id string) (Order, error) {
	if p.IsZero() {
		return Order{}, apperror.ErrUnauthenticated
	}

	o, err := s.getOrderByID(ctx, id)
	if err != nil {
		return Order{}, err
	}

	if o.UserID != p.UserID && !p.Admin {
		return Order{}, apperror.ErrForbidden
	}
	return o, nil
}

// ListOrders returns all orders narrowed by query. Admin only.
func (s *Service) ListOrders(ctx context.Context, p auth.Principal, query OrdersQuery) ([]Order, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	orders, err := s.repo.GetOrders(ctx, &query)
	if err != nil {
		return nil, fmt.Errorf("filter orders: %w", err)
	}
	return orders, nil
}

// SetStatus overwrites the display status. Selecting the paid label
// also flips the payment flag, mirroring manual funds confirmation for
// cod and bank slip orders; no status ever flips it back.
func (s *Service) SetStatus(ctx context.Context, p auth.Principal, orderID string, status Status) error {
	if err := requireAdmin(p); err != nil {
		return err
	}

	return s.repo.InTransaction(ctx, func(tx TxOrderRepo) error {
		found, err := tx.UpdateStatus(ctx, orderID, status, status == StatusPaid)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: order %s", apperror.ErrNotFound, orderID)
		}
		return tx.CreateEvent(ctx, NewEvent(orderID, p.UserID, EventStatusChanged, string(status)))
	})
}

// DeleteOrder hard-deletes regardless of payment state. Deleting a
// missing order succeeds to tolerate double-clicks and retries.
func (s *Service) DeleteOrder(ctx context.Context, p auth.Principal, orderID string) error {
	if err := requireAdmin(p); err != nil {
		return err
	}

	return s.repo.InTransaction(ctx, func(tx TxOrderRepo) error {
		found, err := tx.DeleteOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		if !found {
			return nil
		}
		return tx.CreateEvent(ctx, NewEvent(orderID, p.UserID, EventDeleted, ""))
	})
}

// OrderEvents returns an order's audit trail. Admin only. The trail
// outlives the order itself.
func (s *Service) OrderEvents(ctx context.Context, p auth.Principal, orderID string) ([]Event, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	events, err := s.repo.GetEvents(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get events for order %s: %w", orderID, err)
	}
	return events, nil
}

func (s *Service) newOrder(p auth.Principal, req PlaceOrderRequest, bankSlipURL *string) Order {
	return Order{
		ID:            uuid.New().String(),
		UserID:        p.UserID,
		Items:         req.Items,
		Amount:        req.Amount,
		Address:       req.Address,
		PaymentMethod: req.Method,
		Payment:       false,
		BankSlipURL:   bankSlipURL,
		Status:        StatusNotPaid,
		CreatedAt:     time.Now(),
	}
}

func (s *Service) persistOrder(ctx context.Context, p auth.Principal, o Order) error {
	err := s.repo.InTransaction(ctx, func(tx TxOrderRepo) error {
		if err := tx.CreateOrder(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return tx.CreateEvent(ctx, NewEvent(o.ID, p.UserID, EventPlaced, string(o.PaymentMethod)))
	})
	if err != nil {
		return fmt.Errorf("persist order: %w", err)
	}
	return nil
}

func (s *Service) sessionLines(items []Item) []SessionLine {
	lines := make([]SessionLine, 0, len(items)+1)
	for _, item := range items {
		lines = append(lines, SessionLine{
			Name:       item.Name,
			UnitAmount: toMinorUnit(item.Price),
			Quantity:   item.Quantity,
		})
	}
	lines = append(lines, SessionLine{
		Name:       DeliveryChargeName,
		UnitAmount: toMinorUnit(s.deliveryFee),
		Quantity:   1,
	})
	return lines
}

// clearCart never fails the operation that earned it; the order is
// already durable and a stale cart is recoverable.
func (s *Service) clearCart(ctx context.Context, userID uuid.UUID, orderID string) {
	if err := s.carts.Clear(ctx, userID); err != nil {
		s.l.Error(fmt.Errorf("clear cart for user %s after order %s: %w", userID, orderID, err))
	}
}

func (s *Service) getOrderByID(ctx context.Context, id string) (Order, error) {
	query, _ := NewOrdersQueryBuilder().
		WithIDs(id).
		Build()

	orders, err := s.repo.GetOrders(ctx, query)
	if err != nil {
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	if len(orders) == 0 {
		return Order{}, fmt.Errorf("%w: order %s", apperror.ErrNotFound, id)
	}
	return orders[0], nil
}

func requireAdmin(p auth.Principal) error {
	if p.IsZero() {
		return apperror.ErrUnauthenticated
	}
	if !p.Admin {
		return apperror.ErrForbidden
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}

func toMinorUnit(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
