package order

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is the channel an order was placed through. Exactly one
// per order, fixed at creation.
type PaymentMethod string

const (
	MethodCOD            PaymentMethod = "cod"
	MethodHostedCheckout PaymentMethod = "hostedCheckout"
	MethodBankSlip       PaymentMethod = "bankSlip"
)

var AvailableMethods = []PaymentMethod{MethodCOD, MethodHostedCheckout, MethodBankSlip}

func NewPaymentMethod(raw string) (PaymentMethod, error) {
	if slices.Contains(AvailableMethods, PaymentMethod(raw)) {
		return PaymentMethod(raw), nil
	}
	return "", errors.New("invalid payment method")
}

// Status is the administrative display label. It is intentionally
// independent from the Payment flag: Payment reports funds receipt,
// Status reports workflow state.
type Status string

const (
	StatusNotPaid Status = "Not Paid"
	StatusPaid    Status = "Paid"
)

var AvailableStatuses = []Status{StatusNotPaid, StatusPaid}

func NewStatus(raw string) (Status, error) {
	if slices.Contains(AvailableStatuses, Status(raw)) {
		return Status(raw), nil
	}
	return "", errors.New("invalid order status")
}

// Item is a line snapshot taken at placement time. Catalog changes
// after placement never alter it.
type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
}

// Address is the delivery snapshot captured at placement. All fields
// are required.
type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zipcode   string `json:"zipcode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

func (a Address) Validate() error {
	fields := map[string]string{
		"firstName": a.FirstName,
		"lastName":  a.LastName,
		"email":     a.Email,
		"street":    a.Street,
		"city":      a.City,
		"state":     a.State,
		"zipcode":   a.Zipcode,
		"country":   a.Country,
		"phone":     a.Phone,
	}
	for name, value := range fields {
		if value == "" {
			return fmt.Errorf("missing address field %s", name)
		}
	}
	return nil
}

type Order struct {
	ID            string        `json:"id"`
	UserID        uuid.UUID     `json:"ownerId"`
	Items         []Item        `json:"items"`
	Amount        float64       `json:"amount"`
	Address       Address       `json:"address"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Payment       bool          `json:"payment"`
	BankSlipURL   *string       `json:"bankSlipUrl,omitempty"`
	Status        Status        `json:"status"`
	CreatedAt     time.Time     `json:"date"`
}
