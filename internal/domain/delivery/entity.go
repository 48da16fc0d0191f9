// Package delivery implements the customer address book: saved
// delivery details a buyer can reuse at checkout.
package delivery

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Info struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"ownerId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Zipcode   string    `json:"zipcode"`
	Country   string    `json:"country"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Fields is the client-editable part of a delivery record.
type Fields struct {
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

func (f Fields) Validate() error {
	required := map[string]string{
		"firstName": f.FirstName,
		"lastName":  f.LastName,
		"email":     f.Email,
		"street":    f.Street,
		"city":      f.City,
		"state":     f.State,
		"zipcode":   f.Zipcode,
		"country":   f.Country,
		"phone":     f.Phone,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("missing field %s", name)
		}
	}
	return nil
}
