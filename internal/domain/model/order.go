package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod tags the way an order is paid. It never changes after creation.
type PaymentMethod string

const (
	PaymentCOD      PaymentMethod = "COD"
	PaymentStripe   PaymentMethod = "Stripe"
	PaymentRazorpay PaymentMethod = "Razorpay"
	PaymentPayPal   PaymentMethod = "PayPal"
)

// Valid reports whether the method is one of the supported ones.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentStripe, PaymentRazorpay, PaymentPayPal:
		return true
	}
	return false
}

// Gateway reports whether the method settles through an external provider.
func (m PaymentMethod) Gateway() bool {
	return m.Valid() && m != PaymentCOD
}

// DefaultOrderStatus is assigned to every freshly placed order.
const DefaultOrderStatus = "Order Placed"

// ImageList is an ordered list of image URLs. Older records keep a single
// string, so decoding accepts both shapes.
type ImageList []string

// UnmarshalJSON accepts either a JSON string or an array of strings.
func (l *ImageList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = ImageList{}
		return nil
	}
	if data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		if single == "" {
			*l = ImageList{}
			return nil
		}
		*l = ImageList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("image: %w", err)
	}
	if many == nil {
		many = []string{}
	}
	*l = many
	return nil
}

// MarshalJSON always emits an array.
func (l ImageList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// OrderItem is a snapshot of a product at checkout time.
type OrderItem struct {
	ProductID string          `json:"_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Image     ImageList       `json:"image"`
}

// Address is the shipping destination captured at checkout.
type Address struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Street    string `json:"street,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Zipcode   string `json:"zipcode,omitempty"`
	Country   string `json:"country,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// IsZero reports whether no address field was supplied.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Confirmation keeps provider metadata recorded when a payment is verified.
type Confirmation struct {
	Provider        string `json:"provider"`
	ProviderOrderID string `json:"providerOrderId,omitempty"`
	TransactionID   string `json:"transactionId,omitempty"`
	PayerID         string `json:"payerId,omitempty"`
	Signature       string `json:"signature,omitempty"`
	Amount          string `json:"amount,omitempty"`
	Currency        string `json:"currency,omitempty"`
	State           string `json:"state,omitempty"`
}

// Order describes a purchase placed by a user.
type Order struct {
	ID            uuid.UUID
	UserID        int64
	Items         []OrderItem
	Address       Address
	Amount        decimal.Decimal
	PaymentMethod PaymentMethod
	Payment       bool
	Status        string
	ProviderRef   string
	Confirmation  *Confirmation
	Date          time.Time
	UpdatedAt     time.Time
}

// Subtotal sums price times quantity over all items.
func (o *Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Pending reports whether the order still awaits gateway settlement.
func (o *Order) Pending() bool {
	return !o.Payment && o.PaymentMethod.Gateway()
}
