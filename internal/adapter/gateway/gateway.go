// Package gateway normalizes external payment providers behind one contract.
package gateway

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/beautymart/internal/domain/model"
)

// Gateway wraps a single payment provider.
type Gateway interface {
	Method() model.PaymentMethod
	// Configured reports ErrGatewayNotConfigured when credentials are missing.
	Configured() error
	Initiate(ctx context.Context, order *model.Order, charge Charge) (*PaymentHandle, error)
	Confirm(ctx context.Context, order *model.Order, payload Payload) (*ConfirmationResult, error)
}

// Charge describes what the provider should collect for an order.
type Charge struct {
	// Currency overrides the adapter default when set.
	Currency      string
	DeliveryFee   decimal.Decimal
	ReturnBaseURL string

	// Wallet breakdown.
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
}

// ProviderOrder is a provider-side order handed to a client widget.
type ProviderOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	KeyID    string `json:"key"`
}

// PaymentHandle is returned to the caller to continue payment out of band.
type PaymentHandle struct {
	RedirectURL   string
	ProviderRef   string
	ProviderOrder *ProviderOrder
}

// Payload carries provider callback data.
type Payload struct {
	Success         bool
	ProviderOrderID string
	PaymentID       string
	PayerID         string
	Signature       string
}

// ConfirmationResult reports whether the provider vouched for the payment.
type ConfirmationResult struct {
	Verified     bool
	ProviderRef  string
	Confirmation *model.Confirmation
}

func currencyOr(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}
