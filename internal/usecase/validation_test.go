package usecase

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/beautymart/internal/domain/errors"
	"github.com/polkiloo/beautymart/internal/domain/model"
)

func validCheckoutRequest(method model.PaymentMethod) CheckoutRequest {
	return CheckoutRequest{
		UserID: 1,
		Items: []model.OrderItem{
			{ProductID: "p1", Name: "Lip Balm", Price: decimal.RequireFromString("12.50"), Quantity: 2},
			{ProductID: "p2", Name: "Face Mask", Price: decimal.RequireFromString("15"), Quantity: 1},
		},
		Amount:  decimal.RequireFromString("50"),
		Address: model.Address{FirstName: "Ana", Street: "1 Main St", City: "Lisbon"},
		Method:  method,
		Origin:  "https://shop.example",
	}
}

func TestValidateCheckout(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CheckoutRequest)
		want   error
	}{
		{name: "valid", mutate: func(*CheckoutRequest) {}},
		{name: "unknown method", mutate: func(r *CheckoutRequest) { r.Method = "Bitcoin" }, want: domainErrors.ErrUnknownMethod},
		{name: "no items", mutate: func(r *CheckoutRequest) { r.Items = nil }, want: domainErrors.ErrValidation},
		{name: "missing product id", mutate: func(r *CheckoutRequest) { r.Items[0].ProductID = "" }, want: domainErrors.ErrValidation},
		{name: "missing name", mutate: func(r *CheckoutRequest) { r.Items[1].Name = " " }, want: domainErrors.ErrValidation},
		{name: "negative price", mutate: func(r *CheckoutRequest) { r.Items[0].Price = decimal.NewFromInt(-1) }, want: domainErrors.ErrValidation},
		{name: "zero quantity", mutate: func(r *CheckoutRequest) { r.Items[0].Quantity = 0 }, want: domainErrors.ErrValidation},
		{name: "zero amount", mutate: func(r *CheckoutRequest) { r.Amount = decimal.Zero }, want: domainErrors.ErrInvalidAmount},
		{name: "negative amount", mutate: func(r *CheckoutRequest) { r.Amount = decimal.NewFromInt(-5) }, want: domainErrors.ErrInvalidAmount},
		{name: "missing address", mutate: func(r *CheckoutRequest) { r.Address = model.Address{} }, want: domainErrors.ErrValidation},
		{name: "negative discount", mutate: func(r *CheckoutRequest) { r.Discount = decimal.NewFromInt(-1) }, want: domainErrors.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCheckoutRequest(model.PaymentCOD)
			tt.mutate(&req)
			err := ValidateCheckout(req)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
