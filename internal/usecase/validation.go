package usecase

import (
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/beautymart/internal/domain/errors"
	"github.com/polkiloo/beautymart/internal/domain/model"
)

// ValidateCheckout rejects requests that must not create an order.
func ValidateCheckout(req CheckoutRequest) error {
	if !req.Method.Valid() {
		return domainErrors.ErrUnknownMethod
	}
	if len(req.Items) == 0 {
		return domainErrors.Invalid("order must contain at least one item")
	}
	for i, item := range req.Items {
		if err := validateItem(item); err != nil {
			return domainErrors.Invalid(fmt.Sprintf("item %d: %s", i, err.Error()))
		}
	}
	if !req.Amount.IsPositive() {
		return domainErrors.ErrInvalidAmount
	}
	if req.Address.IsZero() {
		return domainErrors.Invalid("delivery address is required")
	}
	if req.Discount.IsNegative() || req.Shipping.IsNegative() || req.Subtotal.IsNegative() {
		return domainErrors.ErrInvalidAmount
	}
	return nil
}

func validateItem(item model.OrderItem) error {
	switch {
	case strings.TrimSpace(item.ProductID) == "":
		return fmt.Errorf("product id is required")
	case strings.TrimSpace(item.Name) == "":
		return fmt.Errorf("name is required")
	case item.Price.IsNegative():
		return fmt.Errorf("price must not be negative")
	case item.Quantity <= 0:
		return fmt.Errorf("quantity must be positive")
	}
	return nil
}
