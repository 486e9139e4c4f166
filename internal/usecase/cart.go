package usecase

import (
	"context"
	"strings"

	domainErrors "github.com/polkiloo/beautymart/internal/domain/errors"
	"github.com/polkiloo/beautymart/internal/domain/model"
	"github.com/polkiloo/beautymart/internal/domain/repository"
)

// CartUseCase manages the cart persisted on the user record.
type CartUseCase struct {
	users repository.UserRepository
}

// NewCartUseCase constructs CartUseCase.
func NewCartUseCase(users repository.UserRepository) *CartUseCase {
	return &CartUseCase{users: users}
}

// Get returns the user's cart.
func (u *CartUseCase) Get(ctx context.Context, userID int64) (model.Cart, error) {
	return u.users.GetCart(ctx, userID)
}

// Add puts one more unit of productID into the cart.
func (u *CartUseCase) Add(ctx context.Context, userID int64, productID string) (model.Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, domainErrors.Invalid("item id is required")
	}
	return u.users.AddCartItem(ctx, userID, productID)
}

// Update sets the quantity of productID. Non-positive quantities remove it.
func (u *CartUseCase) Update(ctx context.Context, userID int64, productID string, quantity int) (model.Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, domainErrors.Invalid("item id is required")
	}
	return u.users.SetCartItem(ctx, userID, productID, quantity)
}
