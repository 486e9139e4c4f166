package repository

import (
	"context"

	"github.com/polkiloo/beautymart/internal/domain/model"
)

// UserRepository describes persistence operations for users and their carts.
type UserRepository interface {
	Create(ctx context.Context, name, email, passwordHash string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetCart(ctx context.Context, userID int64) (model.Cart, error)
	AddCartItem(ctx context.Context, userID int64, productID string) (model.Cart, error)
	SetCartItem(ctx context.Context, userID int64, productID string, quantity int) (model.Cart, error)
	ClearCart(ctx context.Context, userID int64) error
}
