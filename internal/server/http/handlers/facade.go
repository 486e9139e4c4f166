package handlers

import (
	"context"

	"github.com/polkiloo/beautymart/internal/adapter/gateway"
	"github.com/polkiloo/beautymart/internal/domain/model"
	pkgAuth "github.com/polkiloo/beautymart/internal/pkg/auth"
	"github.com/polkiloo/beautymart/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	AdminLogin(email, password string) (string, error)
	ParseToken(token string) (pkgAuth.Claims, error)
}

// CartFacade exposes the customer cart.
type CartFacade interface {
	Cart(ctx context.Context, userID int64) (model.Cart, error)
	AddToCart(ctx context.Context, userID int64, productID string) (model.Cart, error)
	UpdateCart(ctx context.Context, userID int64, productID string, quantity int) (model.Cart, error)
}

// OrderFacade encapsulates checkout, payment callbacks and order queries.
type OrderFacade interface {
	PlaceOrder(ctx context.Context, req usecase.CheckoutRequest) (*usecase.CheckoutResult, error)
	ConfirmPayment(ctx context.Context, userID int64, method model.PaymentMethod, orderID string, payload gateway.Payload) (usecase.Outcome, error)
	HandleStripeWebhook(ctx context.Context, body []byte, signatureHeader string) error
	UserOrders(ctx context.Context, userID int64) ([]model.Order, error)
	AllOrders(ctx context.Context) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
}

// HealthFacade reports readiness of backing services.
type HealthFacade interface {
	Ping(ctx context.Context) error
}

// StorefrontFacade aggregates the full set of operations used across handlers.
type StorefrontFacade interface {
	AuthFacade
	CartFacade
	OrderFacade
	HealthFacade
}
