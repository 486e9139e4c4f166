package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/beautymart/internal/adapter/gateway"
	"github.com/polkiloo/beautymart/internal/domain/model"
	pkgAuth "github.com/polkiloo/beautymart/internal/pkg/auth"
	"github.com/polkiloo/beautymart/internal/usecase"
)

// HealthChecker reports whether backing infrastructure is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade is the single entry point used by transports and workers.
type StorefrontFacade struct {
	auth      *usecase.AuthUseCase
	cart      *usecase.CartUseCase
	checkout  *usecase.CheckoutUseCase
	reconcile *usecase.ReconcileUseCase
	orders    *usecase.OrderUseCase
	health    HealthChecker
}

func NewStorefrontFacade(
	auth *usecase.AuthUseCase,
	cart *usecase.CartUseCase,
	checkout *usecase.CheckoutUseCase,
	reconcile *usecase.ReconcileUseCase,
	orders *usecase.OrderUseCase,
	health HealthChecker,
) *StorefrontFacade {
	return &StorefrontFacade{
		auth:      auth,
		cart:      cart,
		checkout:  checkout,
		reconcile: reconcile,
		orders:    orders,
		health:    health,
	}
}

func (f *StorefrontFacade) Register(ctx context.Context, name, email, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, name, email, password)
	return token, err
}

func (f *StorefrontFacade) Authenticate(ctx context.Context, email, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, email, password)
	return token, err
}

func (f *StorefrontFacade) AdminLogin(email, password string) (string, error) {
	return f.auth.AdminLogin(email, password)
}

func (f *StorefrontFacade) ParseToken(token string) (pkgAuth.Claims, error) {
	return f.auth.ParseToken(token)
}

func (f *StorefrontFacade) Cart(ctx context.Context, userID int64) (model.Cart, error) {
	return f.cart.Get(ctx, userID)
}

func (f *StorefrontFacade) AddToCart(ctx context.Context, userID int64, productID string) (model.Cart, error) {
	return f.cart.Add(ctx, userID, productID)
}

func (f *StorefrontFacade) UpdateCart(ctx context.Context, userID int64, productID string, quantity int) (model.Cart, error) {
	return f.cart.Update(ctx, userID, productID, quantity)
}

func (f *StorefrontFacade) PlaceOrder(ctx context.Context, req usecase.CheckoutRequest) (*usecase.CheckoutResult, error) {
	return f.checkout.Place(ctx, req)
}

func (f *StorefrontFacade) ConfirmPayment(ctx context.Context, userID int64, method model.PaymentMethod, orderID string, payload gateway.Payload) (usecase.Outcome, error) {
	return f.reconcile.Confirm(ctx, userID, method, orderID, payload)
}

func (f *StorefrontFacade) HandleStripeWebhook(ctx context.Context, body []byte, signatureHeader string) error {
	return f.reconcile.HandleStripeWebhook(ctx, body, signatureHeader)
}

func (f *StorefrontFacade) UserOrders(ctx context.Context, userID int64) ([]model.Order, error) {
	return f.orders.ListByUser(ctx, userID)
}

func (f *StorefrontFacade) AllOrders(ctx context.Context) ([]model.Order, error) {
	return f.orders.ListAll(ctx)
}

func (f *StorefrontFacade) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	return f.orders.UpdateStatus(ctx, orderID, status)
}

func (f *StorefrontFacade) StalePendingOrders(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	return f.orders.StalePending(ctx, before, limit)
}

func (f *StorefrontFacade) DiscardPendingOrder(ctx context.Context, id uuid.UUID, before time.Time) (bool, error) {
	return f.orders.DiscardStale(ctx, id, before)
}

// Ping checks storage connectivity.
func (f *StorefrontFacade) Ping(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health.HealthCheck(ctx)
}
