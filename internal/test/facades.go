package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/beautymart/internal/domain/model"
	pkgAuth "github.com/polkiloo/beautymart/internal/pkg/auth"
)

// AuthFacadeStub simulates authentication facade interactions.
type AuthFacadeStub struct {
	RegisterFn     func(context.Context, string, string, string) (string, error)
	AuthenticateFn func(context.Context, string, string) (string, error)
	AdminLoginFn   func(string, string) (string, error)
	ParseFn        func(string) (pkgAuth.Claims, error)
}

// Register returns token for successful registration scenarios.
func (s AuthFacadeStub) Register(ctx context.Context, name, email, password string) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, name, email, password)
	}
	return "token", nil
}

// Authenticate returns token for successful authentication scenarios.
func (s AuthFacadeStub) Authenticate(ctx context.Context, email, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, email, password)
	}
	return "token", nil
}

// AdminLogin returns an admin token by default.
func (s AuthFacadeStub) AdminLogin(email, password string) (string, error) {
	if s.AdminLoginFn != nil {
		return s.AdminLoginFn(email, password)
	}
	return "admin-token", nil
}

// ParseToken returns claims of a regular user by default.
func (s AuthFacadeStub) ParseToken(token string) (pkgAuth.Claims, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return pkgAuth.Claims{UserID: 1, Role: pkgAuth.RoleUser}, nil
}

// CartFacadeStub provides controllable behaviour for cart endpoints.
type CartFacadeStub struct {
	CartFn   func(context.Context, int64) (model.Cart, error)
	AddFn    func(context.Context, int64, string) (model.Cart, error)
	UpdateFn func(context.Context, int64, string, int) (model.Cart, error)
}

// Cart returns a single-item cart by default.
func (s CartFacadeStub) Cart(ctx context.Context, userID int64) (model.Cart, error) {
	if s.CartFn != nil {
		return s.CartFn(ctx, userID)
	}
	return model.Cart{"p1": 1}, nil
}

// AddToCart delegates to AddFn.
func (s CartFacadeStub) AddToCart(ctx context.Context, userID int64, productID string) (model.Cart, error) {
	if s.AddFn != nil {
		return s.AddFn(ctx, userID, productID)
	}
	return model.Cart{productID: 1}, nil
}

// UpdateCart delegates to UpdateFn.
func (s CartFacadeStub) UpdateCart(ctx context.Context, userID int64, productID string, quantity int) (model.Cart, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, userID, productID, quantity)
	}
	return model.Cart{productID: quantity}, nil
}

// RetentionFacadeStub mimics sweeper interactions with the storefront facade.
type RetentionFacadeStub struct {
	Batches   [][]uuid.UUID
	StaleFn   func(context.Context, time.Time, int) ([]uuid.UUID, error)
	DiscardFn func(context.Context, uuid.UUID, time.Time) (bool, error)
	Discarded []uuid.UUID
	Cutoffs   []time.Time

	mu    sync.Mutex
	calls int32
}

// Lock exposes internal mutex for external synchronization.
func (s *RetentionFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *RetentionFacadeStub) Unlock() { s.mu.Unlock() }

// StalePendingOrders returns batches from configured queue.
func (s *RetentionFacadeStub) StalePendingOrders(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	s.mu.Lock()
	s.Cutoffs = append(s.Cutoffs, before)
	s.mu.Unlock()
	if s.StaleFn != nil {
		return s.StaleFn(ctx, before, limit)
	}
	call := atomic.AddInt32(&s.calls, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	return nil, nil
}

// DiscardPendingOrder records discard requests.
func (s *RetentionFacadeStub) DiscardPendingOrder(ctx context.Context, id uuid.UUID, before time.Time) (bool, error) {
	if s.DiscardFn != nil {
		return s.DiscardFn(ctx, id, before)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Discarded = append(s.Discarded, id)
	return true, nil
}
