package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/beautymart/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	// CreateAndClearCart inserts the order and empties the owner's cart atomically.
	CreateAndClearCart(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	SetProviderRef(ctx context.Context, id uuid.UUID, ref string) error
	// MarkPaid flips payment to true and clears the owner's cart in one
	// transaction. It reports false when the order was already paid or gone.
	MarkPaid(ctx context.Context, id uuid.UUID, confirmation *model.Confirmation) (bool, error)
	// DeletePending removes the order only while it is unpaid.
	DeletePending(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	// TouchPending bumps updated_at of an unpaid order so the sweeper leaves it
	// alone while a provider call is in flight.
	TouchPending(ctx context.Context, id uuid.UUID) (bool, error)
	// SelectStalePending lists unpaid gateway orders untouched since before.
	SelectStalePending(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
	// DeleteStale removes the order only if it is still unpaid and untouched
	// since before.
	DeleteStale(ctx context.Context, id uuid.UUID, before time.Time) (bool, error)
}
