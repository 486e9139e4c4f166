package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/beautymart/internal/domain/errors"
	"github.com/polkiloo/beautymart/internal/domain/model"
)

const orderColumns = `id, user_id, items, address, amount_minor, payment_method, payment, status, provider_ref, confirmation, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.insert(ctx, r.storage.pool, order)
}

func (r *orderRepository) CreateAndClearCart(ctx context.Context, order *model.Order) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if err := r.insert(ctx, tx, order); err != nil {
			return err
		}
		return clearCart(ctx, tx, order.UserID)
	})
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *orderRepository) insert(ctx context.Context, db queryRower, order *model.Order) error {
	const query = `INSERT INTO orders (id, user_id, items, address, amount_minor, payment_method, payment, status, provider_ref)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                   RETURNING created_at, updated_at`

	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	address, err := json.Marshal(order.Address)
	if err != nil {
		return fmt.Errorf("encode address: %w", err)
	}

	err = db.QueryRow(ctx, query,
		order.ID, order.UserID, items, address, model.ToMinor(order.Amount),
		string(order.PaymentMethod), order.Payment, order.Status, order.ProviderRef,
	).Scan(&order.Date, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *orderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) SetProviderRef(ctx context.Context, id uuid.UUID, ref string) error {
	const query = `UPDATE orders SET provider_ref=$2, updated_at=NOW() WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id, ref)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, id uuid.UUID, confirmation *model.Confirmation) (bool, error) {
	const update = `UPDATE orders SET payment=true, confirmation=$2, updated_at=NOW()
                    WHERE id=$1 AND payment=false
                    RETURNING user_id`

	var meta []byte
	if confirmation != nil {
		encoded, err := json.Marshal(confirmation)
		if err != nil {
			return false, fmt.Errorf("encode confirmation: %w", err)
		}
		meta = encoded
	}

	var marked bool
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var userID int64
		if err := tx.QueryRow(ctx, update, id, meta).Scan(&userID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		if err := clearCart(ctx, tx, userID); err != nil {
			return err
		}
		marked = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return marked, nil
}

func (r *orderRepository) DeletePending(ctx context.Context, id uuid.UUID) (bool, error) {
	const query = `DELETE FROM orders WHERE id=$1 AND payment=false`
	tag, err := r.storage.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	const query = `UPDATE orders SET status=$2, updated_at=NOW() WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) TouchPending(ctx context.Context, id uuid.UUID) (bool, error) {
	const query = `UPDATE orders SET updated_at=NOW() WHERE id=$1 AND payment=false`
	tag, err := r.storage.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *orderRepository) SelectStalePending(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	const query = `SELECT id FROM orders
                   WHERE payment=false AND payment_method <> 'COD' AND updated_at < $1
                   ORDER BY updated_at
                   LIMIT $2`

	rows, err := r.storage.pool.Query(ctx, query, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("decode order id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *orderRepository) DeleteStale(ctx context.Context, id uuid.UUID, before time.Time) (bool, error) {
	const query = `DELETE FROM orders
                   WHERE id=$1 AND payment=false AND payment_method <> 'COD' AND updated_at < $2`
	tag, err := r.storage.pool.Exec(ctx, query, id, before)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		order        model.Order
		rawID        string
		items        []byte
		address      []byte
		amountMinor  int64
		method       string
		confirmation []byte
	)
	err := row.Scan(&rawID, &order.UserID, &items, &address, &amountMinor, &method,
		&order.Payment, &order.Status, &order.ProviderRef, &confirmation, &order.Date, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("decode order id: %w", err)
	}
	order.ID = id

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if len(address) > 0 {
		if err := json.Unmarshal(address, &order.Address); err != nil {
			return nil, fmt.Errorf("decode address: %w", err)
		}
	}
	if len(confirmation) > 0 {
		order.Confirmation = &model.Confirmation{}
		if err := json.Unmarshal(confirmation, order.Confirmation); err != nil {
			return nil, fmt.Errorf("decode confirmation: %w", err)
		}
	}
	order.Amount = model.FromMinor(amountMinor)
	order.PaymentMethod = model.PaymentMethod(method)
	if order.Items == nil {
		order.Items = []model.OrderItem{}
	}
	return &order, nil
}
