package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domainErrors "github.com/polkiloo/beautymart/internal/domain/errors"
	"github.com/polkiloo/beautymart/internal/domain/model"
)

const userColumns = `id, name, email, password_hash, cart_data, created_at`

func (r *userRepository) Create(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	const query = `INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at`
	u := model.User{Name: name, Email: email, PasswordHash: passwordHash, Cart: model.Cart{}}
	err := r.storage.pool.QueryRow(ctx, query, name, email, passwordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.scanUser(r.storage.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.scanUser(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) scanUser(row pgx.Row) (*model.User, error) {
	var (
		u    model.User
		cart []byte
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &cart, &u.CreatedAt); err != nil {
		return nil, mapNoRows(err)
	}
	parsed, err := decodeCart(cart)
	if err != nil {
		return nil, err
	}
	u.Cart = parsed
	return &u, nil
}

func (r *userRepository) GetCart(ctx context.Context, userID int64) (model.Cart, error) {
	const query = `SELECT cart_data FROM users WHERE id=$1`
	return r.queryCart(ctx, query, userID)
}

func (r *userRepository) AddCartItem(ctx context.Context, userID int64, productID string) (model.Cart, error) {
	const query = `UPDATE users
                   SET cart_data = jsonb_set(cart_data, ARRAY[$2::text],
                       to_jsonb(COALESCE((cart_data->>$2::text)::int, 0) + 1))
                   WHERE id=$1
                   RETURNING cart_data`
	return r.queryCart(ctx, query, userID, productID)
}

func (r *userRepository) SetCartItem(ctx context.Context, userID int64, productID string, quantity int) (model.Cart, error) {
	if quantity <= 0 {
		const remove = `UPDATE users SET cart_data = cart_data - $2::text WHERE id=$1 RETURNING cart_data`
		return r.queryCart(ctx, remove, userID, productID)
	}
	const set = `UPDATE users
                 SET cart_data = jsonb_set(cart_data, ARRAY[$2::text], to_jsonb($3::int))
                 WHERE id=$1
                 RETURNING cart_data`
	return r.queryCart(ctx, set, userID, productID, quantity)
}

func (r *userRepository) ClearCart(ctx context.Context, userID int64) error {
	return clearCart(ctx, r.storage.pool, userID)
}

func (r *userRepository) queryCart(ctx context.Context, query string, args ...any) (model.Cart, error) {
	var raw []byte
	if err := r.storage.pool.QueryRow(ctx, query, args...).Scan(&raw); err != nil {
		return nil, mapNoRows(err)
	}
	return decodeCart(raw)
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func clearCart(ctx context.Context, db execer, userID int64) error {
	const query = `UPDATE users SET cart_data='{}'::jsonb WHERE id=$1`
	tag, err := db.Exec(ctx, query, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func decodeCart(raw []byte) (model.Cart, error) {
	cart := model.Cart{}
	if len(raw) == 0 {
		return cart, nil
	}
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return cart, nil
}
