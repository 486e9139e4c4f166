package test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/beautymart/internal/domain/errors"
	"github.com/polkiloo/beautymart/internal/domain/model"
)

// UserRepositoryStub stores users and carts in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error

	mu sync.Mutex
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[email]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Name: name, Email: email, PasswordHash: passwordHash, Cart: model.Cart{}}
	s.Next++
	s.Users[email] = user
	s.ByID[user.ID] = user
	return user, nil
}

// Seed stores a user with the given cart and returns it.
func (s *UserRepositoryStub) Seed(id int64, cart model.Cart) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cart == nil {
		cart = model.Cart{}
	}
	user := &model.User{ID: id, Email: randomString(6, 10) + "@example.com", Cart: cart}
	s.Users[user.Email] = user
	s.ByID[id] = user
	if id >= s.Next {
		s.Next = id + 1
	}
	return user
}

// GetByEmail fetches user by email or returns not found.
func (s *UserRepositoryStub) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[email]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetCart returns a copy of the stored cart.
func (s *UserRepositoryStub) GetCart(ctx context.Context, userID int64) (model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := s.lookup(userID)
	if err != nil {
		return nil, err
	}
	return copyCart(user.Cart), nil
}

// AddCartItem increments the product quantity by one.
func (s *UserRepositoryStub) AddCartItem(ctx context.Context, userID int64, productID string) (model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := s.lookup(userID)
	if err != nil {
		return nil, err
	}
	user.Cart[productID]++
	return copyCart(user.Cart), nil
}

// SetCartItem sets quantity, removing the product when quantity is not positive.
func (s *UserRepositoryStub) SetCartItem(ctx context.Context, userID int64, productID string, quantity int) (model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := s.lookup(userID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		delete(user.Cart, productID)
	} else {
		user.Cart[productID] = quantity
	}
	return copyCart(user.Cart), nil
}

// ClearCart empties the stored cart.
func (s *UserRepositoryStub) ClearCart(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := s.lookup(userID)
	if err != nil {
		return err
	}
	user.Cart = model.Cart{}
	return nil
}

// CartOf returns the current cart of a user without error handling.
func (s *UserRepositoryStub) CartOf(userID int64) model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.ByID[userID]; ok {
		return copyCart(user.Cart)
	}
	return nil
}

func (s *UserRepositoryStub) lookup(userID int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	user, ok := s.ByID[userID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if user.Cart == nil {
		user.Cart = model.Cart{}
	}
	return user, nil
}

func copyCart(cart model.Cart) model.Cart {
	out := make(model.Cart, len(cart))
	for k, v := range cart {
		out[k] = v
	}
	return out
}

// OrderRepositoryStub keeps orders in memory and mirrors the transactional
// cart clearing of the real store through Users.
type OrderRepositoryStub struct {
	Users *UserRepositoryStub

	CreateFn             func(context.Context, *model.Order) error
	GetByIDFn            func(context.Context, uuid.UUID) (*model.Order, error)
	SetProviderRefFn     func(context.Context, uuid.UUID, string) error
	MarkPaidFn           func(context.Context, uuid.UUID, *model.Confirmation) (bool, error)
	DeletePendingFn      func(context.Context, uuid.UUID) (bool, error)
	UpdateStatusFn       func(context.Context, uuid.UUID, string) error
	TouchPendingFn       func(context.Context, uuid.UUID) (bool, error)
	SelectStalePendingFn func(context.Context, time.Time, int) ([]uuid.UUID, error)
	ListErr              error

	Orders  map[uuid.UUID]*model.Order
	Deleted []uuid.UUID

	mu sync.Mutex
}

// NewOrderRepositoryStub constructs an empty order stub sharing users.
func NewOrderRepositoryStub(users *UserRepositoryStub) *OrderRepositoryStub {
	return &OrderRepositoryStub{Users: users, Orders: make(map[uuid.UUID]*model.Order)}
}

// Create stores a copy of order.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) error {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	s.put(order)
	return nil
}

// CreateAndClearCart stores order and empties the owner's cart.
func (s *OrderRepositoryStub) CreateAndClearCart(ctx context.Context, order *model.Order) error {
	if s.CreateFn != nil {
		if err := s.CreateFn(ctx, order); err != nil {
			return err
		}
	} else {
		s.put(order)
	}
	if s.Users != nil {
		return s.Users.ClearCart(ctx, order.UserID)
	}
	return nil
}

// Put seeds an order directly.
func (s *OrderRepositoryStub) Put(order *model.Order) {
	s.put(order)
}

func (s *OrderRepositoryStub) put(order *model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Orders == nil {
		s.Orders = make(map[uuid.UUID]*model.Order)
	}
	stored := *order
	s.Orders[order.ID] = &stored
}

// GetByID returns a copy of a stored order.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := *order
	return &out, nil
}

// ListByUser returns the user's orders, newest first.
func (s *OrderRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return s.list(func(o *model.Order) bool { return o.UserID == userID })
}

// ListAll returns every stored order, newest first.
func (s *OrderRepositoryStub) ListAll(ctx context.Context) ([]model.Order, error) {
	return s.list(func(*model.Order) bool { return true })
}

func (s *OrderRepositoryStub) list(match func(*model.Order) bool) ([]model.Order, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Order, 0, len(s.Orders))
	for _, o := range s.Orders {
		if match(o) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// SetProviderRef records the provider handle.
func (s *OrderRepositoryStub) SetProviderRef(ctx context.Context, id uuid.UUID, ref string) error {
	if s.SetProviderRefFn != nil {
		return s.SetProviderRefFn(ctx, id, ref)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	order.ProviderRef = ref
	return nil
}

// MarkPaid flips payment on an unpaid order and clears the owner's cart.
func (s *OrderRepositoryStub) MarkPaid(ctx context.Context, id uuid.UUID, confirmation *model.Confirmation) (bool, error) {
	if s.MarkPaidFn != nil {
		return s.MarkPaidFn(ctx, id, confirmation)
	}
	s.mu.Lock()
	order, ok := s.Orders[id]
	if !ok || order.Payment {
		s.mu.Unlock()
		return false, nil
	}
	order.Payment = true
	order.Confirmation = confirmation
	userID := order.UserID
	s.mu.Unlock()

	if s.Users != nil {
		if err := s.Users.ClearCart(ctx, userID); err != nil {
			return false, err
		}
	}
	return true, nil
}

// DeletePending removes an unpaid order.
func (s *OrderRepositoryStub) DeletePending(ctx context.Context, id uuid.UUID) (bool, error) {
	if s.DeletePendingFn != nil {
		return s.DeletePendingFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[id]
	if !ok || order.Payment {
		return false, nil
	}
	delete(s.Orders, id)
	s.Deleted = append(s.Deleted, id)
	return true, nil
}

// UpdateStatus sets the fulfilment status.
func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, id, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	order.Status = status
	return nil
}

// TouchPending marks an unpaid order as recently active.
func (s *OrderRepositoryStub) TouchPending(ctx context.Context, id uuid.UUID) (bool, error) {
	if s.TouchPendingFn != nil {
		return s.TouchPendingFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[id]
	if !ok || order.Payment {
		return false, nil
	}
	order.UpdatedAt = time.Now()
	return true, nil
}

// SelectStalePending lists unpaid gateway orders untouched since the cutoff.
func (s *OrderRepositoryStub) SelectStalePending(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	if s.SelectStalePendingFn != nil {
		return s.SelectStalePendingFn(ctx, before, limit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for id, o := range s.Orders {
		if o.Pending() && lastActivity(o).Before(before) {
			ids = append(ids, id)
			if len(ids) == limit {
				break
			}
		}
	}
	return ids, nil
}

// DeleteStale removes an unpaid gateway order untouched since the cutoff.
func (s *OrderRepositoryStub) DeleteStale(ctx context.Context, id uuid.UUID, before time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[id]
	if !ok || !order.Pending() || !lastActivity(order).Before(before) {
		return false, nil
	}
	delete(s.Orders, id)
	s.Deleted = append(s.Deleted, id)
	return true, nil
}

func lastActivity(o *model.Order) time.Time {
	if o.UpdatedAt.After(o.Date) {
		return o.UpdatedAt
	}
	return o.Date
}

// Len reports the number of stored orders.
func (s *OrderRepositoryStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Orders)
}
