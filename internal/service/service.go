// Package service exposes the cart operations the UI layer calls. It
// owns the single-writer discipline: every mutation takes the service
// mutex, writes the local store, then enqueues the matching outbox op.
// Local state is authoritative the moment a call returns; delivery to
// the remote store is the sync engine's problem.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"carrinho/internal/model"
	"carrinho/internal/outbox"
	"carrinho/internal/store"
)

var (
	// ErrCartNotFound is returned for an unknown cart id.
	ErrCartNotFound = errors.New("cart not found")
	// ErrItemNotFound is returned for an unknown item id.
	ErrItemNotFound = errors.New("item not found")
	// ErrCartClosed rejects item mutations on a closed cart.
	ErrCartClosed = errors.New("cart is closed")
)

// Service is the mutation surface over the local store and outbox.
type Service struct {
	mu     sync.Mutex
	store  *store.Store
	queue  *outbox.Queue
	now    func() time.Time
	newID  func() string
	notify func()
}

// Option adjusts a Service; used by tests to pin time and ids.
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs replaces the id generator.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithNotify registers a callback fired after every enqueued op,
// normally the sync engine's Notify.
func WithNotify(fn func()) Option {
	return func(s *Service) { s.notify = fn }
}

// New builds a service over the store and queue. Ids default to UUIDv7
// so they sort by creation time, which keeps listings stable.
func New(st *store.Store, queue *outbox.Queue, opts ...Option) *Service {
	s := &Service{
		store: st,
		queue: queue,
		now:   time.Now,
		newID: func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenDay returns the cart for a calendar date, creating an empty OPEN
// cart if none exists yet. Only creation enqueues an op.
func (s *Service) OpenDay(ctx context.Context, date string) (model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.CartByDate(ctx, date)
	if err != nil {
		return model.Cart{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	cart := model.Cart{
		ID:        s.newID(),
		Date:      date,
		Status:    model.CartOpen,
		CreatedAt: s.now(),
	}
	if err := s.store.SaveCart(ctx, cart); err != nil {
		return model.Cart{}, err
	}
	if err := s.enqueue(ctx, model.UpsertCart(model.CartToRow(cart))); err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// Cart returns a cart with its items.
func (s *Service) Cart(ctx context.Context, cartID string) (model.Cart, []model.Item, error) {
	cart, err := s.store.CartByID(ctx, cartID)
	if err != nil {
		return model.Cart{}, nil, err
	}
	if cart == nil {
		return model.Cart{}, nil, fmt.Errorf("%w: %s", ErrCartNotFound, cartID)
	}
	items, err := s.store.ItemsByCart(ctx, cartID)
	if err != nil {
		return model.Cart{}, nil, err
	}
	return *cart, items, nil
}

// CloseCart marks a cart CLOSED and stamps closedAt. Closing a cart
// that is already closed is a no-op.
func (s *Service) CloseCart(ctx context.Context, cartID string) (model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.mutableCart(ctx, cartID)
	if err != nil {
		return model.Cart{}, err
	}
	if cart.Status == model.CartClosed {
		return *cart, nil
	}

	closedAt := s.now()
	cart.Status = model.CartClosed
	cart.ClosedAt = &closedAt
	if err := s.store.SaveCart(ctx, *cart); err != nil {
		return model.Cart{}, err
	}

	wireClosed := model.FormatWireTime(closedAt)
	patch := model.CartPatch{ID: cart.ID, Status: model.CartClosed, ClosedAt: &wireClosed}
	if err := s.enqueue(ctx, model.CloseCart(patch)); err != nil {
		return model.Cart{}, err
	}
	return *cart, nil
}

// ReopenCart flips a closed cart back to OPEN, clearing closedAt.
// Reopening an open cart is a no-op.
func (s *Service) ReopenCart(ctx context.Context, cartID string) (model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.mutableCart(ctx, cartID)
	if err != nil {
		return model.Cart{}, err
	}
	if cart.Status == model.CartOpen {
		return *cart, nil
	}

	cart.Status = model.CartOpen
	cart.ClosedAt = nil
	if err := s.store.SaveCart(ctx, *cart); err != nil {
		return model.Cart{}, err
	}

	// ClosedAt stays nil in the patch: the wire form serializes it as an
	// explicit null so the remote column is cleared.
	patch := model.CartPatch{ID: cart.ID, Status: model.CartOpen}
	if err := s.enqueue(ctx, model.ReopenCart(patch)); err != nil {
		return model.Cart{}, err
	}
	return *cart, nil
}

func (s *Service) mutableCart(ctx context.Context, cartID string) (*model.Cart, error) {
	cart, err := s.store.CartByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, fmt.Errorf("%w: %s", ErrCartNotFound, cartID)
	}
	return cart, nil
}

// refreshAggregates rewrites the cart's derived totals from its current
// item list.
func (s *Service) refreshAggregates(ctx context.Context, cart *model.Cart, items []model.Item) error {
	total, count := model.Aggregate(items)
	cart.TotalCents = total
	cart.ItemsCount = count
	return s.store.SaveCart(ctx, *cart)
}

func (s *Service) enqueue(ctx context.Context, payload model.Payload) error {
	op := model.NewOp(s.newID(), s.now(), payload)
	if err := s.queue.Enqueue(ctx, op); err != nil {
		return err
	}
	if s.notify != nil {
		s.notify()
	}
	return nil
}
