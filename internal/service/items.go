package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"carrinho/internal/model"
)

// ErrEmptyProductName rejects items without a product name.
var ErrEmptyProductName = errors.New("product name is required")

// ItemInput is the raw form input for adding or editing an item. Price
// and Quantity arrive as the user typed them ("12,90", "1,5") and are
// parsed with the forgiving pt-BR rules in the model package.
type ItemInput struct {
	ProductName  string
	Category     string
	Store        string
	Brand        string
	Price        string
	Quantity     string
	QuantityType model.QuantityType
}

// AddItem appends a new item to an open cart and queues its upsert.
// The new item is prepended so the most recent entry lists first.
func (s *Service) AddItem(ctx context.Context, cartID string, in ItemInput) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, items, err := s.openCartWithItems(ctx, cartID)
	if err != nil {
		return model.Item{}, err
	}

	item, err := s.buildItem(cartID, in)
	if err != nil {
		return model.Item{}, err
	}

	items = append([]model.Item{item}, items...)
	if err := s.persistItems(ctx, cart, items); err != nil {
		return model.Item{}, err
	}
	if err := s.enqueue(ctx, model.UpsertItem(model.ItemToRow(item, cart.Date))); err != nil {
		return model.Item{}, err
	}
	return item, nil
}

// UpdateItem replaces an item's editable fields, restamps its client
// timestamp, and queues the upsert.
func (s *Service) UpdateItem(ctx context.Context, cartID, itemID string, in ItemInput) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, items, err := s.openCartWithItems(ctx, cartID)
	if err != nil {
		return model.Item{}, err
	}

	idx := indexOf(items, itemID)
	if idx < 0 {
		return model.Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	updated, err := s.buildItem(cartID, in)
	if err != nil {
		return model.Item{}, err
	}
	updated.ID = items[idx].ID
	updated.CreatedAt = items[idx].CreatedAt
	items[idx] = updated

	if err := s.persistItems(ctx, cart, items); err != nil {
		return model.Item{}, err
	}
	if err := s.enqueue(ctx, model.UpsertItem(model.ItemToRow(updated, cart.Date))); err != nil {
		return model.Item{}, err
	}
	return updated, nil
}

// DeleteItem removes an item and queues the remote delete. The removed
// item is returned so the caller can offer undo.
func (s *Service) DeleteItem(ctx context.Context, cartID, itemID string) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, items, err := s.openCartWithItems(ctx, cartID)
	if err != nil {
		return model.Item{}, err
	}

	idx := indexOf(items, itemID)
	if idx < 0 {
		return model.Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	removed := items[idx]
	items = append(items[:idx], items[idx+1:]...)

	if err := s.persistItems(ctx, cart, items); err != nil {
		return model.Item{}, err
	}
	if err := s.enqueue(ctx, model.DeleteItem{ID: removed.ID}); err != nil {
		return model.Item{}, err
	}
	return removed, nil
}

// DuplicateItem re-adds a copy of an existing item with a fresh id and
// fresh timestamps.
func (s *Service) DuplicateItem(ctx context.Context, cartID, itemID string) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, items, err := s.openCartWithItems(ctx, cartID)
	if err != nil {
		return model.Item{}, err
	}

	idx := indexOf(items, itemID)
	if idx < 0 {
		return model.Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	copied := items[idx]
	copied.ID = s.newID()
	now := s.now()
	copied.CreatedAt = now
	copied.UpdatedAt = now
	copied.ClientUpdatedAt = now

	items = append([]model.Item{copied}, items...)
	if err := s.persistItems(ctx, cart, items); err != nil {
		return model.Item{}, err
	}
	if err := s.enqueue(ctx, model.UpsertItem(model.ItemToRow(copied, cart.Date))); err != nil {
		return model.Item{}, err
	}
	return copied, nil
}

func (s *Service) openCartWithItems(ctx context.Context, cartID string) (*model.Cart, []model.Item, error) {
	cart, err := s.mutableCart(ctx, cartID)
	if err != nil {
		return nil, nil, err
	}
	if cart.Status == model.CartClosed {
		return nil, nil, fmt.Errorf("%w: %s", ErrCartClosed, cart.Date)
	}
	items, err := s.store.ItemsByCart(ctx, cartID)
	if err != nil {
		return nil, nil, err
	}
	return cart, items, nil
}

func (s *Service) buildItem(cartID string, in ItemInput) (model.Item, error) {
	name := strings.TrimSpace(in.ProductName)
	if name == "" {
		return model.Item{}, ErrEmptyProductName
	}

	qtyType := in.QuantityType
	if qtyType == "" {
		qtyType = model.QuantityUnit
	}
	quantity := model.ParseQuantityToThousandths(in.Quantity)
	if quantity == 0 {
		quantity = 1000
	}
	price := model.ParseMoneyToCents(in.Price)

	now := s.now()
	return model.Item{
		ID:                  s.newID(),
		CartID:              cartID,
		ProductName:         name,
		ProductKey:          model.ProductKey(name, in.Brand),
		Category:            strings.TrimSpace(in.Category),
		Store:               strings.TrimSpace(in.Store),
		Brand:               strings.TrimSpace(in.Brand),
		QuantityThousandths: quantity,
		QuantityType:        qtyType,
		UnitPriceCents:      price,
		TotalCents:          model.CalculateTotalCents(price, quantity),
		CreatedAt:           now,
		UpdatedAt:           now,
		ClientUpdatedAt:     now,
	}, nil
}

func (s *Service) persistItems(ctx context.Context, cart *model.Cart, items []model.Item) error {
	if err := s.store.SaveItems(ctx, cart.ID, items); err != nil {
		return err
	}
	return s.refreshAggregates(ctx, cart, items)
}

func indexOf(items []model.Item, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
