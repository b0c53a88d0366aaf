// Package remote is the client for the hosted relational store.
//
// The backend exposes three collections over a PostgREST-style API:
// carts and items (upsertable by id), and the insert-only price_history.
// All payloads use the snake_case wire rows from the model package.
//
// Every mutating call is idempotent under retry: upserts are keyed by
// id (on_conflict=id), deletes and updates filter by id. The sync
// engine's at-least-once delivery depends on this.
package remote

import (
	"context"

	"carrinho/internal/model"
)

// Client is the remote store collaborator the sync engine drains into.
// Implemented by HTTPClient in production and by in-memory fakes in
// tests.
type Client interface {
	// UpsertCart creates or replaces a cart row, conflict-keyed by id.
	UpsertCart(ctx context.Context, row model.CartRow) error

	// UpsertItem creates or replaces an item row, conflict-keyed by id.
	UpsertItem(ctx context.Context, row model.ItemRow) error

	// InsertPriceHistory appends one price observation. Insert-only.
	InsertPriceHistory(ctx context.Context, row model.PriceHistoryRow) error

	// DeleteItem removes the item row with the given id. Deleting an
	// absent id is not an error.
	DeleteItem(ctx context.Context, id string) error

	// UpdateCart patches the cart row with the given id (close/reopen).
	UpdateCart(ctx context.Context, id string, patch model.CartPatch) error

	// SelectItems returns all item rows belonging to a cart.
	SelectItems(ctx context.Context, cartID string) ([]model.ItemRow, error)
}
