package store

import (
	"context"
	"fmt"

	"carrinho/internal/model"
)

// SaveItems replaces the entire item list of a cart in one transaction.
// The caller passes the full desired state; partial edits are expressed
// as read-full-list, modify, SaveItems.
func (s *Store) SaveItems(ctx context.Context, cartID string, items []model.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save items: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE cart_id = ?`, cartID); err != nil {
		return fmt.Errorf("save items: clear cart %s: %w", cartID, err)
	}

	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO items
			(id, cart_id, product_name, product_key, category, store, brand,
			 quantity_thousandths, quantity_type, unit_price_cents, total_cents,
			 created_at, updated_at, client_updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			item.ID,
			cartID,
			item.ProductName,
			item.ProductKey,
			item.Category,
			item.Store,
			item.Brand,
			item.QuantityThousandths,
			string(item.QuantityType),
			item.UnitPriceCents,
			item.TotalCents,
			storeTime(item.CreatedAt),
			storeTime(item.UpdatedAt),
			storeTime(item.ClientUpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("save items: insert %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save items: commit: %w", err)
	}

	return nil
}

// ItemsByCart returns a cart's items in insertion order.
// Returns an empty slice, not nil, for an unknown cart.
func (s *Store) ItemsByCart(ctx context.Context, cartID string) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cart_id, product_name, product_key, category, store, brand,
		       quantity_thousandths, quantity_type, unit_price_cents, total_cents,
		       created_at, updated_at, client_updated_at
		FROM items
		WHERE cart_id = ?
		ORDER BY rowid ASC
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("query items for cart %s: %w", cartID, err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return items, nil
}

// AllItems returns every item grouped by owning cart id.
func (s *Store) AllItems(ctx context.Context) (map[string][]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cart_id, product_name, product_key, category, store, brand,
		       quantity_thousandths, quantity_type, unit_price_cents, total_cents,
		       created_at, updated_at, client_updated_at
		FROM items
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	byCart := map[string][]model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		byCart[item.CartID] = append(byCart[item.CartID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return byCart, nil
}

func scanItem(r rowScanner) (model.Item, error) {
	var (
		item          model.Item
		quantityType  string
		createdAt     string
		updatedAt     string
		clientUpdated string
	)
	err := r.Scan(
		&item.ID, &item.CartID, &item.ProductName, &item.ProductKey,
		&item.Category, &item.Store, &item.Brand,
		&item.QuantityThousandths, &quantityType, &item.UnitPriceCents, &item.TotalCents,
		&createdAt, &updatedAt, &clientUpdated,
	)
	if err != nil {
		return model.Item{}, err
	}

	item.QuantityType = model.QuantityType(quantityType)

	if item.CreatedAt, err = parseStoreTime(createdAt); err != nil {
		return model.Item{}, err
	}
	if item.UpdatedAt, err = parseStoreTime(updatedAt); err != nil {
		return model.Item{}, err
	}
	if item.ClientUpdatedAt, err = parseStoreTime(clientUpdated); err != nil {
		return model.Item{}, err
	}

	return item, nil
}
