package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"carrinho/internal/model"
)

// SaveCart upserts a cart by its date key. The date is the identity
// within the local store: saving a cart for an existing date replaces
// that row, preserving at most one cart per date.
func (s *Store) SaveCart(ctx context.Context, cart model.Cart) error {
	var closedAt sql.NullString
	if cart.ClosedAt != nil {
		closedAt = sql.NullString{String: storeTime(*cart.ClosedAt), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO carts (id, date, status, notes, total_cents, items_count, created_at, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			id = excluded.id,
			status = excluded.status,
			notes = excluded.notes,
			total_cents = excluded.total_cents,
			items_count = excluded.items_count,
			created_at = excluded.created_at,
			closed_at = excluded.closed_at
	`,
		cart.ID,
		cart.Date,
		string(cart.Status),
		cart.Notes,
		cart.TotalCents,
		cart.ItemsCount,
		storeTime(cart.CreatedAt),
		closedAt,
	)
	if err != nil {
		return fmt.Errorf("save cart %s: %w", cart.Date, err)
	}

	return nil
}

// CartByDate returns the cart for a calendar date, or nil if absent.
func (s *Store) CartByDate(ctx context.Context, date string) (*model.Cart, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, date, status, notes, total_cents, items_count, created_at, closed_at
		FROM carts
		WHERE date = ?
	`, date)

	cart, err := scanCart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart by date %s: %w", date, err)
	}
	return &cart, nil
}

// CartByID returns the cart with the given id, or nil if absent.
func (s *Store) CartByID(ctx context.Context, id string) (*model.Cart, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, date, status, notes, total_cents, items_count, created_at, closed_at
		FROM carts
		WHERE id = ?
	`, id)

	cart, err := scanCart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart by id %s: %w", id, err)
	}
	return &cart, nil
}

// AllCarts returns every cart ordered by date ascending.
// Returns an empty slice, not nil, when the table is empty.
func (s *Store) AllCarts(ctx context.Context) ([]model.Cart, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, status, notes, total_cents, items_count, created_at, closed_at
		FROM carts
		ORDER BY date ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query carts: %w", err)
	}
	defer rows.Close()

	carts := []model.Cart{}
	for rows.Next() {
		cart, err := scanCart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart: %w", err)
		}
		carts = append(carts, cart)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate carts: %w", err)
	}

	return carts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCart(r rowScanner) (model.Cart, error) {
	var (
		cart      model.Cart
		status    string
		createdAt string
		closedAt  sql.NullString
	)
	if err := r.Scan(&cart.ID, &cart.Date, &status, &cart.Notes, &cart.TotalCents, &cart.ItemsCount, &createdAt, &closedAt); err != nil {
		return model.Cart{}, err
	}

	cart.Status = model.CartStatus(status)

	created, err := parseStoreTime(createdAt)
	if err != nil {
		return model.Cart{}, err
	}
	cart.CreatedAt = created

	if closedAt.Valid {
		closed, err := parseStoreTime(closedAt.String)
		if err != nil {
			return model.Cart{}, err
		}
		cart.ClosedAt = &closed
	}

	return cart, nil
}
