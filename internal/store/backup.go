package store

import (
	"context"
	"fmt"

	"carrinho/internal/model"
)

// Snapshot is the local backup format: three top-level keys mirroring
// the store's logical tables. Produced by Export, consumed by Import.
type Snapshot struct {
	Carts  map[string]model.Cart   `json:"carts"`  // keyed by date
	Items  map[string][]model.Item `json:"items"`  // keyed by cart id
	Outbox []OutboxRecord          `json:"outbox"` // FIFO order
}

// Export returns a full snapshot of carts, items and the outbox.
func (s *Store) Export(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{
		Carts: map[string]model.Cart{},
	}

	carts, err := s.AllCarts(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("export: %w", err)
	}
	for _, cart := range carts {
		snap.Carts[cart.Date] = cart
	}

	if snap.Items, err = s.AllItems(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("export: %w", err)
	}

	if snap.Outbox, err = s.ListOutbox(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("export: %w", err)
	}

	return snap, nil
}

// Import wholesale-replaces the store contents with a snapshot.
//
// Missing keys are treated as empty collections rather than an error: a
// backup holding only {"carts": ...} imports cleanly with no items and
// an empty outbox. A partial backup is
// still worth restoring.
func (s *Store) Import(ctx context.Context, snap Snapshot) error {
	if err := s.Clear(ctx); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	for _, cart := range snap.Carts {
		if err := s.SaveCart(ctx, cart); err != nil {
			return fmt.Errorf("import: %w", err)
		}
	}

	for cartID, items := range snap.Items {
		if err := s.SaveItems(ctx, cartID, items); err != nil {
			return fmt.Errorf("import: %w", err)
		}
	}

	for _, rec := range snap.Outbox {
		rec.Seq = 0 // reassigned in list order
		if err := s.AppendOutbox(ctx, rec); err != nil {
			return fmt.Errorf("import: %w", err)
		}
	}

	return nil
}

// Clear wipes all tables, including dead letters. Used by the settings
// "clear local cache" action and as the first step of Import.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clear: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"carts", "items", "outbox", "dead_letters"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clear: commit: %w", err)
	}

	return nil
}
