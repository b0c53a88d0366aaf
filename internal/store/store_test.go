package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"carrinho/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testCart(date string) model.Cart {
	return model.Cart{
		ID:        "cart-" + date,
		Date:      date,
		Status:    model.CartOpen,
		CreatedAt: time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC),
	}
}

func testItem(id, cartID string) model.Item {
	ts := time.Date(2026, 8, 28, 8, 30, 0, 0, time.UTC)
	return model.Item{
		ID:                  id,
		CartID:              cartID,
		ProductName:         "Café",
		ProductKey:          "cafe",
		Brand:               "Pilão",
		QuantityThousandths: 1500,
		QuantityType:        model.QuantityWeight,
		UnitPriceCents:      1290,
		TotalCents:          1935,
		CreatedAt:           ts,
		UpdatedAt:           ts,
		ClientUpdatedAt:     ts,
	}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	tables := []string{"carts", "items", "outbox", "dead_letters"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	if err := s1.SaveCart(ctx, testCart("2026-08-28")); err != nil {
		t.Fatalf("SaveCart() failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	cart, err := s2.CartByDate(ctx, "2026-08-28")
	if err != nil {
		t.Fatalf("CartByDate() failed: %v", err)
	}
	if cart == nil {
		t.Fatal("cart did not survive reopen")
	}
	if cart.ID != "cart-2026-08-28" {
		t.Errorf("cart id = %q, want %q", cart.ID, "cart-2026-08-28")
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}
