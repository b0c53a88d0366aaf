package model

import (
	"fmt"
	"time"
)

// Wire rows mirror the remote store's snake_case schema. Timestamps are
// RFC 3339 strings on the wire; quantity is a decimal number with three
// fractional digits.

// CartRow is the remote `carts` row.
type CartRow struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id,omitempty"`
	Date       string     `json:"date"`
	Status     CartStatus `json:"status"`
	Notes      string     `json:"notes,omitempty"`
	TotalCents int64      `json:"total_cents"`
	ItemsCount int        `json:"items_count"`
}

// ItemRow is the remote `items` row. Date is the owning cart's date and
// rides along for price-history inserts.
type ItemRow struct {
	ID              string       `json:"id"`
	UserID          string       `json:"user_id,omitempty"`
	CartID          string       `json:"cart_id"`
	ProductName     string       `json:"product_name"`
	ProductKey      string       `json:"product_key"`
	Category        string       `json:"category,omitempty"`
	Store           string       `json:"store,omitempty"`
	Brand           string       `json:"brand,omitempty"`
	Quantity        float64      `json:"quantity"`
	QuantityType    QuantityType `json:"quantity_type"`
	UnitPriceCents  int64        `json:"unit_price_cents"`
	TotalCents      int64        `json:"total_cents"`
	Date            string       `json:"date,omitempty"`
	UpdatedAt       string       `json:"updated_at,omitempty"`
	ClientUpdatedAt string       `json:"client_updated_at"`
}

// CartPatch is the partial update sent for close/reopen. ClosedAt is a
// pointer so reopen can send an explicit null to clear the column.
type CartPatch struct {
	ID       string     `json:"id"`
	Status   CartStatus `json:"status"`
	ClosedAt *string    `json:"closed_at"`
}

// PriceHistoryRow is the insert-only remote `price_history` row, one per
// item upsert.
type PriceHistoryRow struct {
	UserID         string `json:"user_id,omitempty"`
	ProductKey     string `json:"product_key"`
	Date           string `json:"date"`
	Store          string `json:"store,omitempty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// CartToRow converts a local cart to its wire form. UserID is left
// empty; the sync engine stamps the session's user on delivery.
func CartToRow(cart Cart) CartRow {
	return CartRow{
		ID:         cart.ID,
		Date:       cart.Date,
		Status:     cart.Status,
		Notes:      cart.Notes,
		TotalCents: cart.TotalCents,
		ItemsCount: cart.ItemsCount,
	}
}

// ItemToRow converts a local item to its wire form. cartDate is the
// owning cart's date.
func ItemToRow(item Item, cartDate string) ItemRow {
	return ItemRow{
		ID:              item.ID,
		CartID:          item.CartID,
		ProductName:     item.ProductName,
		ProductKey:      item.ProductKey,
		Category:        item.Category,
		Store:           item.Store,
		Brand:           item.Brand,
		Quantity:        QuantityFromThousandths(item.QuantityThousandths),
		QuantityType:    item.QuantityType,
		UnitPriceCents:  item.UnitPriceCents,
		TotalCents:      item.TotalCents,
		Date:            cartDate,
		UpdatedAt:       formatWireTime(item.UpdatedAt),
		ClientUpdatedAt: formatWireTime(item.ClientUpdatedAt),
	}
}

// ItemFromRow converts a server row to a local item. Used by the
// conflict resolver when a row exists on the server but not locally.
func ItemFromRow(row ItemRow) (Item, error) {
	clientUpdated, err := ParseWireTime(row.ClientUpdatedAt)
	if err != nil {
		return Item{}, fmt.Errorf("item %s: client_updated_at: %w", row.ID, err)
	}
	updated := clientUpdated
	if row.UpdatedAt != "" {
		updated, err = ParseWireTime(row.UpdatedAt)
		if err != nil {
			return Item{}, fmt.Errorf("item %s: updated_at: %w", row.ID, err)
		}
	}
	return Item{
		ID:                  row.ID,
		CartID:              row.CartID,
		ProductName:         row.ProductName,
		ProductKey:          row.ProductKey,
		Category:            row.Category,
		Store:               row.Store,
		Brand:               row.Brand,
		QuantityThousandths: QuantityToThousandths(row.Quantity),
		QuantityType:        row.QuantityType,
		UnitPriceCents:      row.UnitPriceCents,
		TotalCents:          row.TotalCents,
		CreatedAt:           clientUpdated,
		UpdatedAt:           updated,
		ClientUpdatedAt:     clientUpdated,
	}, nil
}

// QuantityFromThousandths renders an internal quantity as the wire
// decimal (1500 -> 1.5).
func QuantityFromThousandths(th int64) float64 {
	return float64(th) / 1000
}

// QuantityToThousandths converts a wire decimal back to thousandths,
// rounding to the nearest thousandth.
func QuantityToThousandths(q float64) int64 {
	if q < 0 {
		return -int64(-q*1000 + 0.5)
	}
	return int64(q*1000 + 0.5)
}

// ParseWireTime parses an RFC 3339 timestamp from a remote row.
func ParseWireTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func formatWireTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// FormatWireTime renders a timestamp the way remote rows expect.
func FormatWireTime(t time.Time) string {
	return formatWireTime(t)
}
