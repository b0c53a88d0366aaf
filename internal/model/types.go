package model

import "time"

// CartStatus is the lifecycle state of a daily cart.
type CartStatus string

const (
	CartOpen   CartStatus = "OPEN"
	CartClosed CartStatus = "CLOSED"
)

// QuantityType distinguishes unit-counted items from weighed ones.
type QuantityType string

const (
	QuantityUnit   QuantityType = "UNIT"
	QuantityWeight QuantityType = "WEIGHT"
)

// Cart is one shopping cart per calendar date. At most one cart exists
// per date in the local store; the date is the upsert key.
//
// TotalCents and ItemsCount are derived aggregates and must always equal
// the sum and count of the cart's current items. Carts are never
// hard-deleted; close/reopen only flips Status and ClosedAt.
type Cart struct {
	ID         string     `json:"id"`
	Date       string     `json:"date"` // ISO calendar day, e.g. "2026-08-28"
	Status     CartStatus `json:"status"`
	Notes      string     `json:"notes,omitempty"`
	TotalCents int64      `json:"totalCents"`
	ItemsCount int        `json:"itemsCount"`
	CreatedAt  time.Time  `json:"createdAt"`
	ClosedAt   *time.Time `json:"closedAt,omitempty"`
}

// Aggregate computes a cart's derived totals from its items. Every
// mutation and merge must write these back so the stored cart never
// drifts from its item list.
func Aggregate(items []Item) (totalCents int64, count int) {
	for _, item := range items {
		totalCents += item.TotalCents
	}
	return totalCents, len(items)
}

// Item is a single cart line, exclusively owned by its cart.
//
// ClientUpdatedAt is stamped by the editing device and is the authority
// for conflict resolution; UpdatedAt is server-assigned and carried along
// for display only.
type Item struct {
	ID                  string       `json:"id"`
	CartID              string       `json:"cartId"`
	ProductName         string       `json:"productName"`
	ProductKey          string       `json:"productKey"`
	Category            string       `json:"category,omitempty"`
	Store               string       `json:"store,omitempty"`
	Brand               string       `json:"brand,omitempty"`
	QuantityThousandths int64        `json:"quantityThousandths"`
	QuantityType        QuantityType `json:"quantityType"`
	UnitPriceCents      int64        `json:"unitPriceCents"`
	TotalCents          int64        `json:"totalCents"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
	ClientUpdatedAt     time.Time    `json:"clientUpdatedAt"`
}
