// Package model defines the domain types of the carrinho core.
//
// Local types (Cart, Item) use camelCase JSON naming and are what the
// durable store persists. Wire rows (CartRow, ItemRow, PriceHistoryRow)
// use the remote store's snake_case naming; outbox payloads are built
// from wire rows at enqueue time so a queued op is replayable as-is.
//
// # Quantities and money
//
// Quantities are integers in thousandths of a unit (1.5 kg = 1500) to
// avoid floating-point error; prices and totals are integer cents.
// Item.TotalCents is always recomputed from unit price and quantity on
// every mutation, never stored stale.
//
// # Outbox ops
//
// Op is a tagged variant: one concrete Payload type per op kind. The
// sync engine dispatches with a type switch over Payload, so adding an
// op kind without handling it is caught at review time rather than at
// runtime through an untyped map.
package model
