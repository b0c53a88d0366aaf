// Package store provides the SQLite-backed local durable store.
//
// Three logical tables back the offline core: carts (one row per
// calendar date, date UNIQUE), items (lines keyed by owning cart), and
// the outbox (pending remote mutations, strictly rowid-ordered). A
// fourth table, dead_letters, receives outbox entries evicted by the
// sync retry policy.
//
// # Write discipline
//
// The store itself takes no table locks beyond SQLite's own. Callers
// must serialize read-modify-write sequences on the same logical key
// (a cart, a cart's item list, the outbox): SaveItems replaces a cart's
// whole item list, so two interleaved mutations would lose the first
// write. The service layer and the sync engine each hold their own
// mutex for this reason.
//
// # Durability
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
//   - single connection: SQLite allows one writer at a time
//
// Every logical save is a single statement or transaction, so a failed
// write leaves the previous state intact. Write failures (disk full,
// locked beyond timeout) propagate to the caller unrecovered.
//
// Timestamps are stored as RFC 3339 UTC TEXT. The outbox payload column
// is opaque JSON; the store never inspects op payloads.
package store
