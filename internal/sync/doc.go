// Package sync drains the outbox against the remote store and
// reconciles local state with authoritative server rows.
//
// # Pass discipline
//
// A sync pass reads one queue snapshot, applies ops strictly in order,
// halts on the first failure, and consumes exactly the applied prefix.
// Passes never overlap: the engine holds a mutex for the duration of a
// pass, and the Run loop coalesces triggers through a buffered signal
// channel. Overlapping passes would break Consume's head-count
// semantics. This serialization is a required invariant of the whole
// outbox design, not an optimization.
//
// # Delivery guarantee
//
// At-least-once per op: a crash between a remote write succeeding and
// the consume leaves the op queued, and it is retried on the next pass.
// Every remote operation is therefore keyed by stable identity
// (upsert-by-id, delete-by-id) so a retry converges instead of
// duplicating.
//
// # Conflict resolution
//
// Item upserts pull back the cart's full server-side item set and merge
// it with a last-writer-wins rule keyed by the client-assigned
// modification timestamp, not wall-clock arrival order, which is what
// lets the same op apply twice without double-merging. Ties keep the
// local row. Reconciliation is two-way: rows that exist only on the
// server (another device's adds) are materialized locally.
//
// # Retry policy
//
// The default policy retries forever with exponential backoff between
// failing passes, matching the behavior users expect from an offline
// queue: nothing is dropped. A bounded policy with dead-lettering can
// be configured so a permanently-failing op cannot stall everything
// queued behind it.
package sync
