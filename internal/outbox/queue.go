// Package outbox is the ordered log of pending remote mutations.
//
// The queue is built atop the local durable store and inherits its
// durability: an op enqueued before a crash is still queued after
// restart. Ops are immutable once enqueued and are consumed strictly in
// FIFO order as a prefix: no reordering, no random removal.
//
// Consume(n) removes the first n entries and assumes entries 0..n-1 of
// the snapshot read earlier in the same sync pass are exactly the ones
// being removed. Entries appended concurrently (a user edit during an
// in-flight sync) land beyond position n and survive, because removal
// is by count from the head, not by identity. This is safe only because
// sync passes are serialized; see the sync package.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carrinho/internal/model"
	"carrinho/internal/store"
)

// Entry is one queued op together with its delivery bookkeeping.
type Entry struct {
	Op       model.Op
	Attempts int
}

// Queue is the typed outbox over the durable store.
type Queue struct {
	store *store.Store
}

// New wraps a store's outbox table in a typed queue.
func New(s *store.Store) *Queue {
	return &Queue{store: s}
}

// Enqueue appends an op to the tail. Fails only if the underlying store
// write fails; that error propagates unrecovered.
func (q *Queue) Enqueue(ctx context.Context, op model.Op) error {
	payload, err := json.Marshal(op.Payload)
	if err != nil {
		return fmt.Errorf("enqueue %s: marshal payload: %w", op.ID, err)
	}
	return q.store.AppendOutbox(ctx, store.OutboxRecord{
		ID:        op.ID,
		Type:      string(op.Type),
		Payload:   payload,
		CreatedAt: op.CreatedAt,
	})
}

// List returns the full ordered queue snapshot with payloads decoded
// into their typed form. A payload that no longer decodes is an error:
// the sync engine must not start a pass over ops it cannot dispatch.
func (q *Queue) List(ctx context.Context) ([]Entry, error) {
	records, err := q.store.ListOutbox(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		payload, err := model.DecodePayload(model.OpType(rec.Type), rec.Payload)
		if err != nil {
			return nil, fmt.Errorf("outbox entry %s: %w", rec.ID, err)
		}
		entries = append(entries, Entry{
			Op: model.Op{
				ID:        rec.ID,
				Type:      model.OpType(rec.Type),
				CreatedAt: rec.CreatedAt,
				Payload:   payload,
			},
			Attempts: rec.Attempts,
		})
	}

	return entries, nil
}

// Consume removes the first n entries from the head.
func (q *Queue) Consume(ctx context.Context, n int) error {
	return q.store.ConsumeOutbox(ctx, n)
}

// Depth returns the number of queued ops.
func (q *Queue) Depth(ctx context.Context) (int, error) {
	return q.store.OutboxDepth(ctx)
}

// BumpAttempts records a failed delivery attempt and returns the new
// attempt count.
func (q *Queue) BumpAttempts(ctx context.Context, opID string) (int, error) {
	return q.store.BumpOutboxAttempts(ctx, opID)
}

// DeadLetter evicts a permanently-failing op so it stops blocking the
// queue. The op is preserved in the dead-letter table for inspection.
func (q *Queue) DeadLetter(ctx context.Context, opID, reason string, deadAt time.Time) error {
	return q.store.DeadLetterOutbox(ctx, opID, reason, deadAt)
}

// DeadLetters returns evicted ops, oldest first.
func (q *Queue) DeadLetters(ctx context.Context) ([]store.DeadLetterRecord, error) {
	return q.store.ListDeadLetters(ctx)
}
