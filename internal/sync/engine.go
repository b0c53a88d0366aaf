package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"carrinho/internal/model"
	"carrinho/internal/outbox"
	"carrinho/internal/remote"
	"carrinho/internal/session"
	"carrinho/internal/store"
)

// Engine drains the outbox against the remote store. One engine exists
// per process; its passes are serialized through passSem.
type Engine struct {
	local    *store.Store
	queue    *outbox.Queue
	client   remote.Client
	sessions *session.Manager
	conn     *session.Connectivity
	policy   Policy
	now      func() time.Time

	passSem chan struct{}
	signal  chan struct{}
}

// New builds an engine and subscribes it to session and connectivity
// changes, so signing in or coming back online triggers a pass.
func New(local *store.Store, queue *outbox.Queue, client remote.Client, sessions *session.Manager, conn *session.Connectivity, policy Policy) *Engine {
	e := &Engine{
		local:    local,
		queue:    queue,
		client:   client,
		sessions: sessions,
		conn:     conn,
		policy:   policy,
		now:      time.Now,
		passSem:  make(chan struct{}, 1),
		signal:   make(chan struct{}, 1),
	}

	sessions.Subscribe(func(s *session.Session) {
		if s != nil {
			e.Notify()
		}
	})
	conn.Subscribe(func(online bool) {
		if online {
			e.Notify()
		}
	})

	return e
}

// Notify requests a sync pass. Non-blocking; while a request is already
// pending further calls coalesce into it.
func (e *Engine) Notify() {
	select {
	case e.signal <- struct{}{}:
	default:
	}
}

// Run services Notify requests until the context is canceled. After a
// failing pass it re-arms itself and waits out the policy backoff
// before trying again.
func (e *Engine) Run(ctx context.Context) error {
	failures := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.signal:
		}

		if d := e.policy.BackoffFor(failures); d > 0 {
			t := time.NewTimer(d)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}

		if _, err := e.SyncOnce(ctx); err != nil {
			failures++
			slog.Error("sync pass failed", "failures", failures, "error", err)
			e.Notify()
		} else {
			failures = 0
		}
	}
}

// SyncOnce runs a single pass: snapshot the queue, apply ops in order,
// halt on the first failure, consume the applied prefix. Returns the
// number of ops applied and consumed.
//
// A pass already in flight, a missing session, or being offline all
// make this a no-op, not an error.
func (e *Engine) SyncOnce(ctx context.Context) (int, error) {
	select {
	case e.passSem <- struct{}{}:
	default:
		return 0, nil
	}
	defer func() { <-e.passSem }()

	sess := e.sessions.Current()
	if sess == nil || !e.conn.Online() {
		return 0, nil
	}

	entries, err := e.queue.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	applied := 0
	var failed *outbox.Entry
	var failErr error
	for i := range entries {
		if err := e.apply(ctx, sess, entries[i].Op); err != nil {
			failed = &entries[i]
			failErr = err
			break
		}
		applied++
	}

	// Consuming before handling the failure keeps the failed op at the
	// head, which the dead-letter path below relies on.
	if applied > 0 {
		if err := e.queue.Consume(ctx, applied); err != nil {
			return applied, fmt.Errorf("consume %d applied ops: %w", applied, err)
		}
	}

	if failed == nil {
		slog.Info("sync pass drained", "applied", applied)
		return applied, nil
	}

	attempts, err := e.queue.BumpAttempts(ctx, failed.Op.ID)
	if err != nil {
		return applied, errors.Join(failErr, err)
	}

	if e.policy.Exhausted(attempts) {
		if err := e.queue.DeadLetter(ctx, failed.Op.ID, failErr.Error(), e.now()); err != nil {
			return applied, errors.Join(failErr, err)
		}
		slog.Warn("outbox op dead-lettered",
			"op", failed.Op.ID, "type", failed.Op.Type, "attempts", attempts, "error", failErr)
		// The queue is unblocked; pick up whatever was behind the
		// evicted op on the next pass.
		e.Notify()
		return applied, nil
	}

	return applied, fmt.Errorf("apply op %s (%s): %w", failed.Op.ID, failed.Op.Type, failErr)
}

func (e *Engine) apply(ctx context.Context, sess *session.Session, op model.Op) error {
	switch p := op.Payload.(type) {
	case model.UpsertCart:
		row := model.CartRow(p)
		if row.UserID == "" {
			row.UserID = sess.UserID
		}
		return e.client.UpsertCart(ctx, row)
	case model.UpsertItem:
		return e.applyUpsertItem(ctx, sess, model.ItemRow(p))
	case model.DeleteItem:
		return e.client.DeleteItem(ctx, p.ID)
	case model.CloseCart:
		return e.client.UpdateCart(ctx, p.ID, model.CartPatch(p))
	case model.ReopenCart:
		return e.client.UpdateCart(ctx, p.ID, model.CartPatch(p))
	default:
		return fmt.Errorf("no dispatch for op type %q", op.Type)
	}
}

// applyUpsertItem is the one op with follow-up work: record the price
// observation, then pull the cart's server rows and merge them back.
// Price history is insert-only, so a retry after a partial failure can
// duplicate an observation; the history views tolerate that.
func (e *Engine) applyUpsertItem(ctx context.Context, sess *session.Session, row model.ItemRow) error {
	if row.UserID == "" {
		row.UserID = sess.UserID
	}
	if err := e.client.UpsertItem(ctx, row); err != nil {
		return err
	}

	hist := model.PriceHistoryRow{
		UserID:         sess.UserID,
		ProductKey:     row.ProductKey,
		Date:           row.Date,
		Store:          row.Store,
		UnitPriceCents: row.UnitPriceCents,
	}
	if err := e.client.InsertPriceHistory(ctx, hist); err != nil {
		return err
	}

	server, err := e.client.SelectItems(ctx, row.CartID)
	if err != nil {
		return err
	}
	return e.reconcileCart(ctx, row.CartID, server)
}

func (e *Engine) reconcileCart(ctx context.Context, cartID string, server []model.ItemRow) error {
	local, err := e.local.ItemsByCart(ctx, cartID)
	if err != nil {
		return err
	}

	merged := Reconcile(local, server)
	if err := e.local.SaveItems(ctx, cartID, merged); err != nil {
		return err
	}

	cart, err := e.local.CartByID(ctx, cartID)
	if err != nil || cart == nil {
		return err
	}
	total, count := model.Aggregate(merged)
	if cart.TotalCents == total && cart.ItemsCount == count {
		return nil
	}
	cart.TotalCents = total
	cart.ItemsCount = count
	return e.local.SaveCart(ctx, *cart)
}
