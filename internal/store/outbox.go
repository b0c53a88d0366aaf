package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrOutboxEntryNotFound is returned when bumping or dead-lettering an
// op id that is no longer queued.
var ErrOutboxEntryNotFound = errors.New("outbox entry not found")

// OutboxRecord is one queued op as the store sees it. The payload is
// opaque JSON; decoding it into a typed op is the outbox package's job.
//
// Seq is the arrival order and is never reused (AUTOINCREMENT). It is
// omitted from backups: import reassigns fresh seqs in list order.
type OutboxRecord struct {
	Seq       int64           `json:"-"`
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	Attempts  int             `json:"attempts,omitempty"`
}

// DeadLetterRecord is an outbox entry evicted by the retry policy.
type DeadLetterRecord struct {
	OutboxRecord
	Reason string    `json:"reason"`
	DeadAt time.Time `json:"dead_at"`
}

// AppendOutbox appends a record to the tail of the outbox.
func (s *Store) AppendOutbox(ctx context.Context, rec OutboxRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outbox (id, op_type, payload, created_at, attempts)
		VALUES (?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.Type,
		string(rec.Payload),
		storeTime(rec.CreatedAt),
		rec.Attempts,
	)
	if err != nil {
		return fmt.Errorf("append outbox %s: %w", rec.ID, err)
	}
	return nil
}

// ListOutbox returns the full queue snapshot in FIFO order.
// Returns an empty slice, not nil, when the queue is empty.
func (s *Store) ListOutbox(ctx context.Context) ([]OutboxRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, op_type, payload, created_at, attempts
		FROM outbox
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	records := []OutboxRecord{}
	for rows.Next() {
		rec, err := scanOutboxRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}

	return records, nil
}

// ConsumeOutbox removes the first n entries from the head of the queue.
//
// Removal is by count from the head, not by identity: entries appended
// after the caller's snapshot was taken occupy positions beyond n and
// are preserved. This is only safe because sync passes are serialized;
// a required invariant, not an accident (see package sync).
func (s *Store) ConsumeOutbox(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM outbox
		WHERE seq IN (SELECT seq FROM outbox ORDER BY seq ASC LIMIT ?)
	`, n)
	if err != nil {
		return fmt.Errorf("consume %d outbox entries: %w", n, err)
	}
	return nil
}

// OutboxDepth returns the number of queued entries.
func (s *Store) OutboxDepth(ctx context.Context) (int, error) {
	var depth int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outbox`).Scan(&depth); err != nil {
		return 0, fmt.Errorf("outbox depth: %w", err)
	}
	return depth, nil
}

// BumpOutboxAttempts increments the attempt counter of a queued op and
// returns the new count.
func (s *Store) BumpOutboxAttempts(ctx context.Context, id string) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE outbox SET attempts = attempts + 1 WHERE id = ?
	`, id)
	if err != nil {
		return 0, fmt.Errorf("bump attempts for %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bump attempts for %s: rows affected: %w", id, err)
	}
	if affected == 0 {
		return 0, fmt.Errorf("bump attempts for %s: %w", id, ErrOutboxEntryNotFound)
	}

	var attempts int
	if err := s.db.QueryRowContext(ctx, `SELECT attempts FROM outbox WHERE id = ?`, id).Scan(&attempts); err != nil {
		return 0, fmt.Errorf("read attempts for %s: %w", id, err)
	}
	return attempts, nil
}

// DeadLetterOutbox moves a queued op into the dead_letters table in one
// transaction. The op stops blocking the queue but remains inspectable.
func (s *Store) DeadLetterOutbox(ctx context.Context, id, reason string, deadAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("dead-letter %s: begin tx: %w", id, err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT seq, id, op_type, payload, created_at, attempts
		FROM outbox
		WHERE id = ?
	`, id)
	rec, err := scanOutboxRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("dead-letter %s: %w", id, ErrOutboxEntryNotFound)
	}
	if err != nil {
		return fmt.Errorf("dead-letter %s: %w", id, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO dead_letters (id, op_type, payload, created_at, attempts, reason, dead_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.Type, string(rec.Payload), storeTime(rec.CreatedAt), rec.Attempts, reason, storeTime(deadAt),
	)
	if err != nil {
		return fmt.Errorf("dead-letter %s: insert: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM outbox WHERE id = ?`, id); err != nil {
		return fmt.Errorf("dead-letter %s: remove from outbox: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("dead-letter %s: commit: %w", id, err)
	}

	return nil
}

// ListDeadLetters returns evicted ops, oldest first.
func (s *Store) ListDeadLetters(ctx context.Context) ([]DeadLetterRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, op_type, payload, created_at, attempts, reason, dead_at
		FROM dead_letters
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query dead letters: %w", err)
	}
	defer rows.Close()

	records := []DeadLetterRecord{}
	for rows.Next() {
		var (
			rec       DeadLetterRecord
			payload   string
			createdAt string
			deadAt    string
		)
		if err := rows.Scan(&rec.ID, &rec.Type, &payload, &createdAt, &rec.Attempts, &rec.Reason, &deadAt); err != nil {
			return nil, fmt.Errorf("scan dead letter: %w", err)
		}
		rec.Payload = json.RawMessage(payload)
		if rec.CreatedAt, err = parseStoreTime(createdAt); err != nil {
			return nil, err
		}
		if rec.DeadAt, err = parseStoreTime(deadAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dead letters: %w", err)
	}

	return records, nil
}

func scanOutboxRecord(r rowScanner) (OutboxRecord, error) {
	var (
		rec       OutboxRecord
		payload   string
		createdAt string
	)
	if err := r.Scan(&rec.Seq, &rec.ID, &rec.Type, &payload, &createdAt, &rec.Attempts); err != nil {
		return OutboxRecord{}, err
	}
	rec.Payload = json.RawMessage(payload)

	created, err := parseStoreTime(createdAt)
	if err != nil {
		return OutboxRecord{}, err
	}
	rec.CreatedAt = created

	return rec, nil
}
