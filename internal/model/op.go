package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// OpType tags an outbox op kind.
type OpType string

const (
	OpUpsertCart OpType = "UPSERT_CART"
	OpUpsertItem OpType = "UPSERT_ITEM"
	OpDeleteItem OpType = "DELETE_ITEM"
	OpCloseCart  OpType = "CLOSE_CART"
	OpReopenCart OpType = "REOPEN_CART"
)

// Payload is the typed payload of an outbox op. Exactly one concrete
// type exists per OpType; the sync engine dispatches with a type switch.
type Payload interface {
	OpType() OpType
}

// UpsertCart creates or replaces a remote cart row, keyed by id.
type UpsertCart CartRow

func (UpsertCart) OpType() OpType { return OpUpsertCart }

// UpsertItem creates or replaces a remote item row, keyed by id, and
// records a price-history entry.
type UpsertItem ItemRow

func (UpsertItem) OpType() OpType { return OpUpsertItem }

// DeleteItem removes a remote item row by id.
type DeleteItem struct {
	ID string `json:"id"`
}

func (DeleteItem) OpType() OpType { return OpDeleteItem }

// CloseCart marks a remote cart CLOSED, stamping closed_at.
type CloseCart CartPatch

func (CloseCart) OpType() OpType { return OpCloseCart }

// ReopenCart marks a remote cart OPEN again, clearing closed_at.
type ReopenCart CartPatch

func (ReopenCart) OpType() OpType { return OpReopenCart }

// Op is one queued mutation intent. Ops are immutable once enqueued and
// are consumed strictly in FIFO order as a prefix of the queue.
type Op struct {
	ID        string
	Type      OpType
	CreatedAt time.Time
	Payload   Payload
}

// NewOp builds an op, deriving Type from the payload.
func NewOp(id string, createdAt time.Time, payload Payload) Op {
	return Op{ID: id, Type: payload.OpType(), CreatedAt: createdAt, Payload: payload}
}

type opEnvelope struct {
	ID        string          `json:"id"`
	Type      OpType          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// MarshalJSON renders the {id, type, payload, created_at} envelope.
func (o Op) MarshalJSON() ([]byte, error) {
	payload, err := json.Marshal(o.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal op %s payload: %w", o.ID, err)
	}
	return json.Marshal(opEnvelope{
		ID:        o.ID,
		Type:      o.Type,
		Payload:   payload,
		CreatedAt: o.CreatedAt,
	})
}

// UnmarshalJSON decodes the envelope and the type-specific payload.
// An unknown type tag is an error, not a silent skip: a queue entry we
// cannot dispatch must surface before the sync pass starts.
func (o *Op) UnmarshalJSON(data []byte) error {
	var env opEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode op envelope: %w", err)
	}
	payload, err := DecodePayload(env.Type, env.Payload)
	if err != nil {
		return err
	}
	o.ID = env.ID
	o.Type = env.Type
	o.CreatedAt = env.CreatedAt
	o.Payload = payload
	return nil
}

// DecodePayload decodes a raw payload according to its type tag.
func DecodePayload(t OpType, raw []byte) (Payload, error) {
	switch t {
	case OpUpsertCart:
		var p UpsertCart
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", t, err)
		}
		return p, nil
	case OpUpsertItem:
		var p UpsertItem
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", t, err)
		}
		return p, nil
	case OpDeleteItem:
		var p DeleteItem
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", t, err)
		}
		return p, nil
	case OpCloseCart:
		var p CloseCart
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", t, err)
		}
		return p, nil
	case OpReopenCart:
		var p ReopenCart
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", t, err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown outbox op type %q", t)
	}
}
