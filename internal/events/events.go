// Package events publishes applied ledger events to interested listeners.
//
// Publication is best effort: the ledger is the source of truth and a failed publish never
// rolls back a state change.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Message is the wire envelope for one applied event.
type Message struct {
	Name      string          `json:"name"`
	Sequence  uint64          `json:"sequence"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewMessage marshals payload into a Message.
func NewMessage(name string, seq uint64, payload any) (*Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Message{
		Name:      name,
		Sequence:  seq,
		Timestamp: time.Now(),
		Payload:   body,
	}, nil
}

// MessageFromJSON decodes a Message produced by a Publisher.
func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}

	return &msg, nil
}

type Publisher interface {
	Publish(ctx context.Context, msg *Message) error
	Close() error
}

// Nop discards every message. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, *Message) error { return nil }
func (Nop) Close() error                            { return nil }
