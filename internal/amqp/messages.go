package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Operations carried by ledger events.
const (
	OpAdd    = "add"
	OpEdit   = "edit"
	OpDelete = "delete"
)

// LedgerEventMessage notifies consumers that a transaction changed.
// It carries only the operation and the id; the audit worker fetches
// the full record from the store when it still exists.
type LedgerEventMessage struct {
	Op        string    `json:"op"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEventMessage creates an event for the given operation and id.
func NewLedgerEventMessage(op string, id int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		Op:        op,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// Validate checks the operation field.
func (m *LedgerEventMessage) Validate() error {
	switch m.Op {
	case OpAdd, OpEdit, OpDelete:
		return nil
	default:
		return fmt.Errorf("unknown ledger operation %q", m.Op)
	}
}

// ToJSON serializes the message.
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON deserializes and validates a message.
func LedgerEventFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
