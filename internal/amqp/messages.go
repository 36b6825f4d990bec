package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// ChangeKind names what happened to the ledger.
type ChangeKind string

const (
	TransactionAdded   ChangeKind = "transaction.added"
	TransactionRemoved ChangeKind = "transaction.removed"
	SettingsChanged    ChangeKind = "settings.changed"
)

// ChangeMessage is a lightweight notification. Consumers reload the ledger
// from the shared store instead of trusting a payload.
type ChangeMessage struct {
	Kind          ChangeKind `json:"kind"`
	TransactionID string     `json:"transaction_id,omitempty"`
	Slot          string     `json:"slot,omitempty"`
	Timestamp     time.Time  `json:"timestamp"`
}

func NewChangeMessage(kind ChangeKind, transactionID, slot string) *ChangeMessage {
	return &ChangeMessage{
		Kind:          kind,
		TransactionID: transactionID,
		Slot:          slot,
		Timestamp:     time.Now().UTC(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes and checks a message body.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case TransactionAdded, TransactionRemoved, SettingsChanged:
	default:
		return nil, fmt.Errorf("unknown change kind %q", msg.Kind)
	}
	return &msg, nil
}
