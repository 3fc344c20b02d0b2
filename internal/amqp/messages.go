package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	EventTransactionCreated EventType = "transaction.created"
	EventTransactionUpdated EventType = "transaction.updated"
	EventTransactionDeleted EventType = "transaction.deleted"
)

func (e EventType) Valid() bool {
	switch e {
	case EventTransactionCreated, EventTransactionUpdated, EventTransactionDeleted:
		return true
	}
	return false
}

// TransactionEvent announces a change to one transaction. It carries only
// ids; consumers load the current row from the store.
type TransactionEvent struct {
	Event         EventType `json:"event"`
	TransactionID string    `json:"transaction_id"`
	OwnerID       string    `json:"owner_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionEvent(event EventType, transactionID, ownerID string) *TransactionEvent {
	return &TransactionEvent{
		Event:         event,
		TransactionID: transactionID,
		OwnerID:       ownerID,
		Timestamp:     time.Now().UTC(),
	}
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON decodes and validates a message body.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Event.Valid() {
		return nil, fmt.Errorf("unknown event %q", msg.Event)
	}
	if msg.TransactionID == "" || msg.OwnerID == "" {
		return nil, fmt.Errorf("event %s missing transaction or owner id", msg.Event)
	}
	return &msg, nil
}
