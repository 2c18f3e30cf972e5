package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind names what happened to a transaction.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventDeleted EventKind = "deleted"
)

// TransactionEvent is a lightweight notification about a committed write.
// It carries only the id; consumers read the row back from the database.
type TransactionEvent struct {
	Event     EventKind `json:"event"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(kind EventKind, id int64) *TransactionEvent {
	return &TransactionEvent{
		Event:     kind,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes an event. Unknown event kinds and
// non-positive ids are rejected so they can be dropped without requeue.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var evt TransactionEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, err
	}
	switch evt.Event {
	case EventCreated, EventDeleted:
	default:
		return nil, fmt.Errorf("unknown event kind %q", evt.Event)
	}
	if evt.ID <= 0 {
		return nil, fmt.Errorf("invalid transaction id %d", evt.ID)
	}
	return &evt, nil
}
