package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event kinds carried on the export queue.
const (
	KindUpsert = "upsert"
	KindDelete = "delete"
)

// TransactionEvent is a lightweight change notification. It carries only
// the transaction id; the worker fetches the current row from the
// database, so a late consumer always exports the freshest state.
type TransactionEvent struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewUpsertEvent(id int64) *TransactionEvent {
	return &TransactionEvent{Kind: KindUpsert, ID: id, Timestamp: time.Now().UTC()}
}

func NewDeleteEvent(id int64) *TransactionEvent {
	return &TransactionEvent{Kind: KindDelete, ID: id, Timestamp: time.Now().UTC()}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var event TransactionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	if event.Kind != KindUpsert && event.Kind != KindDelete {
		return nil, fmt.Errorf("unknown event kind %q", event.Kind)
	}
	if event.ID <= 0 {
		return nil, fmt.Errorf("invalid transaction id %d", event.ID)
	}
	return &event, nil
}
