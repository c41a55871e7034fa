package amqp

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewUpsertEvent(t *testing.T) {
	before := time.Now().UTC()
	event := NewUpsertEvent(42)
	after := time.Now().UTC()

	if event.Kind != KindUpsert {
		t.Errorf("Kind = %q, want %q", event.Kind, KindUpsert)
	}
	if event.ID != 42 {
		t.Errorf("ID = %d, want 42", event.ID)
	}
	if event.Timestamp.Before(before) || event.Timestamp.After(after) {
		t.Errorf("Timestamp %v outside [%v, %v]", event.Timestamp, before, after)
	}
}

func TestTransactionEvent_JSONRoundTrip(t *testing.T) {
	original := NewDeleteEvent(7)

	data, err := original.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("unmarshal wire form: %v", err)
	}
	if wire["kind"] != "delete" {
		t.Errorf("wire kind = %v", wire["kind"])
	}

	decoded, err := TransactionEventFromJSON(data)
	if err != nil {
		t.Fatalf("TransactionEventFromJSON: %v", err)
	}
	if decoded.Kind != original.Kind || decoded.ID != original.ID {
		t.Errorf("decoded = %+v, want %+v", decoded, original)
	}
	if !decoded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, original.Timestamp)
	}
}

func TestTransactionEventFromJSON_Invalid(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", "not json at all"},
		{"unknown kind", `{"kind":"archive","id":1,"timestamp":"2026-08-01T00:00:00Z"}`},
		{"missing kind", `{"id":1,"timestamp":"2026-08-01T00:00:00Z"}`},
		{"zero id", `{"kind":"upsert","id":0,"timestamp":"2026-08-01T00:00:00Z"}`},
		{"negative id", `{"kind":"delete","id":-4,"timestamp":"2026-08-01T00:00:00Z"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := TransactionEventFromJSON([]byte(tc.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
