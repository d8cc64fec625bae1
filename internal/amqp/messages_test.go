package amqp

import (
	"testing"
)

func TestLedgerEventRoundTrip(t *testing.T) {
	msg := NewLedgerEventMessage(OpAdd, 42)
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := LedgerEventFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Op != OpAdd || got.ID != 42 {
		t.Fatalf("round trip changed message: %+v", got)
	}
}

func TestLedgerEventValidation(t *testing.T) {
	for _, op := range []string{OpAdd, OpEdit, OpDelete} {
		if err := NewLedgerEventMessage(op, 1).Validate(); err != nil {
			t.Fatalf("op %q: %v", op, err)
		}
	}

	if _, err := LedgerEventFromJSON([]byte(`{"op":"truncate","id":1}`)); err == nil {
		t.Fatalf("expected validation error for unknown op")
	}
	if _, err := LedgerEventFromJSON([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}
