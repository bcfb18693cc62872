package amqp

import (
	"testing"
	"time"
)

func TestWriteMessageRoundTrip(t *testing.T) {
	msg := NewWriteMessage(42)
	if msg.WriteID != 42 {
		t.Fatalf("WriteID = %d, want 42", msg.WriteID)
	}
	if msg.Timestamp.IsZero() {
		t.Fatal("timestamp not set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	decoded, err := WriteMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if decoded.WriteID != msg.WriteID {
		t.Errorf("WriteID = %d, want %d", decoded.WriteID, msg.WriteID)
	}
	if !decoded.Timestamp.Truncate(time.Millisecond).Equal(msg.Timestamp.Truncate(time.Millisecond)) {
		t.Errorf("timestamp = %v, want %v", decoded.Timestamp, msg.Timestamp)
	}
}

func TestWriteMessageFromJSONInvalid(t *testing.T) {
	if _, err := WriteMessageFromJSON([]byte("{broken")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
