package amqp

import (
	"testing"
	"time"
)

func TestNewSubscriptionSyncMessage(t *testing.T) {
	id := int64(42)
	version := int64(3)

	msg := NewSubscriptionSyncMessage(id, version)

	if msg.ID != id {
		t.Errorf("NewSubscriptionSyncMessage() ID = %v, want %v", msg.ID, id)
	}
	if msg.Version != version {
		t.Errorf("NewSubscriptionSyncMessage() Version = %v, want %v", msg.Version, version)
	}
	if msg.Deleted {
		t.Error("NewSubscriptionSyncMessage() Deleted should be false")
	}
	if msg.Timestamp.IsZero() {
		t.Error("NewSubscriptionSyncMessage() Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("NewSubscriptionSyncMessage() Timestamp should be recent")
	}
}

func TestNewSubscriptionDeleteMessage(t *testing.T) {
	msg := NewSubscriptionDeleteMessage(7)

	if msg.ID != 7 {
		t.Errorf("NewSubscriptionDeleteMessage() ID = %v, want 7", msg.ID)
	}
	if !msg.Deleted {
		t.Error("NewSubscriptionDeleteMessage() Deleted should be true")
	}
}

func TestSubscriptionSyncMessage_JSON(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &SubscriptionSyncMessage{
		ID:        12345,
		Version:   2,
		Deleted:   true,
		Timestamp: timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsedMsg, err := SubscriptionSyncMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("SubscriptionSyncMessageFromJSON() error = %v", err)
	}

	if parsedMsg.ID != msg.ID {
		t.Errorf("Parsed ID = %v, want %v", parsedMsg.ID, msg.ID)
	}
	if parsedMsg.Version != msg.Version {
		t.Errorf("Parsed Version = %v, want %v", parsedMsg.Version, msg.Version)
	}
	if parsedMsg.Deleted != msg.Deleted {
		t.Errorf("Parsed Deleted = %v, want %v", parsedMsg.Deleted, msg.Deleted)
	}
	if !parsedMsg.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsedMsg.Timestamp, msg.Timestamp)
	}
}

func TestSubscriptionSyncMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"id": "not_a_number", "version": 1}`)

	if _, err := SubscriptionSyncMessageFromJSON(invalidJSON); err == nil {
		t.Error("SubscriptionSyncMessageFromJSON() should fail with invalid JSON")
	}
}
