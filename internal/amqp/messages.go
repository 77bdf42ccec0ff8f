package amqp

import (
	"encoding/json"
	"time"
)

// SubscriptionSyncMessage asks the sync worker to push one subscription
// to the backup sheet. It carries only the ID and version; the worker
// reads the full row from the database so stale messages can be skipped.
type SubscriptionSyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Deleted   bool      `json:"deleted,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSubscriptionSyncMessage builds a sync message for an upsert.
func NewSubscriptionSyncMessage(id, version int64) *SubscriptionSyncMessage {
	return &SubscriptionSyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// NewSubscriptionDeleteMessage builds a sync message for a deletion.
// Deletions carry no version; the worker records the tombstone as-is.
func NewSubscriptionDeleteMessage(id int64) *SubscriptionSyncMessage {
	return &SubscriptionSyncMessage{
		ID:        id,
		Deleted:   true,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *SubscriptionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SubscriptionSyncMessageFromJSON parses a message from JSON bytes.
func SubscriptionSyncMessageFromJSON(data []byte) (*SubscriptionSyncMessage, error) {
	var msg SubscriptionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
