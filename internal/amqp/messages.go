package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jard/internal/core"
)

// InventorySyncMessage announces that the record for Date was saved locally
// and still needs a remote write. The worker reads the record from the local
// cache; the message only carries the key.
type InventorySyncMessage struct {
	Date      string    `json:"date"`
	SavedAt   time.Time `json:"saved_at"`
	MessageID string    `json:"message_id"`
}

func NewInventorySyncMessage(date core.Date, savedAt time.Time) *InventorySyncMessage {
	return &InventorySyncMessage{
		Date:      date.String(),
		SavedAt:   savedAt,
		MessageID: uuid.NewString(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *InventorySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// InventorySyncMessageFromJSON decodes and validates a message body.
func InventorySyncMessageFromJSON(data []byte) (*InventorySyncMessage, error) {
	var msg InventorySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if _, err := core.ParseDate(msg.Date); err != nil {
		return nil, fmt.Errorf("message %s: %w", msg.MessageID, err)
	}
	return &msg, nil
}

// ParsedDate returns the message date; valid after InventorySyncMessageFromJSON.
func (m *InventorySyncMessage) ParsedDate() core.Date {
	d, _ := core.ParseDate(m.Date)
	return d
}
