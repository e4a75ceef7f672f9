package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

// IntakeEvent обработанное сообщение из intake-топика
type IntakeEvent struct {
	ID         int64           `json:"id"`
	MessageID  uuid.UUID       `json:"message_id"`
	Topic      string          `json:"topic"`
	Key        string          `json:"key"`
	Partition  int             `json:"partition"`
	Offset     int64           `json:"offset"`
	PersonID   int64           `json:"person_id"`
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt string          `json:"received_at"`
}

// IntakeDLQ отклонённое intake-сообщение. Payload хранится как есть,
// это может быть не JSON.
type IntakeDLQ struct {
	ID         int64  `json:"id"`
	Topic      string `json:"topic"`
	Key        string `json:"key"`
	Payload    string `json:"payload"`
	Error      string `json:"error"`
	ReceivedAt string `json:"received_at"`
}
