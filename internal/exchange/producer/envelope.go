package producer

import (
	"time"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

const (
	KindPersonCreated  = "person.created"
	KindPeopleImported = "people.imported"
	KindPeopleDeleted  = "people.deleted"
)

type Envelope[T any] struct {
	Kind      string    `json:"kind"`
	MessageID string    `json:"message_id"`
	Payload   T         `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"` // сервис-источник
}

type PersonCreatedPayload struct {
	Person dto.Person `json:"person"`
}

type PeopleImportedPayload struct {
	File        string `json:"file"`
	Imported    int    `json:"imported"`
	ArtifactKey string `json:"artifact_key,omitempty"`
}

type PeopleDeletedPayload struct {
	Deleted int64 `json:"deleted"`
}
