package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeProfileCreated = "profile.created"
	TypeProfileUpdated = "profile.updated"
)

// Event is the envelope published to every sink.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func New(eventType, key string, data any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}
