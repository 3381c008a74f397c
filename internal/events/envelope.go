package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the frame pushed to every destination.
type Envelope struct {
	Event       string          `json:"event"`
	Destination string          `json:"destination"`
	OccurredAt  time.Time       `json:"occurredAt"`
	Payload     json.RawMessage `json:"payload"`
}

func NewEnvelope(event, destination string, payload interface{}) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	return Envelope{
		Event:       event,
		Destination: destination,
		OccurredAt:  time.Now().UTC(),
		Payload:     data,
	}, nil
}
