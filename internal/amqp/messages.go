package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"oficina/internal/core"
)

// Operation is what happened to a record.
type Operation string

const (
	OpCreated Operation = "created"
	OpUpdated Operation = "updated"
)

// RecordEvent is a lightweight notification that a record changed.
// It carries only the identity; consumers load the current record from
// the database, so replays and duplicates converge to the same row.
type RecordEvent struct {
	MessageID uuid.UUID `json:"message_id"`
	Kind      core.Kind `json:"kind"`
	RecordID  int64     `json:"record_id"`
	Operation Operation `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordEvent creates an event with a fresh message id.
func NewRecordEvent(kind core.Kind, id int64, op Operation) RecordEvent {
	return RecordEvent{
		MessageID: uuid.New(),
		Kind:      kind,
		RecordID:  id,
		Operation: op,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (e RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON decodes and validates an event.
func RecordEventFromJSON(data []byte) (RecordEvent, error) {
	var ev RecordEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return RecordEvent{}, err
	}
	if ev.RecordID <= 0 {
		return RecordEvent{}, errors.New("record event without record id")
	}
	if ev.Kind == "" {
		return RecordEvent{}, errors.New("record event without kind")
	}
	return ev, nil
}
