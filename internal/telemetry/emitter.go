// Package telemetry carries quiz activity events (logins, room joins, code issuance) to external sinks.
package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the API.
const (
	TypeLogin          = "auth.login"
	TypeLoginFailed    = "auth.login_failed"
	TypeLogout         = "auth.logout"
	TypeRegister       = "auth.register"
	TypeRoomCreated    = "room.created"
	TypeRoomCodeIssued = "room.code_issued"
	TypeRoomJoined     = "room.joined"
	TypeRoomJoinDenied = "room.join_rejected"
)

// SourceAPI marks events raised by the HTTP API.
const SourceAPI = "api"

// Event is the wire form of one activity event. It is serialized as JSON to Kafka and to Loki.
type Event struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	UserID    string            `json:"userId,omitempty"`
	RoomID    string            `json:"roomId,omitempty"`
	Source    string            `json:"source"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NewEvent returns an API event of the given type with a fresh id and timestamp.
func NewEvent(eventType, userID string) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		UserID:    userID,
		Source:    SourceAPI,
		CreatedAt: time.Now().UTC(),
	}
}

// WithRoom sets the room id and returns e.
func (e *Event) WithRoom(roomID string) *Event {
	e.RoomID = roomID
	return e
}

// With adds a metadata key and returns e.
func (e *Event) With(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// EventEmitter emits events. Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}

// Multi fans an event out to every non-nil emitter. All emitters run; their errors are joined.
type Multi []EventEmitter

// Emit implements EventEmitter.
func (m Multi) Emit(ctx context.Context, event *Event) error {
	var errs []error
	for _, e := range m {
		if e == nil {
			continue
		}
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
