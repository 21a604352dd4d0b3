package otel

import (
	"context"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"quiz-arena/backend/internal/telemetry"
)

// recordCapture stores the last Record passed to Emit for assertion.
type recordCapture struct {
	rec   otellog.Record
	count int
}

func (r *recordCapture) Emit(_ context.Context, rec otellog.Record) {
	r.rec = rec
	r.count++
}

func attrs(rec otellog.Record) map[string]string {
	out := map[string]string{}
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		out[kv.Key] = kv.Value.AsString()
		return true
	})
	return out
}

func TestNewEventEmitter_NilProvider_ReturnsNoop(t *testing.T) {
	em := NewEventEmitter(nil)
	if err := em.Emit(context.Background(), telemetry.NewEvent(telemetry.TypeLogin, "u-1")); err != nil {
		t.Errorf("noop Emit: %v", err)
	}
}

func TestNewEventEmitter_Provider(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()
	em := NewEventEmitter(provider)
	if err := em.Emit(context.Background(), nil); err != nil {
		t.Errorf("Emit(nil): %v", err)
	}
	if err := em.Emit(context.Background(), telemetry.NewEvent(telemetry.TypeLogin, "u-1")); err != nil {
		t.Errorf("Emit: %v", err)
	}
}

func TestEmit_AttributeAndBodyMapping(t *testing.T) {
	capture := &recordCapture{}
	em := NewEventEmitterWithLogger(capture)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ev := &telemetry.Event{
		ID:        "e-1",
		Type:      telemetry.TypeRoomJoined,
		UserID:    "u-1",
		RoomID:    "r-1",
		Source:    telemetry.SourceAPI,
		Metadata:  map[string]string{"code": "ABC123"},
		CreatedAt: created,
	}
	if err := em.Emit(context.Background(), ev); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if capture.count != 1 {
		t.Fatalf("records = %d, want 1", capture.count)
	}
	if !capture.rec.Timestamp().Equal(created) {
		t.Errorf("Timestamp = %v, want %v", capture.rec.Timestamp(), created)
	}
	if got := string(capture.rec.Body().AsBytes()); got != `{"code":"ABC123"}` {
		t.Errorf("Body = %s", got)
	}
	a := attrs(capture.rec)
	want := map[string]string{"event_id": "e-1", "event_type": "room.joined", "user_id": "u-1", "room_id": "r-1", "source": "api"}
	for k, v := range want {
		if a[k] != v {
			t.Errorf("attr %s = %q, want %q", k, a[k], v)
		}
	}
}

func TestEmit_SparseEvent(t *testing.T) {
	capture := &recordCapture{}
	em := NewEventEmitterWithLogger(capture)
	if err := em.Emit(context.Background(), &telemetry.Event{Type: telemetry.TypeLoginFailed}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if capture.rec.Timestamp().IsZero() {
		t.Error("zero CreatedAt should fall back to now")
	}
	if capture.rec.Body().Kind() != otellog.KindEmpty {
		t.Error("no metadata should leave the body empty")
	}
	a := attrs(capture.rec)
	if len(a) != 1 || a["event_type"] != telemetry.TypeLoginFailed {
		t.Errorf("attrs = %v, want only event_type", a)
	}
}
