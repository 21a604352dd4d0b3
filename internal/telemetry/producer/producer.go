// Package producer publishes activity events to a message broker.
package producer

import (
	"context"

	"quiz-arena/backend/internal/telemetry"
)

// Producer emits events. Callers use it best-effort: log and ignore errors.
type Producer interface {
	Emit(ctx context.Context, event *telemetry.Event) error
	// Close releases resources. Safe to call if already closed.
	Close() error
}
