// Package audit records security-relevant actions (logins, room admission) to the audit_logs table
// and forwards them as activity events.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"quiz-arena/backend/internal/audit/domain"
	auditrepo "quiz-arena/backend/internal/audit/repository"
	"quiz-arena/backend/internal/telemetry"
)

// IPExtractor returns the client IP stored in the request context.
type IPExtractor func(context.Context) string

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action, resource, metadata string)
}

// Logger implements AuditLogger using the audit repository and an optional IP extractor.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
}

// NewLogger returns a Logger that persists to repo. ipExtractor may be nil; then IP is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor}
}

// LogEvent writes one audit log entry. Errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, userID, action, resource, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	ip := ""
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	if ip == "" {
		ip = "unknown"
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("action", action).Str("resource", resource).Msg("audit: failed to log event")
	}
}

// Recorder turns activity events into an audit row plus an async telemetry emit.
// Both sinks are optional.
type Recorder struct {
	audit   AuditLogger
	emitter telemetry.EventEmitter
}

// NewRecorder returns a Recorder. Either argument may be nil.
func NewRecorder(a AuditLogger, emitter telemetry.EventEmitter) *Recorder {
	return &Recorder{audit: a, emitter: emitter}
}

// Record audits event synchronously (best-effort) and emits it in the background.
func (r *Recorder) Record(ctx context.Context, event *telemetry.Event) {
	if r == nil || event == nil {
		return
	}
	if r.audit != nil {
		ar := ParseEventType(event.Type)
		r.audit.LogEvent(ctx, event.UserID, ar.Action, ar.Resource, auditMetadata(event))
	}
	telemetry.EmitAsync(r.emitter, event)
}

func auditMetadata(e *telemetry.Event) string {
	if e.RoomID == "" && len(e.Metadata) == 0 {
		return ""
	}
	m := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		m[k] = v
	}
	if e.RoomID != "" {
		m["roomId"] = e.RoomID
	}
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}
