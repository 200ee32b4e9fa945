// Package audit records admin mutations as structured log entries.
package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Entry is a single audited admin action.
type Entry struct {
	Timestamp    time.Time
	Action       string
	Actor        string
	ResourceType string
	ResourceID   string
	EventID      string
	Status       string
	Details      map[string]string
}

// Logger writes audit entries through zerolog under the "audit" component.
type Logger struct {
	logger zerolog.Logger
}

func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger.With().Str("component", "audit").Logger()}
}

func (l *Logger) Log(ctx context.Context, entry Entry) {
	if l == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Status == "" {
		entry.Status = StatusSuccess
	}

	evt := l.logger.Info()
	if entry.Status == StatusFailure {
		evt = l.logger.Warn()
	}
	if requestID := requestIDFrom(ctx); requestID != "" {
		evt = evt.Str("request_id", requestID)
	}

	evt = evt.
		Time("audit_time", entry.Timestamp).
		Str("action", entry.Action).
		Str("actor", entry.Actor).
		Str("status", entry.Status)
	if entry.ResourceType != "" {
		evt = evt.Str("resource_type", entry.ResourceType)
	}
	if entry.ResourceID != "" {
		evt = evt.Str("resource_id", entry.ResourceID)
	}
	if entry.EventID != "" {
		evt = evt.Str("event_id", entry.EventID)
	}
	if len(entry.Details) > 0 {
		dict := zerolog.Dict()
		for k, v := range entry.Details {
			dict = dict.Str(k, v)
		}
		evt = evt.Dict("details", dict)
	}
	evt.Msg("admin action")
}

type requestIDKey struct{}

// WithRequestID lets the HTTP layer correlate audit entries with requests.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
