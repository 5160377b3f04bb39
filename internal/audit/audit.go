package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tryshirtonline/face-attandance/internal/domain"
)

// EventType defines the type of auditable event
type EventType string

const (
	EventAttendanceAttempt EventType = "ATTENDANCE_ATTEMPT"
	EventAttendanceMarked  EventType = "ATTENDANCE_MARKED"
	EventTemplateEnrolled  EventType = "TEMPLATE_ENROLLED"
	EventSecurityAlert     EventType = "SECURITY_ALERT"
)

// Event represents an audit event. Attendance verification handles biometric
// data, so every attempt leaves a trace regardless of outcome.
type Event struct {
	ID             uuid.UUID         `json:"id"`
	Timestamp      time.Time         `json:"timestamp"`
	EventType      EventType         `json:"event_type"`
	EmployeeNumber string            `json:"employee_number,omitempty"`
	SupervisorID   string            `json:"supervisor_id,omitempty"`
	Extractor      string            `json:"extractor"`
	Success        bool              `json:"success"`
	Reason         domain.Reason     `json:"reason,omitempty"`
	Error          string            `json:"error,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	IPAddress      string            `json:"ip_address,omitempty"`
}

// Logger defines the interface for audit logging
type Logger interface {
	Log(ctx context.Context, event Event) error
}

// SlogLogger implements Logger using slog
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a new audit logger using slog
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{
		logger: logger.With("component", "audit"),
	}
}

// Log records an audit event. Security alerts log at warn level so they
// stand out in aggregated output.
func (l *SlogLogger) Log(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to marshal audit event",
			slog.String("error", err.Error()),
			slog.String("event_type", string(event.EventType)),
		)
		return err
	}

	attrs := []any{
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.EventType)),
		slog.String("employee_number", event.EmployeeNumber),
		slog.String("extractor", event.Extractor),
		slog.Bool("success", event.Success),
		slog.String("event_data", string(eventJSON)),
	}

	if event.EventType == EventSecurityAlert {
		l.logger.WarnContext(ctx, "audit_event", attrs...)
	} else {
		l.logger.InfoContext(ctx, "audit_event", attrs...)
	}

	return nil
}

// NoOpLogger is a logger that does nothing (for testing or when audit is disabled)
type NoOpLogger struct{}

// Log does nothing and returns nil
func (l *NoOpLogger) Log(_ context.Context, _ Event) error {
	return nil
}
