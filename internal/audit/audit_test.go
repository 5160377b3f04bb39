package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tryshirtonline/face-attandance/internal/domain"
)

func TestSlogLogger_Log(t *testing.T) {
	tests := []struct {
		name          string
		event         Event
		wantEventType string
		wantSuccess   bool
		wantHasError  bool
	}{
		{
			name: "committed attempt",
			event: Event{
				EventType:      EventAttendanceMarked,
				EmployeeNumber: "EMP-001",
				Extractor:      "local",
				Success:        true,
				Reason:         domain.ReasonCommitted,
				Metadata: map[string]string{
					"confidence": "0.91",
				},
			},
			wantEventType: string(EventAttendanceMarked),
			wantSuccess:   true,
		},
		{
			name: "rejected attempt",
			event: Event{
				EventType:      EventAttendanceAttempt,
				EmployeeNumber: "EMP-002",
				Extractor:      "deepface",
				Success:        false,
				Reason:         domain.ReasonNoMatch,
			},
			wantEventType: string(EventAttendanceAttempt),
			wantSuccess:   false,
		},
		{
			name: "failed enrollment with error",
			event: Event{
				EventType:      EventTemplateEnrolled,
				EmployeeNumber: "EMP-003",
				Extractor:      "rekognition",
				Success:        false,
				Error:          "no face detected in image",
			},
			wantEventType: string(EventTemplateEnrolled),
			wantSuccess:   false,
			wantHasError:  true,
		},
		{
			name: "event with IP address",
			event: Event{
				EventType:      EventAttendanceAttempt,
				EmployeeNumber: "EMP-004",
				Extractor:      "local",
				Success:        false,
				Reason:         domain.ReasonAccessDenied,
				IPAddress:      "192.168.1.1",
			},
			wantEventType: string(EventAttendanceAttempt),
			wantSuccess:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := slog.NewJSONHandler(&buf, nil)
			logger := slog.New(handler)

			auditLogger := NewSlogLogger(logger)
			err := auditLogger.Log(context.Background(), tt.event)

			require.NoError(t, err)

			output := buf.String()
			assert.Contains(t, output, tt.wantEventType)
			assert.Contains(t, output, tt.event.EmployeeNumber)
			assert.Contains(t, output, "audit_event")
			assert.Contains(t, output, "audit")

			if tt.wantHasError {
				assert.Contains(t, output, tt.event.Error)
			}
		})
	}
}

func TestSlogLogger_Log_SecurityAlertAtWarnLevel(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(handler)

	auditLogger := NewSlogLogger(logger)
	event := Event{
		EventType:      EventSecurityAlert,
		EmployeeNumber: "EMP-005",
		Extractor:      "local",
		Success:        false,
		Reason:         domain.ReasonLivenessNotConfirmed,
		Metadata: map[string]string{
			"alert": domain.AlertMessage(domain.AlertSpoofSuspected),
		},
	}

	err := auditLogger.Log(context.Background(), event)
	require.NoError(t, err)

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &logEntry))
	assert.Equal(t, "WARN", logEntry["level"])
	assert.Contains(t, buf.String(), "SECURITY ALERT")
}

func TestSlogLogger_Log_GeneratesIDAndTimestamp(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(handler)

	auditLogger := NewSlogLogger(logger)
	event := Event{
		EventType:      EventAttendanceAttempt,
		EmployeeNumber: "EMP-001",
		Extractor:      "local",
		Success:        true,
	}

	err := auditLogger.Log(context.Background(), event)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "event_id")

	var logEntry map[string]interface{}
	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.NotEmpty(t, lines)

	err = json.Unmarshal([]byte(lines[0]), &logEntry)
	require.NoError(t, err)

	eventID, ok := logEntry["event_id"].(string)
	assert.True(t, ok)
	assert.NotEmpty(t, eventID)

	_, err = uuid.Parse(eventID)
	assert.NoError(t, err)
}

func TestSlogLogger_Log_UsesProvidedIDAndTimestamp(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(handler)

	auditLogger := NewSlogLogger(logger)
	expectedID := uuid.New()
	expectedTimestamp := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)

	event := Event{
		ID:             expectedID,
		Timestamp:      expectedTimestamp,
		EventType:      EventTemplateEnrolled,
		EmployeeNumber: "EMP-001",
		Extractor:      "local",
		Success:        true,
	}

	err := auditLogger.Log(context.Background(), event)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), expectedID.String())
}

func TestNoOpLogger_Log(t *testing.T) {
	logger := &NoOpLogger{}

	event := Event{
		ID:             uuid.New(),
		Timestamp:      time.Now(),
		EventType:      EventAttendanceAttempt,
		EmployeeNumber: "EMP-001",
		Extractor:      "local",
		Success:        true,
		Metadata: map[string]string{
			"test": "value",
		},
	}

	err := logger.Log(context.Background(), event)

	assert.NoError(t, err)
}

func TestLoggerInterface_Compliance(t *testing.T) {
	var _ Logger = (*SlogLogger)(nil)
	var _ Logger = (*NoOpLogger)(nil)
}

func TestEvent_JSONSerialization_OmitsEmptyFields(t *testing.T) {
	event := Event{
		EventType: EventAttendanceAttempt,
		Extractor: "local",
		Success:   true,
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	jsonStr := string(data)
	assert.NotContains(t, jsonStr, "employee_number")
	assert.NotContains(t, jsonStr, "supervisor_id")
	assert.NotContains(t, jsonStr, "error")
	assert.NotContains(t, jsonStr, "ip_address")
}
