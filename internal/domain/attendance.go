package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AttendanceRecord is the durable result of a committed verification.
// At most one record exists per (employee, calendar date); the attendance
// table enforces this with a unique constraint.
type AttendanceRecord struct {
	ID             uuid.UUID  `json:"id"`
	EmployeeID     uuid.UUID  `json:"-"`
	EmployeeNumber string     `json:"employee_number"`
	EmployeeName   string     `json:"employee_name"`
	Date           string     `json:"date"` // YYYY-MM-DD
	Time           string     `json:"time"` // HH:MM:SS
	Timestamp      time.Time  `json:"timestamp"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	JobTitle       string     `json:"job_title,omitempty"`
	Category       string     `json:"category,omitempty"`
	MarkedByID     *uuid.UUID `json:"-"`
	MarkedByName   string     `json:"marking_supervisor_name,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Reason is the canonical terminal state of a verification attempt.
type Reason string

const (
	ReasonCommitted            Reason = "COMMITTED"
	ReasonDecodeError          Reason = "DECODE_ERROR"
	ReasonNoFaceDetected       Reason = "NO_FACE_DETECTED"
	ReasonMultipleFaces        Reason = "MULTIPLE_FACES_DETECTED"
	ReasonAccessDenied         Reason = "ACCESS_DENIED"
	ReasonAlreadyMarked        Reason = "ALREADY_MARKED"
	ReasonNoEnrolledTemplate   Reason = "NO_ENROLLED_TEMPLATE"
	ReasonNoMatch              Reason = "NO_MATCH"
	ReasonLivenessNotConfirmed Reason = "LIVENESS_NOT_CONFIRMED"
	ReasonStorageFailure       Reason = "STORAGE_FAILURE"
)

// AlertClass categorizes suspicious attempt patterns. Alerts are advisory
// metadata on a rejected outcome; they never change the accept decision.
type AlertClass string

const (
	// AlertSpoofSuspected: identity matched but no blink was confirmed,
	// consistent with a photo or replay of the right face.
	AlertSpoofSuspected AlertClass = "possible_spoof"
	// AlertUnauthorizedSpoof: neither identity nor liveness held.
	AlertUnauthorizedSpoof AlertClass = "unauthorized_attempt_spoof"
	// AlertUnauthorized: identity mismatch from an apparently live subject.
	AlertUnauthorized AlertClass = "unauthorized_attempt"
)

// AlertMessage returns the operator-facing text for an alert class.
func AlertMessage(class AlertClass) string {
	switch class {
	case AlertSpoofSuspected:
		return "SECURITY ALERT: No eye blink detected - possible photo/screen spoof attempt"
	case AlertUnauthorizedSpoof:
		return "SECURITY ALERT: Unauthorized access attempt with possible spoofing"
	case AlertUnauthorized:
		return "SECURITY ALERT: Unauthorized access attempt detected"
	default:
		return ""
	}
}

// VerificationOutcome is the transient, per-attempt result of the pipeline.
// Only outcomes with Success=true correspond to a persisted record.
type VerificationOutcome struct {
	Success       bool              `json:"success"`
	Confidence    float64           `json:"confidence"`
	BlinkDetected bool              `json:"blink_detected"`
	Reason        Reason            `json:"reason"`
	Message       string            `json:"message"`
	SecurityAlert string            `json:"security_alert,omitempty"`
	AlertClass    AlertClass        `json:"-"`
	ExistingTime  string            `json:"existing_time,omitempty"`
	Record        *AttendanceRecord `json:"record,omitempty"`
}

// ReasonMessage builds the canonical human-readable message for a terminal
// reason. The set of messages is stable so operators and tests can rely on it.
func ReasonMessage(r Reason, detail string) string {
	switch r {
	case ReasonCommitted:
		return fmt.Sprintf("Attendance marked successfully for %s", detail)
	case ReasonDecodeError:
		return "Image could not be decoded. Please retry with a valid capture."
	case ReasonNoFaceDetected:
		return "No face detected in image. Please ensure your face is clearly visible."
	case ReasonMultipleFaces:
		return "Multiple faces detected. Please ensure only one person is in the frame."
	case ReasonAccessDenied:
		return "Access denied to this employee"
	case ReasonAlreadyMarked:
		return fmt.Sprintf("Attendance already marked today at %s", detail)
	case ReasonNoEnrolledTemplate:
		return "No face data found for this employee"
	case ReasonNoMatch:
		return "Face does not match registered employee."
	case ReasonLivenessNotConfirmed:
		return "Face matched but liveness was not confirmed. Please blink naturally."
	case ReasonStorageFailure:
		return "Error processing attendance"
	default:
		return string(r)
	}
}

// Verification is the persisted audit row for a single attempt.
type Verification struct {
	ID            uuid.UUID  `json:"id"`
	EmployeeID    *uuid.UUID `json:"employee_id,omitempty"`
	SupervisorID  *uuid.UUID `json:"supervisor_id,omitempty"`
	Success       bool       `json:"success"`
	Confidence    float64    `json:"confidence"`
	BlinkDetected bool       `json:"blink_detected"`
	Reason        Reason     `json:"reason"`
	SecurityAlert string     `json:"security_alert,omitempty"`
	LatencyMs     int64      `json:"latency_ms"`
	CreatedAt     time.Time  `json:"created_at"`
}
