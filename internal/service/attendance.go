package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tryshirtonline/face-attandance/internal/access"
	"github.com/tryshirtonline/face-attandance/internal/alert"
	"github.com/tryshirtonline/face-attandance/internal/audit"
	"github.com/tryshirtonline/face-attandance/internal/domain"
	"github.com/tryshirtonline/face-attandance/internal/extractor"
	"github.com/tryshirtonline/face-attandance/internal/liveness"
	"github.com/tryshirtonline/face-attandance/internal/match"
	"github.com/tryshirtonline/face-attandance/internal/webhook"
)

type EmployeeRepositoryInterface interface {
	GetByNumber(ctx context.Context, employeeNumber string) (*domain.Employee, error)
	SetTemplate(ctx context.Context, employeeID uuid.UUID, template domain.Encoding, version int) error
}

type AttendanceRepositoryInterface interface {
	Create(ctx context.Context, record *domain.AttendanceRecord) error
	GetByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, date string) (*domain.AttendanceRecord, error)
	ListByDate(ctx context.Context, date string) ([]domain.AttendanceRecord, error)
}

type VerificationRepositoryInterface interface {
	Create(ctx context.Context, v *domain.Verification) error
}

type RateLimiterInterface interface {
	CheckAttemptLimit(ctx context.Context, supervisorID uuid.UUID, limit int) error
}

type Broadcaster interface {
	Broadcast(ctx context.Context, eventType string, data interface{}) error
}

type Notifier interface {
	Notify(ctx context.Context, notification alert.Notification)
}

// Actor is the authenticated operator driving an attempt.
type Actor struct {
	User       *domain.User
	Supervisor *domain.Supervisor
}

// IsSuperuser reports whether the actor bypasses the access resolver.
func (a *Actor) IsSuperuser() bool {
	return a != nil && a.User != nil && a.User.Role == domain.RoleSuperuser
}

// MarkRequest is one verification attempt. Frames is the ordered capture
// burst; the first frame identifies the subject and every frame feeds the
// liveness detector.
type MarkRequest struct {
	EmployeeNumber string
	Frames         [][]byte
	Latitude       *float64
	Longitude      *float64
}

type AttendanceService struct {
	employees     EmployeeRepositoryInterface
	attendance    AttendanceRepositoryInterface
	verifications VerificationRepositoryInterface
	extractor     extractor.Extractor
	scorer        *match.Scorer
	livenessCfg   liveness.Config
	resolver      *access.Resolver
	limiter       RateLimiterInterface
	attemptLimit  int
	auditLogger   audit.Logger
	notifier      Notifier
	broadcaster   Broadcaster
	now           func() time.Time
}

func NewAttendanceService(
	employees EmployeeRepositoryInterface,
	attendance AttendanceRepositoryInterface,
	verifications VerificationRepositoryInterface,
	ext extractor.Extractor,
	scorer *match.Scorer,
	livenessCfg liveness.Config,
) *AttendanceService {
	return &AttendanceService{
		employees:     employees,
		attendance:    attendance,
		verifications: verifications,
		extractor:     ext,
		scorer:        scorer,
		livenessCfg:   livenessCfg,
		resolver:      access.NewResolver(),
		auditLogger:   &audit.NoOpLogger{},
		now:           time.Now,
	}
}

// WithRateLimiter enables per-supervisor attempt limiting.
func (s *AttendanceService) WithRateLimiter(limiter RateLimiterInterface, limit int) *AttendanceService {
	s.limiter = limiter
	s.attemptLimit = limit
	return s
}

// WithAuditLogger sets the audit logger.
func (s *AttendanceService) WithAuditLogger(logger audit.Logger) *AttendanceService {
	s.auditLogger = logger
	return s
}

// WithNotifier sets the security alert notifier.
func (s *AttendanceService) WithNotifier(notifier Notifier) *AttendanceService {
	s.notifier = notifier
	return s
}

// WithBroadcaster sets the webhook broadcaster for committed attendance.
func (s *AttendanceService) WithBroadcaster(broadcaster Broadcaster) *AttendanceService {
	s.broadcaster = broadcaster
	return s
}

// WithClock overrides the time source (tests).
func (s *AttendanceService) WithClock(now func() time.Time) *AttendanceService {
	s.now = now
	return s
}

// MarkAttendance runs one verification attempt end to end. Pipeline verdicts
// (no match, liveness not confirmed, already marked, access denied) come back
// as a rejected VerificationOutcome, not an error; errors are reserved for
// invalid requests and infrastructure failures.
//
// Attempts are independent: the liveness session lives and dies inside this
// call, so confirmation in one attempt never carries into the next.
func (s *AttendanceService) MarkAttendance(ctx context.Context, actor *Actor, req MarkRequest) (*domain.VerificationOutcome, error) {
	start := s.now()

	if actor == nil || actor.User == nil {
		return nil, domain.ErrUnauthorized
	}
	if req.EmployeeNumber == "" {
		return nil, domain.ErrValidationFailed.WithError(errors.New("employee_number is required"))
	}
	if len(req.Frames) == 0 {
		return nil, domain.ErrValidationFailed.WithError(errors.New("at least one frame is required"))
	}

	if s.limiter != nil && actor.Supervisor != nil {
		if err := s.limiter.CheckAttemptLimit(ctx, actor.Supervisor.ID, s.attemptLimit); err != nil {
			return nil, err
		}
	}

	employee, err := s.employees.GetByNumber(ctx, req.EmployeeNumber)
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) && !actor.IsSuperuser() {
			// A supervisor cannot distinguish "no such employee" from
			// "not your employee"; both read as access denied.
			return s.rejectUnresolved(ctx, actor, req.EmployeeNumber, start), nil
		}
		return nil, err
	}

	if !employee.IsActive {
		if actor.IsSuperuser() {
			return nil, domain.ErrEmployeeNotFound
		}
		return s.rejectUnresolved(ctx, actor, req.EmployeeNumber, start), nil
	}

	if !actor.IsSuperuser() && !s.resolver.Authorize(actor.Supervisor, employee) {
		return s.reject(ctx, actor, employee, rejected(domain.ReasonAccessDenied, ""), start), nil
	}

	today := start.Format("2006-01-02")

	if existing, err := s.attendance.GetByEmployeeAndDate(ctx, employee.ID, today); err == nil {
		outcome := rejected(domain.ReasonAlreadyMarked, existing.Time)
		outcome.ExistingTime = existing.Time
		return s.reject(ctx, actor, employee, outcome, start), nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if !employee.HasTemplate() {
		return s.reject(ctx, actor, employee, rejected(domain.ReasonNoEnrolledTemplate, ""), start), nil
	}

	encoding, err := s.extractor.Extract(ctx, req.Frames[0])
	if err != nil {
		if reason, ok := extractionReason(err); ok {
			return s.reject(ctx, actor, employee, rejected(reason, ""), start), nil
		}
		return nil, fmt.Errorf("extract encoding: %w", err)
	}

	matched, confidence := s.scorer.Match(employee.Template, encoding)
	blinkDetected := s.observeLiveness(ctx, req.Frames)

	if !matched || !blinkDetected {
		reason := domain.ReasonNoMatch
		if matched {
			reason = domain.ReasonLivenessNotConfirmed
		}

		outcome := rejected(reason, "")
		outcome.Confidence = confidence
		outcome.BlinkDetected = blinkDetected

		if classification, alertable := alert.Classify(matched, blinkDetected); alertable {
			outcome.SecurityAlert = classification.Message
			outcome.AlertClass = classification.Class
			s.raiseAlert(ctx, employee, classification, confidence, blinkDetected)
		}

		return s.reject(ctx, actor, employee, outcome, start), nil
	}

	record := &domain.AttendanceRecord{
		EmployeeID:     employee.ID,
		EmployeeNumber: employee.EmployeeNumber,
		EmployeeName:   employee.Name,
		Date:           today,
		Time:           start.Format("15:04:05"),
		Timestamp:      start,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		JobTitle:       employee.JobTitle,
		Category:       employee.Category,
	}
	if actor.Supervisor != nil {
		record.MarkedByID = &actor.Supervisor.ID
		record.MarkedByName = actor.Supervisor.FullName
	}

	if err := s.attendance.Create(ctx, record); err != nil {
		if errors.Is(err, domain.ErrAttendanceExists) {
			// Lost the race against a concurrent attempt. The unique
			// constraint guarantees exactly one record survived.
			outcome := rejected(domain.ReasonAlreadyMarked, "")
			outcome.Confidence = confidence
			outcome.BlinkDetected = blinkDetected
			if existing, lookupErr := s.attendance.GetByEmployeeAndDate(ctx, employee.ID, today); lookupErr == nil {
				outcome.ExistingTime = existing.Time
				outcome.Message = domain.ReasonMessage(domain.ReasonAlreadyMarked, existing.Time)
			}
			return s.reject(ctx, actor, employee, outcome, start), nil
		}

		outcome := rejected(domain.ReasonStorageFailure, "")
		outcome.Confidence = confidence
		outcome.BlinkDetected = blinkDetected
		return s.reject(ctx, actor, employee, outcome, start), nil
	}

	outcome := &domain.VerificationOutcome{
		Success:       true,
		Confidence:    confidence,
		BlinkDetected: blinkDetected,
		Reason:        domain.ReasonCommitted,
		Message:       domain.ReasonMessage(domain.ReasonCommitted, employee.Name),
		Record:        record,
	}

	s.recordAttempt(ctx, actor, employee, outcome, start)

	if s.broadcaster != nil {
		// Failed deliveries land on the retry queue inside Broadcast; a
		// broadcast error must not undo a committed record.
		_ = s.broadcaster.Broadcast(ctx, webhook.EventAttendanceMarked, record)
	}

	return outcome, nil
}

// EnrollTemplate extracts and stores the face template for an employee.
// Superusers can enroll anyone; supervisors only employees they may mark.
func (s *AttendanceService) EnrollTemplate(ctx context.Context, actor *Actor, employeeNumber string, image []byte) (*domain.Employee, error) {
	if actor == nil || actor.User == nil {
		return nil, domain.ErrUnauthorized
	}
	if len(image) == 0 {
		return nil, domain.ErrValidationFailed.WithError(errors.New("image is required"))
	}

	employee, err := s.employees.GetByNumber(ctx, employeeNumber)
	if err != nil {
		return nil, err
	}

	if !actor.IsSuperuser() && !s.resolver.Authorize(actor.Supervisor, employee) {
		return nil, domain.ErrForbidden
	}

	encoding, err := s.extractor.Extract(ctx, image)
	if err != nil {
		s.logAudit(ctx, audit.Event{
			EventType:      audit.EventTemplateEnrolled,
			EmployeeNumber: employeeNumber,
			Extractor:      s.extractor.Name(),
			Success:        false,
			Error:          err.Error(),
		})
		return nil, err
	}

	if err := s.employees.SetTemplate(ctx, employee.ID, encoding, domain.TemplateVersion); err != nil {
		return nil, err
	}

	employee.Template = encoding
	employee.TemplateVersion = domain.TemplateVersion

	s.logAudit(ctx, audit.Event{
		EventType:      audit.EventTemplateEnrolled,
		EmployeeNumber: employeeNumber,
		Extractor:      s.extractor.Name(),
		Success:        true,
	})

	return employee, nil
}

// TodayAttendance lists all records for the current calendar date.
func (s *AttendanceService) TodayAttendance(ctx context.Context) ([]domain.AttendanceRecord, error) {
	return s.attendance.ListByDate(ctx, s.now().Format("2006-01-02"))
}

// observeLiveness runs the per-attempt blink session over the frame burst.
// Frames whose eye signal cannot be measured are skipped rather than counted
// as closures.
func (s *AttendanceService) observeLiveness(ctx context.Context, frames [][]byte) bool {
	session := liveness.NewSession(s.livenessCfg)
	defer session.Reset()

	for _, frame := range frames {
		signal, err := s.extractor.EyeSignal(ctx, frame)
		if err != nil {
			continue
		}
		session.Observe(signal)
	}

	return session.Confirmed()
}

// rejected builds a failed outcome with the canonical message for a reason.
func rejected(reason domain.Reason, detail string) *domain.VerificationOutcome {
	return &domain.VerificationOutcome{
		Success: false,
		Reason:  reason,
		Message: domain.ReasonMessage(reason, detail),
	}
}

// reject records a failed attempt and returns the outcome unchanged.
func (s *AttendanceService) reject(ctx context.Context, actor *Actor, employee *domain.Employee, outcome *domain.VerificationOutcome, start time.Time) *domain.VerificationOutcome {
	s.recordAttempt(ctx, actor, employee, outcome, start)
	return outcome
}

// rejectUnresolved handles attempts where no employee row backs the request.
// The verification row carries no employee reference; the audit event carries
// the requested number so the attempt remains traceable.
func (s *AttendanceService) rejectUnresolved(ctx context.Context, actor *Actor, employeeNumber string, start time.Time) *domain.VerificationOutcome {
	outcome := rejected(domain.ReasonAccessDenied, "")

	v := &domain.Verification{
		Success:   false,
		Reason:    outcome.Reason,
		LatencyMs: s.now().Sub(start).Milliseconds(),
	}
	if actor != nil && actor.Supervisor != nil {
		v.SupervisorID = &actor.Supervisor.ID
	}
	_ = s.verifications.Create(ctx, v)

	event := audit.Event{
		EventType:      audit.EventAttendanceAttempt,
		EmployeeNumber: employeeNumber,
		Extractor:      s.extractor.Name(),
		Success:        false,
		Reason:         outcome.Reason,
	}
	if actor != nil && actor.Supervisor != nil {
		event.SupervisorID = actor.Supervisor.ID.String()
	}
	s.logAudit(ctx, event)

	return outcome
}

// recordAttempt persists the verification audit row and emits the audit
// event. Both are best-effort; the outcome is already decided.
func (s *AttendanceService) recordAttempt(ctx context.Context, actor *Actor, employee *domain.Employee, outcome *domain.VerificationOutcome, start time.Time) {
	v := &domain.Verification{
		Success:       outcome.Success,
		Confidence:    outcome.Confidence,
		BlinkDetected: outcome.BlinkDetected,
		Reason:        outcome.Reason,
		SecurityAlert: outcome.SecurityAlert,
		LatencyMs:     s.now().Sub(start).Milliseconds(),
	}
	if employee != nil {
		v.EmployeeID = &employee.ID
	}
	if actor != nil && actor.Supervisor != nil {
		v.SupervisorID = &actor.Supervisor.ID
	}

	_ = s.verifications.Create(ctx, v)

	eventType := audit.EventAttendanceAttempt
	if outcome.Success {
		eventType = audit.EventAttendanceMarked
	} else if outcome.SecurityAlert != "" {
		eventType = audit.EventSecurityAlert
	}

	event := audit.Event{
		EventType: eventType,
		Extractor: s.extractor.Name(),
		Success:   outcome.Success,
		Reason:    outcome.Reason,
		Metadata: map[string]string{
			"confidence": fmt.Sprintf("%.4f", outcome.Confidence),
		},
	}
	if employee != nil {
		event.EmployeeNumber = employee.EmployeeNumber
	}
	if actor != nil && actor.Supervisor != nil {
		event.SupervisorID = actor.Supervisor.ID.String()
	}

	s.logAudit(ctx, event)
}

func (s *AttendanceService) raiseAlert(ctx context.Context, employee *domain.Employee, classification alert.Classification, confidence float64, blinkDetected bool) {
	if s.notifier == nil {
		return
	}

	s.notifier.Notify(ctx, alert.Notification{
		Class:          string(classification.Class),
		Severity:       string(classification.Severity),
		Message:        classification.Message,
		EmployeeNumber: employee.EmployeeNumber,
		Confidence:     confidence,
		BlinkDetected:  blinkDetected,
	})
}

func (s *AttendanceService) logAudit(ctx context.Context, event audit.Event) {
	if s.auditLogger == nil {
		return
	}
	_ = s.auditLogger.Log(ctx, event)
}

// extractionReason maps extractor failures onto terminal attempt reasons.
func extractionReason(err error) (domain.Reason, bool) {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		return "", false
	}

	switch appErr.Code {
	case domain.ErrInvalidImage.Code:
		return domain.ReasonDecodeError, true
	case domain.ErrNoFaceDetected.Code:
		return domain.ReasonNoFaceDetected, true
	case domain.ErrMultipleFaces.Code:
		return domain.ReasonMultipleFaces, true
	default:
		return "", false
	}
}
