// Package alert classifies rejected verification attempts into security
// alert categories and fans them out to operators. Alerts are advisory:
// they ride along with a rejection and never influence the accept decision.
package alert

import (
	"github.com/tryshirtonline/face-attandance/internal/domain"
)

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Classification pairs an alert class with its operator-facing severity.
type Classification struct {
	Class    domain.AlertClass
	Severity Severity
	Message  string
}

// Classify maps the identity and liveness outcome of a rejected attempt to
// an alert classification. Returns false when the pattern is not alertable
// (both checks passed, so the rejection had an administrative cause).
func Classify(matched, blinkDetected bool) (Classification, bool) {
	switch {
	case matched && !blinkDetected:
		// The right face without a blink reads like a photo or replay.
		return Classification{
			Class:    domain.AlertSpoofSuspected,
			Severity: SeverityWarning,
			Message:  domain.AlertMessage(domain.AlertSpoofSuspected),
		}, true
	case !matched && !blinkDetected:
		return Classification{
			Class:    domain.AlertUnauthorizedSpoof,
			Severity: SeverityCritical,
			Message:  domain.AlertMessage(domain.AlertUnauthorizedSpoof),
		}, true
	case !matched && blinkDetected:
		return Classification{
			Class:    domain.AlertUnauthorized,
			Severity: SeverityWarning,
			Message:  domain.AlertMessage(domain.AlertUnauthorized),
		}, true
	default:
		return Classification{}, false
	}
}
