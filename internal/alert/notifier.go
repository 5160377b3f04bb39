package alert

import (
	"context"
	"log/slog"

	"github.com/tryshirtonline/face-attandance/internal/webhook"
)

// Broadcaster delivers the alert to external subscribers.
type Broadcaster interface {
	Broadcast(ctx context.Context, eventType string, data interface{}) error
}

// Notification is the payload sent to operators and webhook subscribers.
type Notification struct {
	Class          string  `json:"class"`
	Severity       string  `json:"severity"`
	Message        string  `json:"message"`
	EmployeeNumber string  `json:"employee_number"`
	Confidence     float64 `json:"confidence"`
	BlinkDetected  bool    `json:"blink_detected"`
}

type Notifier struct {
	broadcaster Broadcaster
	logger      *slog.Logger
}

func NewNotifier(broadcaster Broadcaster, logger *slog.Logger) *Notifier {
	return &Notifier{
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Notify logs the alert and fans it out to webhook subscribers. Delivery
// failure is logged and swallowed; the attempt outcome already carries the
// alert text for the operator.
func (n *Notifier) Notify(ctx context.Context, notification Notification) {
	logAttrs := []any{
		"class", notification.Class,
		"employee_number", notification.EmployeeNumber,
		"confidence", notification.Confidence,
		"blink_detected", notification.BlinkDetected,
	}

	if notification.Severity == string(SeverityCritical) {
		n.logger.Error(notification.Message, logAttrs...)
	} else {
		n.logger.Warn(notification.Message, logAttrs...)
	}

	if n.broadcaster == nil {
		return
	}

	if err := n.broadcaster.Broadcast(ctx, webhook.EventSecurityAlert, notification); err != nil {
		n.logger.Error("failed to broadcast security alert",
			"class", notification.Class,
			"error", err,
		)
	}
}
