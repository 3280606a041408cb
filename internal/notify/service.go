package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cuentame-ec/cuentame/pkg/logging"
)

var notificationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cuentame",
		Subsystem: "notify",
		Name:      "notifications_total",
		Help:      "Notifications written, by kind.",
	},
	[]string{"kind"},
)

func init() {
	prometheus.MustRegister(notificationsTotal)
}

// Service writes reporter notifications and fans out an email copy to
// the DECE inbox when one is configured. Satisfies the case lifecycle
// notifier contract.
type Service struct {
	store           Store
	email           EmailSender
	staffRecipients []string
	logger          *logging.Logger
	now             func() time.Time
}

// NewService wires the notification service. email and recipients are
// optional; without them notifications stay in-app only.
func NewService(store Store, email EmailSender, staffRecipients []string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:           store,
		email:           email,
		staffRecipients: staffRecipients,
		logger:          logger,
		now:             time.Now,
	}
}

// Notify records one in-app notification for the reporter. The email
// copy is best effort: a failed send is logged and the in-app entry
// still counts as delivered.
func (s *Service) Notify(ctx context.Context, reporterCode, title, body, kind, caseID string) error {
	n := &Notification{
		ID:           uuid.NewString(),
		ReporterCode: reporterCode,
		CaseID:       caseID,
		Kind:         kind,
		Title:        title,
		Body:         body,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Insert(ctx, n); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	notificationsTotal.WithLabelValues(kind).Inc()

	if s.email != nil && len(s.staffRecipients) > 0 {
		subject := fmt.Sprintf("Cuéntame: %s", title)
		emailBody := fmt.Sprintf("%s\n\nCaso: %s\nCódigo de la persona reportante: %s", body, caseID, reporterCode)
		for _, recipient := range s.staffRecipients {
			msg := EmailMessage{To: recipient, Subject: subject, Body: emailBody}
			if err := s.email.Send(ctx, msg); err != nil {
				s.logger.Error("notify: failed to send email copy", "error", err, "to", recipient)
			}
		}
	}
	return nil
}
