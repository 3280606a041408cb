package cases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	interventionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cuentame",
			Subsystem: "cases",
			Name:      "interventions_total",
			Help:      "Interventions logged, by resulting case status.",
		},
		[]string{"status"},
	)
	closuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cuentame",
			Subsystem: "cases",
			Name:      "closures_total",
			Help:      "Cases closed with a final report.",
		},
	)
)

func init() {
	prometheus.MustRegister(interventionsTotal, closuresTotal)
}

// Notifier delivers case updates to the reporter behind the
// pseudonymous code. Implementations must not block on slow channels.
type Notifier interface {
	Notify(ctx context.Context, reporterCode, title, body, kind, caseID string) error
}

// Lifecycle applies staff actions to cases: logging interventions,
// moving status, and closing with a final report.
type Lifecycle struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewLifecycle wires the case lifecycle service. notifier may be nil
// when no reporter-facing channel is configured.
func NewLifecycle(repo Repository, notifier Notifier, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lifecycle{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// AddIntervention appends a staff action to the case and moves it to
// newStatus. The record gets a server-side id and timestamp; client
// ids are ignored. The reporter is notified of the update.
func (l *Lifecycle) AddIntervention(ctx context.Context, caseID string, rec Intervention, newStatus Status) (*Case, error) {
	if strings.TrimSpace(rec.ActionTaken) == "" || strings.TrimSpace(rec.Responsible) == "" {
		return nil, ErrInvalidIntervention
	}

	c, err := l.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	rec.ID = uuid.NewString()
	rec.Date = l.now().UTC()
	c.Interventions = append(c.Interventions, rec)
	c.Status = newStatus
	c.UpdatedAt = rec.Date

	if err := l.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	interventionsTotal.WithLabelValues(string(newStatus)).Inc()

	l.notify(ctx, c, "Actualización de tu caso",
		fmt.Sprintf("Se registró una nueva acción en tu caso. Estado actual: %s.", newStatus.DisplayES()),
		"case_update")

	l.logger.Info("intervention recorded",
		"case_id", caseID,
		"status", string(newStatus),
		"responsible", rec.Responsible)
	return c, nil
}

// UpdateStatus moves the case to newStatus without logging an
// intervention. Used for IN_PROGRESS / RESOLVED transitions from the
// dashboard.
func (l *Lifecycle) UpdateStatus(ctx context.Context, caseID string, newStatus Status) (*Case, error) {
	c, err := l.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == newStatus {
		return c, nil
	}
	c.Status = newStatus
	c.UpdatedAt = l.now().UTC()
	if err := l.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	l.notify(ctx, c, "Actualización de tu caso",
		fmt.Sprintf("El estado de tu caso cambió a %s.", newStatus.DisplayES()),
		"case_update")
	return c, nil
}

// CloseAndReport closes the case with a final summary intervention.
// Idempotent: closing an already-closed case changes nothing and emits
// no second notification.
func (l *Lifecycle) CloseAndReport(ctx context.Context, caseID, finalReport, responsible string) (*Case, error) {
	if strings.TrimSpace(finalReport) == "" || strings.TrimSpace(responsible) == "" {
		return nil, ErrInvalidIntervention
	}

	c, err := l.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == StatusClosed {
		return c, nil
	}

	now := l.now().UTC()
	c.Interventions = append(c.Interventions, Intervention{
		ID:          uuid.NewString(),
		Date:        now,
		ActionTaken: "Cierre del caso",
		Responsible: responsible,
		Outcome:     finalReport,
	})
	c.Status = StatusClosed
	c.UpdatedAt = now

	if err := l.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	closuresTotal.Inc()

	l.notify(ctx, c, "Tu caso fue cerrado",
		"El caso que reportaste fue cerrado con un informe final. Gracias por confiar en Cuéntame.",
		"case_closed")

	l.logger.Info("case closed", "case_id", caseID, "responsible", responsible)
	return c, nil
}

// notify delivers a reporter notification. Delivery failures are
// logged, never surfaced: the case write already succeeded.
func (l *Lifecycle) notify(ctx context.Context, c *Case, title, body, kind string) {
	if l.notifier == nil {
		return
	}
	if err := l.notifier.Notify(ctx, c.ReporterCode, title, body, kind, c.ID); err != nil {
		l.logger.Warn("reporter notification failed", "case_id", c.ID, "error", err)
	}
}
