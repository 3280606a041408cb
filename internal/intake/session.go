package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cuentame-ec/cuentame/internal/cases"
	"github.com/cuentame-ec/cuentame/internal/classifier"
	"github.com/cuentame-ec/cuentame/internal/protocol"
)

// State is the session phase. Turns are accepted only in COLLECTING;
// FINALIZING covers the classify-and-persist window; DONE means the
// case exists.
type State string

const (
	StateCollecting State = "COLLECTING"
	StateFinalizing State = "FINALIZING"
	StateDone       State = "DONE"
)

var (
	sessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cuentame",
			Subsystem: "intake",
			Name:      "sessions_started_total",
			Help:      "Intake sessions started or resumed.",
		},
	)
	reportsFinalized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cuentame",
			Subsystem: "intake",
			Name:      "reports_finalized_total",
			Help:      "Reports finalized into cases, by risk level.",
		},
		[]string{"risk"},
	)
)

func init() {
	prometheus.MustRegister(sessionsStarted, reportsFinalized)
}

// Session is one reporter's in-progress conversation. Guarded by its
// own mutex; the manager hands out at most one per reporter code.
type Session struct {
	mu           sync.Mutex
	ReporterCode string
	ReporterRole string
	State        State
	Turns        []classifier.Turn
	CaseID       string
}

// Snapshot returns a copy of the turns for safe concurrent reads.
func (s *Session) Snapshot() []classifier.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(s.Turns[:0:0], s.Turns...)
}

// ProfileMerger folds observed psychographics into a profile.
type ProfileMerger interface {
	MergeObserved(ctx context.Context, code string, observed classifier.Psychographics) error
}

// Classifier produces a structured classification for a transcript.
// Satisfied by classifier.Service.
type Classifier interface {
	Classify(ctx context.Context, transcript []classifier.Turn) classifier.Result
}

// Manager owns live sessions and drives the finalize pipeline.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	classifier Classifier
	repo       cases.Repository
	profiles   ProfileMerger
	notifier   cases.Notifier
	drafts     *DraftStore
	logger     *slog.Logger
	now        func() time.Time
}

// NewManager wires the intake session manager. profiles, notifier and
// drafts may be nil in reduced deployments.
func NewManager(cls Classifier, repo cases.Repository, merger ProfileMerger, notifier cases.Notifier, drafts *DraftStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions:   make(map[string]*Session),
		classifier: cls,
		repo:       repo,
		profiles:   merger,
		notifier:   notifier,
		drafts:     drafts,
		logger:     logger,
		now:        time.Now,
	}
}

// StartOrResume returns the live session for the reporter, recovering
// the redis draft when the process has no session in memory.
func (m *Manager) StartOrResume(ctx context.Context, reporterCode, reporterRole string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[reporterCode]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	s := &Session{
		ReporterCode: reporterCode,
		ReporterRole: reporterRole,
		State:        StateCollecting,
	}
	if m.drafts != nil {
		draft, err := m.drafts.Load(ctx, reporterCode)
		if err != nil {
			m.logger.Warn("draft recovery failed", "reporter_code", reporterCode, "error", err)
		} else if draft != nil {
			s.Turns = draft.Turns
			if draft.ReporterRole != "" {
				s.ReporterRole = draft.ReporterRole
			}
		}
	}

	m.mu.Lock()
	if existing, ok := m.sessions[reporterCode]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.sessions[reporterCode] = s
	m.mu.Unlock()

	sessionsStarted.Inc()
	return s, nil
}

// AppendTurn records one message in the conversation. Whitespace-only
// text is a silent no-op. Each accepted turn refreshes the draft.
func (m *Manager) AppendTurn(ctx context.Context, s *Session, sender, text string) (*classifier.Turn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	s.mu.Lock()
	if s.State != StateCollecting {
		s.mu.Unlock()
		return nil, ErrSessionFinalized
	}
	turn := classifier.Turn{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: m.now().UTC(),
	}
	s.Turns = append(s.Turns, turn)
	draft := &Draft{
		ReporterCode: s.ReporterCode,
		ReporterRole: s.ReporterRole,
		Turns:        append(s.Turns[:0:0], s.Turns...),
		UpdatedAt:    turn.Timestamp,
	}
	s.mu.Unlock()

	if m.drafts != nil {
		if err := m.drafts.Save(ctx, draft); err != nil {
			m.logger.Warn("draft save failed", "reporter_code", s.ReporterCode, "error", err)
		}
	}
	return &turn, nil
}

// Finalize turns the conversation into a case. Idempotent: once a
// case exists, subsequent calls return it without re-classifying.
func (m *Manager) Finalize(ctx context.Context, s *Session) (*cases.Case, error) {
	s.mu.Lock()
	switch s.State {
	case StateDone:
		caseID := s.CaseID
		s.mu.Unlock()
		return m.repo.GetByID(ctx, caseID)
	case StateFinalizing:
		s.mu.Unlock()
		return nil, ErrFinalizeInProgress
	}
	if !hasReporterTurn(s.Turns) {
		s.mu.Unlock()
		return nil, ErrEmptyConversation
	}
	s.State = StateFinalizing
	transcript := append(s.Turns[:0:0], s.Turns...)
	s.mu.Unlock()

	c, err := m.buildCase(ctx, s, transcript)
	if err != nil {
		s.mu.Lock()
		s.State = StateCollecting
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	s.State = StateDone
	s.CaseID = c.ID
	s.mu.Unlock()

	m.afterFinalize(ctx, s, c)
	return c, nil
}

// buildCase runs classification, routing, and the case write. Only the
// persistence step can fail; classification always yields a result.
func (m *Manager) buildCase(ctx context.Context, s *Session, transcript []classifier.Turn) (*cases.Case, error) {
	result := m.classifier.Classify(ctx, transcript)
	decision := protocol.DetermineProtocol(result.Risk, result.Typology)

	now := m.now().UTC()
	c := &cases.Case{
		ID:               uuid.NewString(),
		ReporterCode:     s.ReporterCode,
		ReporterRole:     s.ReporterRole,
		CreatedAt:        now,
		UpdatedAt:        now,
		Status:           cases.StatusOpen,
		Typology:         result.Typology,
		Risk:             result.Risk,
		Summary:          result.Summary,
		Recommendations:  result.Recommendations,
		Psychographics:   result.Psychographics,
		AssignedProtocol: decision.Type,
		AssignedTo:       decision.AssignedTo,
		Route:            decision.Route,
		Transcript:       transcript,
	}

	if err := m.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("intake: persist case: %w", err)
	}
	reportsFinalized.WithLabelValues(string(result.Risk)).Inc()

	m.logger.Info("report finalized",
		"case_id", c.ID,
		"risk", string(result.Risk),
		"typology", result.Typology,
		"protocol", string(decision.Type),
		"fallback", result.Fallback)
	return c, nil
}

// afterFinalize runs the side effects that must not fail the case
// write: profile merge, reporter notification, draft cleanup.
func (m *Manager) afterFinalize(ctx context.Context, s *Session, c *cases.Case) {
	if m.profiles != nil {
		if err := m.profiles.MergeObserved(ctx, s.ReporterCode, c.Psychographics); err != nil {
			m.logger.Warn("profile merge failed", "reporter_code", s.ReporterCode, "error", err)
		}
	}
	if m.notifier != nil {
		body := fmt.Sprintf("Tu reporte fue recibido y asignado a %s. Nivel de riesgo: %s.",
			c.AssignedTo, c.Risk.DisplayES())
		if err := m.notifier.Notify(ctx, s.ReporterCode, "Reporte recibido", body, "case_created", c.ID); err != nil {
			m.logger.Warn("reporter notification failed", "case_id", c.ID, "error", err)
		}
	}
	if m.drafts != nil {
		if err := m.drafts.Clear(ctx, s.ReporterCode); err != nil {
			m.logger.Warn("draft clear failed", "reporter_code", s.ReporterCode, "error", err)
		}
	}
}

// Release drops the in-memory session, typically after DONE so the
// reporter can start a fresh report.
func (m *Manager) Release(reporterCode string) {
	m.mu.Lock()
	delete(m.sessions, reporterCode)
	m.mu.Unlock()
}

func hasReporterTurn(turns []classifier.Turn) bool {
	for _, t := range turns {
		if t.Sender == classifier.SenderReporter {
			return true
		}
	}
	return false
}
