package profiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cuentame-ec/cuentame/internal/classifier"
)

// codeAttempts bounds collision retries during registration.
const codeAttempts = 5

// Service registers profiles and folds classifier observations into
// them.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the profile service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Register creates a profile and hands back its access code. The code
// is the only identifier the reporter needs afterwards; the full name
// stays server-side.
func (s *Service) Register(ctx context.Context, fullName string, role Role, grade string) (*Profile, error) {
	now := s.now().UTC()
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := GenerateAccessCode(role)
		if err != nil {
			return nil, err
		}
		p := &Profile{
			ID:         uuid.NewString(),
			FullName:   fullName,
			AccessCode: code,
			Role:       role,
			Grade:      grade,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		err = s.repo.Create(ctx, p)
		if err == nil {
			s.logger.Info("profile registered", "access_code", code, "role", string(role))
			return p, nil
		}
		if !errors.Is(err, ErrCodeTaken) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("profiles: could not allocate access code after %d attempts", codeAttempts)
}

// MergeObserved unions facets the classifier observed during a
// conversation into the reporter's profile. Missing profiles are
// logged and skipped: the case write must never fail on this.
func (s *Service) MergeObserved(ctx context.Context, code string, observed classifier.Psychographics) error {
	p, err := s.repo.GetByAccessCode(ctx, code)
	if err != nil {
		return err
	}
	merged := MergePsychographics(p.Psych, observed)
	p.Psych = merged
	p.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, p)
}
