package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/cuentame-ec/cuentame/internal/classifier"
)

// Draft is the recoverable snapshot of an unfinished report. One
// draft per reporter code; starting a new report overwrites it.
type Draft struct {
	ReporterCode string            `json:"reporter_code"`
	ReporterRole string            `json:"reporter_role"`
	Turns        []classifier.Turn `json:"turns"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// DraftStore persists drafts in redis so a dropped connection does not
// lose the conversation.
type DraftStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewDraftStore builds a redis-backed draft store.
func NewDraftStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *DraftStore {
	if client == nil {
		panic("intake: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	if tracer == nil {
		tracer = otel.Tracer("cuentame.internal.intake.draft")
	}
	return &DraftStore{redis: client, ttl: ttl, tracer: tracer}
}

func draftKey(reporterCode string) string {
	return fmt.Sprintf("draft:%s", reporterCode)
}

// Save overwrites the reporter's draft and refreshes the TTL.
func (s *DraftStore) Save(ctx context.Context, d *Draft) error {
	ctx, span := s.tracer.Start(ctx, "intake.save_draft")
	defer span.End()

	data, err := json.Marshal(d)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("intake: failed to marshal draft: %w", err)
	}
	if err := s.redis.Set(ctx, draftKey(d.ReporterCode), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("intake: failed to persist draft: %w", err)
	}
	return nil
}

// Load retrieves the reporter's draft. Returns (nil, nil) when no
// draft exists.
func (s *DraftStore) Load(ctx context.Context, reporterCode string) (*Draft, error) {
	ctx, span := s.tracer.Start(ctx, "intake.load_draft")
	defer span.End()

	data, err := s.redis.Get(ctx, draftKey(reporterCode)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("intake: failed to load draft: %w", err)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("intake: failed to decode draft: %w", err)
	}
	return &d, nil
}

// Clear removes the reporter's draft after finalize.
func (s *DraftStore) Clear(ctx context.Context, reporterCode string) error {
	ctx, span := s.tracer.Start(ctx, "intake.clear_draft")
	defer span.End()

	if err := s.redis.Del(ctx, draftKey(reporterCode)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("intake: failed to clear draft: %w", err)
	}
	return nil
}
