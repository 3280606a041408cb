package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrEmptyBody is returned when a message has no text.
var ErrEmptyBody = errors.New("message body is empty")

// PgxPool is the pool subset used by the store.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store persists case messages in Postgres.
type Store struct {
	pool PgxPool
	now  func() time.Time
}

// NewStore builds a message store backed by pgx.
func NewStore(pool PgxPool) *Store {
	if pool == nil {
		panic("messaging: pgx pool required")
	}
	return &Store{pool: pool, now: time.Now}
}

// Insert appends one message to the case thread.
func (s *Store) Insert(ctx context.Context, caseID, sender, body string) (*Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}

	m := &Message{
		ID:        uuid.NewString(),
		CaseID:    caseID,
		Sender:    sender,
		Body:      body,
		CreatedAt: s.now().UTC(),
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO case_messages (id, case_id, sender, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, m.ID, m.CaseID, m.Sender, m.Body, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("messaging: insert failed: %w", err)
	}
	return m, nil
}

// ListByCase returns the thread for one case, oldest first. Pass a
// non-zero since to fetch only messages after that instant; clients
// poll with the timestamp of the last message they hold.
func (s *Store) ListByCase(ctx context.Context, caseID string, since time.Time) ([]*Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, case_id, sender, body, created_at
		FROM case_messages
		WHERE case_id = $1 AND created_at > $2
		ORDER BY created_at ASC
	`, caseID, since)
	if err != nil {
		return nil, fmt.Errorf("messaging: list failed: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows)
}

// ListInbox returns messages across all of the reporter's cases,
// newest first, for the notifications drawer.
func (s *Store) ListInbox(ctx context.Context, reporterCode string, since time.Time) ([]*Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.id, m.case_id, m.sender, m.body, m.created_at
		FROM case_messages m
		JOIN cases c ON c.id = m.case_id
		WHERE c.reporter_code = $1 AND m.created_at > $2
		ORDER BY m.created_at DESC
	`, reporterCode, since)
	if err != nil {
		return nil, fmt.Errorf("messaging: inbox failed: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows)
}

func collectMessages(rows pgx.Rows) ([]*Message, error) {
	var out []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.CaseID, &m.Sender, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("messaging: scan failed: %w", err)
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("messaging: rows: %w", err)
	}
	return out, nil
}
