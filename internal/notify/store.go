package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotificationNotFound is returned when marking an unknown id read.
var ErrNotificationNotFound = errors.New("notification not found")

// Store persists reporter notifications.
type Store interface {
	Insert(ctx context.Context, n *Notification) error
	List(ctx context.Context, reporterCode string, since time.Time) ([]*Notification, error)
	MarkRead(ctx context.Context, reporterCode, id string) error
}

// PgxPool is the pool subset used by the store.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore keeps notifications in the notifications table.
type PostgresStore struct {
	pool PgxPool
}

// NewPostgresStore builds a notification store backed by pgx.
func NewPostgresStore(pool PgxPool) *PostgresStore {
	if pool == nil {
		panic("notify: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

// Insert appends one notification.
func (s *PostgresStore) Insert(ctx context.Context, n *Notification) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (id, reporter_code, case_id, kind, title, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, n.ID, n.ReporterCode, n.CaseID, n.Kind, n.Title, n.Body, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("notify: insert failed: %w", err)
	}
	return nil
}

// List returns the reporter's notifications after since, newest first.
func (s *PostgresStore) List(ctx context.Context, reporterCode string, since time.Time) ([]*Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, reporter_code, case_id, kind, title, body, created_at, read_at
		FROM notifications
		WHERE reporter_code = $1 AND created_at > $2
		ORDER BY created_at DESC
	`, reporterCode, since)
	if err != nil {
		return nil, fmt.Errorf("notify: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.ReporterCode, &n.CaseID, &n.Kind, &n.Title, &n.Body, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, fmt.Errorf("notify: scan failed: %w", err)
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("notify: rows: %w", err)
	}
	return out, nil
}

// MarkRead stamps the notification as read. Scoped to the reporter so
// one code cannot touch another's entries.
func (s *PostgresStore) MarkRead(ctx context.Context, reporterCode, id string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications SET read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND reporter_code = $2
	`, id, reporterCode)
	if err != nil {
		return fmt.Errorf("notify: mark read failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
