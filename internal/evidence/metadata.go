package evidence

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the pool subset used by the metadata store.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresMetadataStore keeps evidence rows next to the cases.
type PostgresMetadataStore struct {
	pool PgxPool
}

// NewPostgresMetadataStore builds a metadata store backed by pgx.
func NewPostgresMetadataStore(pool PgxPool) *PostgresMetadataStore {
	if pool == nil {
		panic("evidence: pgx pool required")
	}
	return &PostgresMetadataStore{pool: pool}
}

// Insert records one evidence item.
func (s *PostgresMetadataStore) Insert(ctx context.Context, item *Item) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO case_evidence (id, case_id, filename, content_type, size_bytes, s3_key, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, item.ID, item.CaseID, item.Filename, item.ContentType, item.SizeBytes, item.Key, item.UploadedAt)
	if err != nil {
		return fmt.Errorf("evidence: insert failed: %w", err)
	}
	return nil
}

// ListByCase returns a case's evidence, oldest first.
func (s *PostgresMetadataStore) ListByCase(ctx context.Context, caseID string) ([]*Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, case_id, filename, content_type, size_bytes, s3_key, uploaded_at
		FROM case_evidence WHERE case_id = $1 ORDER BY uploaded_at ASC
	`, caseID)
	if err != nil {
		return nil, fmt.Errorf("evidence: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.CaseID, &item.Filename, &item.ContentType, &item.SizeBytes, &item.Key, &item.UploadedAt); err != nil {
			return nil, fmt.Errorf("evidence: scan failed: %w", err)
		}
		out = append(out, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("evidence: rows: %w", err)
	}
	return out, nil
}

// InMemoryMetadataStore keeps evidence metadata in a map, for tests.
type InMemoryMetadataStore struct {
	mu    sync.RWMutex
	items map[string][]*Item
}

// NewInMemoryMetadataStore creates an empty in-memory store.
func NewInMemoryMetadataStore() *InMemoryMetadataStore {
	return &InMemoryMetadataStore{items: make(map[string][]*Item)}
}

// Insert records one evidence item.
func (s *InMemoryMetadataStore) Insert(ctx context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *item
	s.items[item.CaseID] = append(s.items[item.CaseID], &clone)
	return nil
}

// ListByCase returns a case's evidence, oldest first.
func (s *InMemoryMetadataStore) ListByCase(ctx context.Context, caseID string) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]*Item(nil), s.items[caseID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}
