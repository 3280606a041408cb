package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cuentame-ec/cuentame/internal/classifier"
)

// PgxPool is the pool subset used by the repository.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores profiles in the profiles table, with the
// psychographics document in a JSONB column.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("profiles: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create inserts a new profile row.
func (r *PostgresRepository) Create(ctx context.Context, p *Profile) error {
	psych, err := json.Marshal(p.Psych)
	if err != nil {
		return fmt.Errorf("profiles: marshal psychographics: %w", err)
	}

	query := `
		INSERT INTO profiles (id, full_name, access_code, role, grade, psychographics, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := r.pool.Exec(ctx, query,
		p.ID, p.FullName, p.AccessCode, string(p.Role), p.Grade, psych, p.CreatedAt, p.UpdatedAt,
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrCodeTaken
		}
		return fmt.Errorf("profiles: insert failed: %w", err)
	}
	return nil
}

// GetByAccessCode looks up a profile by its pseudonymous code.
func (r *PostgresRepository) GetByAccessCode(ctx context.Context, code string) (*Profile, error) {
	query := `
		SELECT id, full_name, access_code, role, grade, psychographics, created_at, updated_at
		FROM profiles WHERE access_code = $1
	`
	var p Profile
	var role string
	var psych []byte
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&p.ID, &p.FullName, &p.AccessCode, &role, &p.Grade, &psych, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("profiles: select failed: %w", err)
	}
	p.Role = Role(role)
	if len(psych) > 0 {
		var doc classifier.Psychographics
		if err := json.Unmarshal(psych, &doc); err != nil {
			return nil, fmt.Errorf("profiles: decode psychographics: %w", err)
		}
		p.Psych = doc
	}
	return &p, nil
}

// Update overwrites mutable profile fields. Last write wins.
func (r *PostgresRepository) Update(ctx context.Context, p *Profile) error {
	psych, err := json.Marshal(p.Psych)
	if err != nil {
		return fmt.Errorf("profiles: marshal psychographics: %w", err)
	}

	query := `
		UPDATE profiles
		SET grade = $2, psychographics = $3, updated_at = $4
		WHERE access_code = $1
	`
	tag, err := r.pool.Exec(ctx, query, p.AccessCode, p.Grade, psych, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("profiles: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}
