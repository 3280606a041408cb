package cases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cuentame-ec/cuentame/internal/classifier"
	"github.com/cuentame-ec/cuentame/internal/protocol"
)

// PgxPool is the pool subset used by the repository. Satisfied by
// *pgxpool.Pool and by pgxmock in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores cases as whole documents: scalar columns
// for filterable fields, JSONB for the nested snapshots.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("cases: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const caseColumns = `id, reporter_code, reporter_role, created_at, updated_at, status,
		typology, risk, summary, recommendations, psychographics,
		assigned_protocol, assigned_to, route, transcript, interventions`

// Save upserts the full case row. Last write wins on concurrent edits.
func (r *PostgresRepository) Save(ctx context.Context, c *Case) error {
	recommendations, err := json.Marshal(c.Recommendations)
	if err != nil {
		return fmt.Errorf("cases: marshal recommendations: %w", err)
	}
	psychographics, err := json.Marshal(c.Psychographics)
	if err != nil {
		return fmt.Errorf("cases: marshal psychographics: %w", err)
	}
	transcript, err := json.Marshal(c.Transcript)
	if err != nil {
		return fmt.Errorf("cases: marshal transcript: %w", err)
	}
	interventions, err := json.Marshal(c.Interventions)
	if err != nil {
		return fmt.Errorf("cases: marshal interventions: %w", err)
	}

	query := `
		INSERT INTO cases (` + caseColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (id) DO UPDATE SET
			updated_at = EXCLUDED.updated_at,
			status = EXCLUDED.status,
			interventions = EXCLUDED.interventions
	`
	if _, err := r.pool.Exec(ctx, query,
		c.ID,
		c.ReporterCode,
		c.ReporterRole,
		c.CreatedAt,
		c.UpdatedAt,
		string(c.Status),
		c.Typology,
		string(c.Risk),
		c.Summary,
		recommendations,
		psychographics,
		string(c.AssignedProtocol),
		c.AssignedTo,
		c.Route,
		transcript,
		interventions,
	); err != nil {
		return fmt.Errorf("cases: save failed: %w", err)
	}
	return nil
}

// GetByID fetches one case.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1`
	c, err := scanCase(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("cases: select failed: %w", err)
	}
	return c, nil
}

// ListAll returns cases matching the filter, newest first.
func (r *PostgresRepository) ListAll(ctx context.Context, filter ListFilter) ([]*Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE 1=1`
	args := []any{}
	idx := 1
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, string(filter.Status))
		idx++
	}
	if filter.Risk != "" {
		query += fmt.Sprintf(" AND risk = $%d", idx)
		args = append(args, string(filter.Risk))
		idx++
	}
	if filter.Typology != "" {
		query += fmt.Sprintf(" AND typology = $%d", idx)
		args = append(args, filter.Typology)
		idx++
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", idx)
		args = append(args, filter.Limit)
		idx++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", idx)
		args = append(args, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("cases: list failed: %w", err)
	}
	defer rows.Close()
	return collectCases(rows)
}

// ListByReporterCode returns the reporter's cases, newest first.
func (r *PostgresRepository) ListByReporterCode(ctx context.Context, code string) ([]*Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE reporter_code = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("cases: list by reporter failed: %w", err)
	}
	defer rows.Close()
	return collectCases(rows)
}

// Stats aggregates dashboard counters in one scan, optionally bounded
// by creation time.
func (r *PostgresRepository) Stats(ctx context.Context, rng StatsRange) (*Stats, error) {
	query := `SELECT status, risk, typology, COUNT(*) FROM cases WHERE 1=1`
	args := []any{}
	idx := 1
	if !rng.From.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", idx)
		args = append(args, rng.From)
		idx++
	}
	if !rng.To.IsZero() {
		query += fmt.Sprintf(" AND created_at < $%d", idx)
		args = append(args, rng.To)
	}
	query += ` GROUP BY status, risk, typology`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("cases: stats failed: %w", err)
	}
	defer rows.Close()

	stats := &Stats{
		ByStatus:   map[Status]int{},
		ByRisk:     map[protocol.Risk]int{},
		ByTypology: map[string]int{},
	}
	for rows.Next() {
		var status, risk, typology string
		var count int
		if err := rows.Scan(&status, &risk, &typology, &count); err != nil {
			return nil, fmt.Errorf("cases: stats scan: %w", err)
		}
		stats.Total += count
		stats.ByStatus[Status(status)] += count
		stats.ByRisk[protocol.Risk(risk)] += count
		stats.ByTypology[typology] += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cases: stats rows: %w", err)
	}
	return stats, nil
}

func collectCases(rows pgx.Rows) ([]*Case, error) {
	var out []*Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("cases: scan failed: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cases: rows: %w", err)
	}
	return out, nil
}

func scanCase(row pgx.Row) (*Case, error) {
	var c Case
	var status, risk, assignedProtocol string
	var recommendations, psychographics, transcript, interventions []byte

	if err := row.Scan(
		&c.ID,
		&c.ReporterCode,
		&c.ReporterRole,
		&c.CreatedAt,
		&c.UpdatedAt,
		&status,
		&c.Typology,
		&risk,
		&c.Summary,
		&recommendations,
		&psychographics,
		&assignedProtocol,
		&c.AssignedTo,
		&c.Route,
		&transcript,
		&interventions,
	); err != nil {
		return nil, err
	}

	c.Status = Status(status)
	c.Risk = protocol.Risk(risk)
	c.AssignedProtocol = protocol.Type(assignedProtocol)
	if len(recommendations) > 0 {
		if err := json.Unmarshal(recommendations, &c.Recommendations); err != nil {
			return nil, fmt.Errorf("decode recommendations: %w", err)
		}
	}
	if len(psychographics) > 0 {
		if err := json.Unmarshal(psychographics, &c.Psychographics); err != nil {
			return nil, fmt.Errorf("decode psychographics: %w", err)
		}
	}
	if len(transcript) > 0 {
		var turns []classifier.Turn
		if err := json.Unmarshal(transcript, &turns); err != nil {
			return nil, fmt.Errorf("decode transcript: %w", err)
		}
		c.Transcript = turns
	}
	if len(interventions) > 0 {
		if err := json.Unmarshal(interventions, &c.Interventions); err != nil {
			return nil, fmt.Errorf("decode interventions: %w", err)
		}
	}
	return &c, nil
}
