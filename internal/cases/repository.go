package cases

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cuentame-ec/cuentame/internal/protocol"
)

// Repository defines case storage. Whole-case reads and writes, no
// cross-document transactions; concurrent saves are last-write-wins.
type Repository interface {
	Save(ctx context.Context, c *Case) error
	GetByID(ctx context.Context, id string) (*Case, error)
	ListAll(ctx context.Context, filter ListFilter) ([]*Case, error)
	ListByReporterCode(ctx context.Context, code string) ([]*Case, error)
	Stats(ctx context.Context, rng StatsRange) (*Stats, error)
}

// StatsRange bounds dashboard aggregation by creation time. Zero
// values leave that side unbounded.
type StatsRange struct {
	From time.Time
	To   time.Time
}

func (r StatsRange) contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// InMemoryRepository keeps cases in a map, for tests and local runs.
type InMemoryRepository struct {
	mu    sync.RWMutex
	cases map[string]*Case
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{cases: make(map[string]*Case)}
}

// cloneCase copies the case and its slices so callers never share
// backing arrays with the stored copy.
func cloneCase(c *Case) *Case {
	clone := *c
	clone.Recommendations = append([]string(nil), c.Recommendations...)
	clone.Interventions = append([]Intervention(nil), c.Interventions...)
	clone.Transcript = append(c.Transcript[:0:0], c.Transcript...)
	return &clone
}

// Save stores a copy of the case keyed by id.
func (r *InMemoryRepository) Save(ctx context.Context, c *Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cases[c.ID] = cloneCase(c)
	return nil
}

// GetByID retrieves a copy of the case by id.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cases[id]
	if !ok {
		return nil, ErrCaseNotFound
	}
	return cloneCase(c), nil
}

// ListAll returns cases matching the filter, newest first.
func (r *InMemoryRepository) ListAll(ctx context.Context, filter ListFilter) ([]*Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Case, 0, len(r.cases))
	for _, c := range r.cases {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Risk != "" && c.Risk != filter.Risk {
			continue
		}
		if filter.Typology != "" && c.Typology != filter.Typology {
			continue
		}
		out = append(out, cloneCase(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*Case{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// ListByReporterCode returns the reporter's cases, newest first.
func (r *InMemoryRepository) ListByReporterCode(ctx context.Context, code string) ([]*Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Case
	for _, c := range r.cases {
		if c.ReporterCode == code {
			out = append(out, cloneCase(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Stats aggregates counters over cases created inside the range.
func (r *InMemoryRepository) Stats(ctx context.Context, rng StatsRange) (*Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &Stats{
		ByStatus:   map[Status]int{},
		ByRisk:     map[protocol.Risk]int{},
		ByTypology: map[string]int{},
	}
	for _, c := range r.cases {
		if !rng.contains(c.CreatedAt) {
			continue
		}
		stats.Total++
		stats.ByStatus[c.Status]++
		stats.ByRisk[c.Risk]++
		stats.ByTypology[c.Typology]++
	}
	return stats, nil
}
