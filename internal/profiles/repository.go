package profiles

import (
	"context"
	"sync"
)

// Repository defines profile storage keyed by access code.
type Repository interface {
	Create(ctx context.Context, p *Profile) error
	GetByAccessCode(ctx context.Context, code string) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
}

// InMemoryRepository keeps profiles in a map, for tests and local runs.
type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{profiles: make(map[string]*Profile)}
}

// Create stores a new profile. Fails on access code collision.
func (r *InMemoryRepository) Create(ctx context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.AccessCode]; ok {
		return ErrCodeTaken
	}
	clone := *p
	r.profiles[p.AccessCode] = &clone
	return nil
}

// GetByAccessCode looks up a profile by its pseudonymous code.
func (r *InMemoryRepository) GetByAccessCode(ctx context.Context, code string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[code]
	if !ok {
		return nil, ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

// Update overwrites the stored profile. Last write wins.
func (r *InMemoryRepository) Update(ctx context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.AccessCode]; !ok {
		return ErrProfileNotFound
	}
	clone := *p
	r.profiles[p.AccessCode] = &clone
	return nil
}
