package listing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-process Repository.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]*Service
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*Service)}
}

func (r *MemoryRepository) All(_ context.Context) ([]*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Service, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s.clone())
	}
	sortDirectory(out)
	return out, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.clone(), nil
}

func (r *MemoryRepository) ListByProvider(_ context.Context, providerID string) ([]*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Service{}
	for _, s := range r.byID {
		if s.ProviderID == providerID {
			out = append(out, s.clone())
		}
	}
	sortDirectory(out)
	return out, nil
}

func (r *MemoryRepository) Create(_ context.Context, s *Service, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.ID = uuid.NewString()
	s.CreatedAt = now
	s.UpdatedAt = now
	r.byID[s.ID] = s.clone()
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, s *Service, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.byID[s.ID]
	if !ok {
		return ErrNotFound
	}
	s.CreatedAt = old.CreatedAt
	s.UpdatedAt = now
	r.byID[s.ID] = s.clone()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// sortDirectory orders featured services first, then by name, then by ID.
func sortDirectory(services []*Service) {
	sort.SliceStable(services, func(i, j int) bool {
		a, b := services[i], services[j]
		if a.Featured != b.Featured {
			return a.Featured
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}
