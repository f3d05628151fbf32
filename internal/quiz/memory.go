package quiz

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/request"
)

type MemoryRepository struct {
	mu      sync.RWMutex
	quizzes map[string]*Quiz
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{quizzes: make(map[string]*Quiz)}
}

func (r *MemoryRepository) Create(_ context.Context, q *Quiz, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	q.ID = uuid.NewString()
	q.CreatedAt = now
	q.UpdatedAt = now
	r.quizzes[q.ID] = q.clone()
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.quizzes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return q.clone(), nil
}

func (r *MemoryRepository) List(_ context.Context, filter Filter) ([]*Quiz, int, error) {
	return r.list(func(q *Quiz) bool { return matches(q, filter) }, filter.ListParams)
}

func (r *MemoryRepository) ListByProvider(_ context.Context, providerID string, filter Filter) ([]*Quiz, int, error) {
	return r.list(func(q *Quiz) bool { return q.ProviderID == providerID && matches(q, filter) }, filter.ListParams)
}

func (r *MemoryRepository) list(keep func(*Quiz) bool, page request.ListParams) ([]*Quiz, int, error) {
	r.mu.RLock()
	out := []*Quiz{}
	for _, q := range r.quizzes {
		if keep(q) {
			out = append(out, q.clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	items, total := request.Paginate(out, page)
	return items, total, nil
}

func (r *MemoryRepository) Update(_ context.Context, q *Quiz, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.quizzes[q.ID]
	if !ok {
		return ErrNotFound
	}
	q.CreatedAt = old.CreatedAt
	q.UpdatedAt = now
	r.quizzes[q.ID] = q.clone()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.quizzes[id]; !ok {
		return ErrNotFound
	}
	delete(r.quizzes, id)
	return nil
}

func matches(q *Quiz, f Filter) bool {
	if s := strings.ToLower(strings.TrimSpace(f.Query)); s != "" &&
		!strings.Contains(strings.ToLower(q.Title), s) &&
		!strings.Contains(strings.ToLower(q.Description), s) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(q.Category, f.Category) {
		return false
	}
	if f.Difficulty != "" && q.Difficulty != f.Difficulty {
		return false
	}
	if f.LessonID != "" && (q.LessonID == nil || *q.LessonID != f.LessonID) {
		return false
	}
	return true
}
