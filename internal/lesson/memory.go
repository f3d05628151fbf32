package lesson

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
	lessons map[string]Lesson
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{lessons: make(map[string]Lesson)}
}

func (r *MemoryRepository) Create(_ context.Context, l *Lesson, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l.ID = uuid.NewString()
	l.CreatedAt = now
	l.UpdatedAt = now
	r.lessons[l.ID] = *l
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*Lesson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.lessons[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &l, nil
}

func (r *MemoryRepository) List(_ context.Context, filter Filter) ([]*Lesson, int, error) {
	return r.list(func(l *Lesson) bool { return matches(l, filter) }, filter.ListParams)
}

func (r *MemoryRepository) ListByProvider(_ context.Context, providerID string, filter Filter) ([]*Lesson, int, error) {
	return r.list(func(l *Lesson) bool { return l.ProviderID == providerID && matches(l, filter) }, filter.ListParams)
}

func (r *MemoryRepository) list(keep func(*Lesson) bool, page request.ListParams) ([]*Lesson, int, error) {
	r.mu.RLock()
	out := []*Lesson{}
	for _, l := range r.lessons {
		l := l
		if keep(&l) {
			out = append(out, &l)
		}
	}
	r.mu.RUnlock()

	// Newest first, matching the SQL ordering.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	items, total := request.Paginate(out, page)
	return items, total, nil
}

func (r *MemoryRepository) Update(_ context.Context, l *Lesson, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.lessons[l.ID]
	if !ok {
		return ErrNotFound
	}
	l.CreatedAt = old.CreatedAt
	l.UpdatedAt = now
	r.lessons[l.ID] = *l
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lessons[id]; !ok {
		return ErrNotFound
	}
	delete(r.lessons, id)
	return nil
}

func matches(l *Lesson, f Filter) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" &&
		!strings.Contains(strings.ToLower(l.Title), q) &&
		!strings.Contains(strings.ToLower(l.Summary), q) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(l.Category, f.Category) {
		return false
	}
	if f.Difficulty != "" && l.Difficulty != f.Difficulty {
		return false
	}
	return true
}
