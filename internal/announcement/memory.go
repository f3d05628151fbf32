package announcement

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/request"
)

// MemoryRepository keeps two views of the same announcements: every record in
// storage order (see Before) and the subset currently in the public list.
// Each write updates both views under one lock, so they never disagree.
//
// Membership in the public view is decided at write time; expiry is
// re-checked on every public read since nothing archives expired records.
type MemoryRepository struct {
	mu       sync.RWMutex
	owned    []*Announcement
	byID     map[string]*Announcement
	public   []*Announcement
	isPublic map[string]bool
}

// NewMemoryRepository creates an empty store. Tests should use a fresh instance each.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:     make(map[string]*Announcement),
		isPublic: make(map[string]bool),
	}
}

func (r *MemoryRepository) Create(_ context.Context, a *Announcement, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a.ID = NewID()
	a.CreatedAt = now
	a.UpdatedAt = now

	stored := a.clone()
	r.owned = InsertOrdered(r.owned, stored)
	r.byID[stored.ID] = stored

	if stored.IsPublic(now) {
		r.insertPublic(stored)
	}
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*Announcement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a.clone(), nil
}

func (r *MemoryRepository) Update(_ context.Context, a *Announcement, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.byID[a.ID]
	if !ok {
		return ErrNotFound
	}

	a.CreatedAt = old.CreatedAt
	a.UpdatedAt = now
	stored := a.clone()

	for i, item := range r.owned {
		if item.ID == a.ID {
			r.owned[i] = stored
			break
		}
	}
	r.byID[a.ID] = stored

	visible := stored.IsPublic(now)
	switch {
	case visible && r.isPublic[a.ID]:
		r.replacePublic(stored)
	case visible:
		r.insertPublic(stored)
	case r.isPublic[a.ID]:
		r.removePublic(a.ID)
	}
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}

	for i, item := range r.owned {
		if item.ID == id {
			r.owned = append(r.owned[:i], r.owned[i+1:]...)
			break
		}
	}
	delete(r.byID, id)

	if r.isPublic[id] {
		r.removePublic(id)
	}
	return nil
}

func (r *MemoryRepository) ListPublic(_ context.Context, filter Filter, now time.Time) ([]*Announcement, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Announcement
	for _, a := range r.public {
		if a.IsPublic(now) && matches(a, filter) {
			out = append(out, a.clone())
		}
	}
	page, total := request.Paginate(out, request.ListParams{Page: filter.Page, PageSize: filter.PageSize})
	return page, total, nil
}

func (r *MemoryRepository) ListByProvider(_ context.Context, providerID string, filter Filter) ([]*Announcement, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Announcement
	for _, a := range r.owned {
		if a.ProviderID != providerID || !matches(a, filter) {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, a.clone())
	}
	page, total := request.Paginate(out, request.ListParams{Page: filter.Page, PageSize: filter.PageSize})
	return page, total, nil
}

// insertPublic places a into the public view at its storage position.
func (r *MemoryRepository) insertPublic(a *Announcement) {
	r.public = InsertOrdered(r.public, a)
	r.isPublic[a.ID] = true
}

func (r *MemoryRepository) replacePublic(a *Announcement) {
	for i, item := range r.public {
		if item.ID == a.ID {
			r.public[i] = a
			return
		}
	}
}

func (r *MemoryRepository) removePublic(id string) {
	for i, item := range r.public {
		if item.ID == id {
			r.public = append(r.public[:i], r.public[i+1:]...)
			break
		}
	}
	delete(r.isPublic, id)
}

// matches applies the keyword and category parts of a filter.
func matches(a *Announcement, f Filter) bool {
	if f.Category != "" && a.Category != f.Category {
		return false
	}
	if kw := strings.ToLower(strings.TrimSpace(f.Keyword)); kw != "" {
		if !strings.Contains(strings.ToLower(a.Title), kw) && !strings.Contains(strings.ToLower(a.Content), kw) {
			return false
		}
	}
	return true
}
