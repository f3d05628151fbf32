package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps users in process memory. Each instance is independent.
type MemoryRepository struct {
	mu      sync.RWMutex
	users   map[string]*User
	byPhone map[string]string
}

// NewMemoryRepository creates an empty in-memory user store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:   make(map[string]*User),
		byPhone: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byPhone[u.Phone]; ok {
		return ErrPhoneAlreadyUsed
	}
	u.ID = uuid.NewString()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Favorites == nil {
		u.Favorites = []string{}
	}
	r.users[u.ID] = u.clone()
	r.byPhone[u.Phone] = u.ID
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u.clone(), nil
}

func (r *MemoryRepository) GetByPhone(_ context.Context, phone string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPhone[phone]
	if !ok {
		return nil, ErrNotFound
	}
	return r.users[id].clone(), nil
}

func (r *MemoryRepository) Update(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	if owner, taken := r.byPhone[u.Phone]; taken && owner != u.ID {
		return ErrPhoneAlreadyUsed
	}

	delete(r.byPhone, stored.Phone)
	r.byPhone[u.Phone] = u.ID

	stored.DisplayName = u.DisplayName
	stored.Phone = u.Phone
	if u.Organization != nil {
		org := *u.Organization
		stored.Organization = &org
	} else {
		stored.Organization = nil
	}
	return nil
}

func (r *MemoryRepository) UpdateLastLogin(_ context.Context, id string, t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLoginAt = &t
	return nil
}

func (r *MemoryRepository) AddFavorite(_ context.Context, userID, serviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	if !u.HasFavorite(serviceID) {
		u.Favorites = append(u.Favorites, serviceID)
	}
	return nil
}

func (r *MemoryRepository) RemoveFavorite(_ context.Context, userID, serviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	kept := u.Favorites[:0]
	for _, id := range u.Favorites {
		if id != serviceID {
			kept = append(kept, id)
		}
	}
	u.Favorites = kept
	return nil
}

func (r *MemoryRepository) ListFavorites(_ context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]string{}, u.Favorites...), nil
}
