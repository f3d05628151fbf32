package file

import (
	"context"
	"sync"
)

// MemoryRepository keeps file metadata in process.
type MemoryRepository struct {
	mu    sync.RWMutex
	files map[string]File
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{files: make(map[string]File)}
}

func (r *MemoryRepository) Create(_ context.Context, f *File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[f.ID] = *f
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[id]; !ok {
		return ErrNotFound
	}
	delete(r.files, id)
	return nil
}
