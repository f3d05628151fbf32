package state

import (
	"context"
	"slices"
	"sync"

	"github.com/nekogravitycat/civic-directory-backend/internal/client"
	"github.com/nekogravitycat/civic-directory-backend/internal/listing"
)

// ServicesSnapshot is a copy of the services container. Filtered is the
// directory narrowed by Search and Refine.
type ServicesSnapshot struct {
	Services []*listing.Service
	Filtered []*listing.Service
	Selected *listing.Service
	Search   listing.SearchFilter
	Refine   listing.RefineFilter
	Loading  bool
	Error    string
}

// ServicesState holds the directory and the active filters. The filtered
// view is recomputed whenever the directory or a filter changes.
type ServicesState struct {
	api client.API

	mu       sync.RWMutex
	services []*listing.Service
	filtered []*listing.Service
	selected *listing.Service
	search   listing.SearchFilter
	refine   listing.RefineFilter
	inflight int
	err      string
}

func NewServicesState(api client.API) *ServicesState {
	return &ServicesState{api: api}
}

// Load fetches the full directory.
func (s *ServicesState) Load(ctx context.Context) error {
	s.mu.Lock()
	s.inflight++
	s.err = ""
	s.mu.Unlock()

	list, err := s.api.ListServices(detach(ctx))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		s.err = errorMessage(err)
		return err
	}
	s.services = list
	s.recompute()
	return nil
}

// Select fetches one service for the detail view.
func (s *ServicesState) Select(ctx context.Context, id string) error {
	s.mu.Lock()
	s.inflight++
	s.err = ""
	s.mu.Unlock()

	svc, err := s.api.GetService(detach(ctx), id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		s.err = errorMessage(err)
		return err
	}
	s.selected = svc
	return nil
}

func (s *ServicesState) SetSearch(f listing.SearchFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = f
	s.recompute()
}

func (s *ServicesState) SetRefine(f listing.RefineFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.Categories = slices.Clone(f.Categories)
	f.Locations = slices.Clone(f.Locations)
	s.refine = f
	s.recompute()
}

func (s *ServicesState) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = listing.SearchFilter{}
	s.refine = listing.RefineFilter{}
	s.recompute()
}

func (s *ServicesState) Snapshot() ServicesSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refine := s.refine
	refine.Categories = slices.Clone(s.refine.Categories)
	refine.Locations = slices.Clone(s.refine.Locations)
	return ServicesSnapshot{
		Services: slices.Clone(s.services),
		Filtered: slices.Clone(s.filtered),
		Selected: s.selected,
		Search:   s.search,
		Refine:   refine,
		Loading:  s.inflight > 0,
		Error:    s.err,
	}
}

// recompute must be called with mu held.
func (s *ServicesState) recompute() {
	s.filtered = listing.Apply(s.services, s.search, s.refine)
}
