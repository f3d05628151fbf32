package state

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/nekogravitycat/civic-directory-backend/internal/announcement"
	"github.com/nekogravitycat/civic-directory-backend/internal/client"
)

// TokenSource supplies the access token of the signed-in provider.
type TokenSource interface {
	Token() string
}

// AnnouncementsSnapshot is a copy of both announcement lists.
type AnnouncementsSnapshot struct {
	Public  []*announcement.Announcement
	Mine    []*announcement.Announcement
	Loading bool
	Error   string
}

// AnnouncementsState keeps the public list and the provider's own list in
// step. After a write resolves, the stored record replaces its entry in Mine
// and is inserted into, replaced in or removed from Public according to its
// visibility at that moment. New entries land at their storage position
// (announcement.Before), so both lists keep the order the backend lists them in.
type AnnouncementsState struct {
	api    client.API
	tokens TokenSource
	now    func() time.Time

	mu      sync.RWMutex
	public   []*announcement.Announcement
	mine     []*announcement.Announcement
	inflight int
	err      string
}

func NewAnnouncementsState(api client.API, tokens TokenSource) *AnnouncementsState {
	return &AnnouncementsState{api: api, tokens: tokens, now: time.Now}
}

func (s *AnnouncementsState) LoadPublic(ctx context.Context) error {
	s.begin()
	list, err := s.api.ListPublicAnnouncements(detach(ctx))
	return s.finish(err, func() { s.public = list })
}

func (s *AnnouncementsState) LoadMine(ctx context.Context) error {
	token, err := s.token()
	if err != nil {
		return err
	}
	s.begin()
	list, err := s.api.ListProviderAnnouncements(detach(ctx), token)
	return s.finish(err, func() { s.mine = list })
}

func (s *AnnouncementsState) Create(ctx context.Context, in client.AnnouncementInput) (*announcement.Announcement, error) {
	token, err := s.token()
	if err != nil {
		return nil, err
	}
	s.begin()
	a, err := s.api.CreateAnnouncement(detach(ctx), token, in)
	err = s.finish(err, func() {
		s.mine = announcement.InsertOrdered(s.mine, a)
		if a.IsPublic(s.now()) {
			s.public = announcement.InsertOrdered(s.public, a)
		}
	})
	return a, err
}

func (s *AnnouncementsState) Update(ctx context.Context, id string, in client.AnnouncementInput) (*announcement.Announcement, error) {
	token, err := s.token()
	if err != nil {
		return nil, err
	}
	s.begin()
	a, err := s.api.UpdateAnnouncement(detach(ctx), token, id, in)
	err = s.finish(err, func() {
		s.mine = upsert(s.mine, a)
		if a.IsPublic(s.now()) {
			s.public = upsert(s.public, a)
		} else {
			s.public = remove(s.public, a.ID)
		}
	})
	return a, err
}

func (s *AnnouncementsState) Delete(ctx context.Context, id string) error {
	token, err := s.token()
	if err != nil {
		return err
	}
	s.begin()
	err = s.api.DeleteAnnouncement(detach(ctx), token, id)
	return s.finish(err, func() {
		s.mine = remove(s.mine, id)
		s.public = remove(s.public, id)
	})
}

func (s *AnnouncementsState) Snapshot() AnnouncementsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return AnnouncementsSnapshot{
		Public:  slices.Clone(s.public),
		Mine:    slices.Clone(s.mine),
		Loading: s.inflight > 0,
		Error:   s.err,
	}
}

func (s *AnnouncementsState) token() (string, error) {
	token := s.tokens.Token()
	if token == "" {
		s.mu.Lock()
		s.err = ErrNotSignedIn.Error()
		s.mu.Unlock()
		return "", ErrNotSignedIn
	}
	return token, nil
}

func (s *AnnouncementsState) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight++
	s.err = ""
}

// finish records err, or runs apply under the lock when the request succeeded.
func (s *AnnouncementsState) finish(err error, apply func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		s.err = errorMessage(err)
		return err
	}
	apply()
	return nil
}

// upsert replaces the entry with a's ID in place or inserts a at its storage position.
func upsert(list []*announcement.Announcement, a *announcement.Announcement) []*announcement.Announcement {
	i := slices.IndexFunc(list, func(x *announcement.Announcement) bool { return x.ID == a.ID })
	if i < 0 {
		return announcement.InsertOrdered(list, a)
	}
	out := slices.Clone(list)
	out[i] = a
	return out
}

func remove(list []*announcement.Announcement, id string) []*announcement.Announcement {
	return slices.DeleteFunc(slices.Clone(list), func(x *announcement.Announcement) bool { return x.ID == id })
}
