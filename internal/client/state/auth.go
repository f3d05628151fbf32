package state

import (
	"context"
	"slices"
	"sync"

	"github.com/nekogravitycat/civic-directory-backend/internal/client"
	"github.com/nekogravitycat/civic-directory-backend/internal/user"
)

// AuthSnapshot is a copy of the auth container at one point in time.
type AuthSnapshot struct {
	User    *user.User
	Token   string
	Loading bool
	Error   string
}

func (s AuthSnapshot) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}

// AuthState tracks the current user, its session token and favorites.
type AuthState struct {
	api client.API

	mu       sync.RWMutex
	user     *user.User
	token    string
	inflight int
	err      string
}

func NewAuthState(api client.API) *AuthState {
	return &AuthState{api: api}
}

func (s *AuthState) Login(ctx context.Context, phone, password string) error {
	s.begin()
	session, err := s.api.Login(detach(ctx), phone, password)
	s.finishSession(session, err)
	return err
}

func (s *AuthState) Register(ctx context.Context, req user.RegisterRequest) error {
	s.begin()
	session, err := s.api.Register(detach(ctx), req)
	s.finishSession(session, err)
	return err
}

// Logout clears the session. Nothing is sent to the backend.
func (s *AuthState) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
	s.err = ""
}

// Refresh reloads the current user from the backend.
func (s *AuthState) Refresh(ctx context.Context) error {
	token, err := s.requireToken()
	if err != nil {
		return err
	}
	s.begin()
	u, err := s.api.Me(detach(ctx), token)
	s.finishUser(u, err)
	return err
}

func (s *AuthState) UpdateProfile(ctx context.Context, req user.UpdateProfileRequest) error {
	token, err := s.requireToken()
	if err != nil {
		return err
	}
	s.begin()
	u, err := s.api.UpdateProfile(detach(ctx), token, req)
	s.finishUser(u, err)
	return err
}

// ToggleFavorite adds serviceID to the favorites, or removes it when it is
// already there.
func (s *AuthState) ToggleFavorite(ctx context.Context, serviceID string) error {
	token, err := s.requireToken()
	if err != nil {
		return err
	}

	var favorites []string
	if s.IsFavorite(serviceID) {
		favorites, err = s.api.RemoveFavorite(detach(ctx), token, serviceID)
	} else {
		favorites, err = s.api.AddFavorite(detach(ctx), token, serviceID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.err = errorMessage(err)
		return err
	}
	s.err = ""
	if s.user != nil {
		u := *s.user
		u.Favorites = favorites
		s.user = &u
	}
	return nil
}

func (s *AuthState) IsFavorite(serviceID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.HasFavorite(serviceID)
}

// Token implements TokenSource.
func (s *AuthState) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *AuthState) Snapshot() AuthSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := AuthSnapshot{Token: s.token, Loading: s.inflight > 0, Error: s.err}
	if s.user != nil {
		u := *s.user
		u.Favorites = slices.Clone(s.user.Favorites)
		snap.User = &u
	}
	return snap
}

func (s *AuthState) requireToken() (string, error) {
	token := s.Token()
	if token == "" {
		s.mu.Lock()
		s.err = ErrNotSignedIn.Error()
		s.mu.Unlock()
		return "", ErrNotSignedIn
	}
	return token, nil
}

func (s *AuthState) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight++
	s.err = ""
}

func (s *AuthState) finishSession(session *client.Session, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		s.err = errorMessage(err)
		return
	}
	s.user = session.User
	s.token = session.Token
}

func (s *AuthState) finishUser(u *user.User, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		s.err = errorMessage(err)
		return
	}
	s.user = u
}
