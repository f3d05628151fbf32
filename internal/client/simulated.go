package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/nekogravitycat/civic-directory-backend/internal/announcement"
	"github.com/nekogravitycat/civic-directory-backend/internal/app"
	"github.com/nekogravitycat/civic-directory-backend/internal/auth"
	"github.com/nekogravitycat/civic-directory-backend/internal/listing"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/request"
	"github.com/nekogravitycat/civic-directory-backend/internal/user"
)

// SimulatedConfig tunes the in-process backend.
type SimulatedConfig struct {
	// Latency delays every call. Zero resolves immediately.
	Latency time.Duration
	// Fail, when set, is consulted after the delay with the operation name
	// (e.g. "CreateAnnouncement"). A non-nil result rejects the call.
	Fail func(op string) error
}

// Simulated implements API by calling the use-case layer directly. It
// resolves and rejects the same way the HTTP backend does.
type Simulated struct {
	services app.Services
	jwt      *auth.JWTManager
	cfg      SimulatedConfig
}

func NewSimulated(c *app.Container, cfg SimulatedConfig) *Simulated {
	return &Simulated{services: c.Services, jwt: c.JWTManager, cfg: cfg}
}

// wait blocks for the configured latency, then applies the failure injector.
func (s *Simulated) wait(ctx context.Context, op string) error {
	if s.cfg.Latency > 0 {
		timer := time.NewTimer(s.cfg.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	if s.cfg.Fail != nil {
		if err := s.cfg.Fail(op); err != nil {
			return err
		}
	}
	return nil
}

// identify resolves a token the way the auth middleware does.
func (s *Simulated) identify(token string, provider bool) (string, error) {
	if token == "" {
		return "", &APIError{Status: http.StatusUnauthorized, Message: "missing Authorization header"}
	}
	claims, err := s.jwt.ParseAndValidate(token)
	if err != nil {
		return "", &APIError{Status: http.StatusUnauthorized, Message: auth.ErrInvalidToken.Error()}
	}
	if provider && claims.Role != string(user.RoleProvider) {
		return "", &APIError{Status: http.StatusForbidden, Message: "forbidden: service-provider role required"}
	}
	return claims.UserID, nil
}

func (s *Simulated) session(u *user.User) (*Session, error) {
	token, err := s.jwt.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		return nil, reject(err)
	}
	return &Session{Token: token, User: u}, nil
}

func (s *Simulated) Register(ctx context.Context, req user.RegisterRequest) (*Session, error) {
	if err := s.wait(ctx, "Register"); err != nil {
		return nil, err
	}
	u, err := s.services.Users.Register(ctx, req)
	if err != nil {
		return nil, reject(err)
	}
	return s.session(u)
}

func (s *Simulated) Login(ctx context.Context, phone, password string) (*Session, error) {
	if err := s.wait(ctx, "Login"); err != nil {
		return nil, err
	}
	u, err := s.services.Users.Login(ctx, phone, password)
	if err != nil {
		return nil, reject(err)
	}
	return s.session(u)
}

func (s *Simulated) Me(ctx context.Context, token string) (*user.User, error) {
	if err := s.wait(ctx, "Me"); err != nil {
		return nil, err
	}
	userID, err := s.identify(token, false)
	if err != nil {
		return nil, err
	}
	u, err := s.services.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, reject(err)
	}
	return u, nil
}

func (s *Simulated) UpdateProfile(ctx context.Context, token string, req user.UpdateProfileRequest) (*user.User, error) {
	if err := s.wait(ctx, "UpdateProfile"); err != nil {
		return nil, err
	}
	userID, err := s.identify(token, false)
	if err != nil {
		return nil, err
	}
	u, err := s.services.Users.UpdateProfile(ctx, userID, req)
	if err != nil {
		return nil, reject(err)
	}
	return u, nil
}

func (s *Simulated) AddFavorite(ctx context.Context, token, serviceID string) ([]string, error) {
	if err := s.wait(ctx, "AddFavorite"); err != nil {
		return nil, err
	}
	userID, err := s.identify(token, false)
	if err != nil {
		return nil, err
	}
	ids, err := s.services.Users.AddFavorite(ctx, userID, serviceID)
	if err != nil {
		return nil, reject(err)
	}
	return ids, nil
}

func (s *Simulated) RemoveFavorite(ctx context.Context, token, serviceID string) ([]string, error) {
	if err := s.wait(ctx, "RemoveFavorite"); err != nil {
		return nil, err
	}
	userID, err := s.identify(token, false)
	if err != nil {
		return nil, err
	}
	ids, err := s.services.Users.RemoveFavorite(ctx, userID, serviceID)
	if err != nil {
		return nil, reject(err)
	}
	return ids, nil
}

func (s *Simulated) ListServices(ctx context.Context) ([]*listing.Service, error) {
	if err := s.wait(ctx, "ListServices"); err != nil {
		return nil, err
	}
	list, err := collectPages(func(page int) ([]*listing.Service, int, error) {
		return s.services.Directory.List(ctx, listing.Query{
			ListParams: request.ListParams{Page: page, PageSize: request.MaxPageSize},
		})
	})
	if err != nil {
		return nil, reject(err)
	}
	return list, nil
}

func (s *Simulated) GetService(ctx context.Context, id string) (*listing.Service, error) {
	if err := s.wait(ctx, "GetService"); err != nil {
		return nil, err
	}
	svc, err := s.services.Directory.GetByID(ctx, id)
	if err != nil {
		return nil, reject(err)
	}
	return svc, nil
}

func (s *Simulated) ListPublicAnnouncements(ctx context.Context) ([]*announcement.Announcement, error) {
	if err := s.wait(ctx, "ListPublicAnnouncements"); err != nil {
		return nil, err
	}
	list, err := collectPages(func(page int) ([]*announcement.Announcement, int, error) {
		return s.services.Announcements.ListPublic(ctx, announcement.Filter{Page: page, PageSize: request.MaxPageSize})
	})
	if err != nil {
		return nil, reject(err)
	}
	return list, nil
}

func (s *Simulated) ListProviderAnnouncements(ctx context.Context, token string) ([]*announcement.Announcement, error) {
	if err := s.wait(ctx, "ListProviderAnnouncements"); err != nil {
		return nil, err
	}
	providerID, err := s.identify(token, true)
	if err != nil {
		return nil, err
	}
	list, err := collectPages(func(page int) ([]*announcement.Announcement, int, error) {
		return s.services.Announcements.ListByProvider(ctx, providerID, announcement.Filter{Page: page, PageSize: request.MaxPageSize})
	})
	if err != nil {
		return nil, reject(err)
	}
	return list, nil
}

func (s *Simulated) CreateAnnouncement(ctx context.Context, token string, in AnnouncementInput) (*announcement.Announcement, error) {
	if err := s.wait(ctx, "CreateAnnouncement"); err != nil {
		return nil, err
	}
	providerID, err := s.identify(token, true)
	if err != nil {
		return nil, err
	}
	a, err := s.services.Announcements.Create(ctx, providerID, announcement.CreateRequest{
		Title:     in.Title,
		Content:   in.Content,
		Category:  in.Category,
		Status:    in.Status,
		ExpiresAt: in.ExpiresAt,
	})
	if err != nil {
		return nil, reject(err)
	}
	return a, nil
}

func (s *Simulated) UpdateAnnouncement(ctx context.Context, token, id string, in AnnouncementInput) (*announcement.Announcement, error) {
	if err := s.wait(ctx, "UpdateAnnouncement"); err != nil {
		return nil, err
	}
	providerID, err := s.identify(token, true)
	if err != nil {
		return nil, err
	}
	a, err := s.services.Announcements.Update(ctx, providerID, id, announcement.UpdateRequest{
		Title:     in.Title,
		Content:   in.Content,
		Category:  in.Category,
		Status:    in.Status,
		ExpiresAt: in.ExpiresAt,
	})
	if err != nil {
		return nil, reject(err)
	}
	return a, nil
}

func (s *Simulated) DeleteAnnouncement(ctx context.Context, token, id string) error {
	if err := s.wait(ctx, "DeleteAnnouncement"); err != nil {
		return err
	}
	providerID, err := s.identify(token, true)
	if err != nil {
		return err
	}
	if err := s.services.Announcements.Delete(ctx, providerID, id); err != nil {
		return reject(err)
	}
	return nil
}

// reject maps a use-case error to the status the HTTP handlers would send.
func reject(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, announcement.ErrNotFound),
		errors.Is(err, listing.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, user.ErrServiceNotFound):
		return &APIError{Status: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, announcement.ErrForbidden),
		errors.Is(err, listing.ErrForbidden):
		return &APIError{Status: http.StatusForbidden, Message: err.Error()}
	case errors.Is(err, user.ErrInvalidCredentials):
		return &APIError{Status: http.StatusUnauthorized, Message: err.Error()}
	case errors.Is(err, user.ErrPhoneAlreadyUsed):
		return &APIError{Status: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, announcement.ErrTitleRequired),
		errors.Is(err, announcement.ErrContentRequired),
		errors.Is(err, announcement.ErrInvalidCategory),
		errors.Is(err, announcement.ErrInvalidStatus),
		errors.Is(err, user.ErrPhoneInvalid),
		errors.Is(err, user.ErrPasswordTooShort),
		errors.Is(err, user.ErrDisplayNameRequired),
		errors.Is(err, user.ErrOrganizationRequired),
		errors.Is(err, user.ErrInvalidRole):
		return &APIError{Status: http.StatusBadRequest, Message: err.Error()}
	default:
		return &APIError{Status: http.StatusInternalServerError, Message: "internal server error"}
	}
}
