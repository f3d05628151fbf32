// Package client talks to the civic directory backend, either over HTTP or
// in-process through Simulated.
package client

import (
	"context"
	"time"

	"github.com/nekogravitycat/civic-directory-backend/internal/announcement"
	"github.com/nekogravitycat/civic-directory-backend/internal/listing"
	"github.com/nekogravitycat/civic-directory-backend/internal/user"
)

// Session is the result of a successful login or registration.
type Session struct {
	Token string
	User  *user.User
}

// AnnouncementInput is the announcement form payload. Create accepts an empty
// Category or Status and lets the backend apply its defaults.
type AnnouncementInput struct {
	Title     string
	Content   string
	Category  announcement.Category
	Status    announcement.Status
	ExpiresAt *time.Time
}

// API is the contract shared by the HTTP client and the simulated backend.
// Calls that act on behalf of a user take its access token.
type API interface {
	Register(ctx context.Context, req user.RegisterRequest) (*Session, error)
	Login(ctx context.Context, phone, password string) (*Session, error)
	Me(ctx context.Context, token string) (*user.User, error)
	UpdateProfile(ctx context.Context, token string, req user.UpdateProfileRequest) (*user.User, error)
	AddFavorite(ctx context.Context, token, serviceID string) ([]string, error)
	RemoveFavorite(ctx context.Context, token, serviceID string) ([]string, error)

	ListServices(ctx context.Context) ([]*listing.Service, error)
	GetService(ctx context.Context, id string) (*listing.Service, error)

	ListPublicAnnouncements(ctx context.Context) ([]*announcement.Announcement, error)
	ListProviderAnnouncements(ctx context.Context, token string) ([]*announcement.Announcement, error)
	CreateAnnouncement(ctx context.Context, token string, in AnnouncementInput) (*announcement.Announcement, error)
	UpdateAnnouncement(ctx context.Context, token, id string, in AnnouncementInput) (*announcement.Announcement, error)
	DeleteAnnouncement(ctx context.Context, token, id string) error
}

// collectPages keeps fetching pages until total items have been read.
func collectPages[T any](fetch func(page int) ([]T, int, error)) ([]T, error) {
	all := []T{}
	for page := 1; ; page++ {
		items, total, err := fetch(page)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) == 0 || len(all) >= total {
			return all, nil
		}
	}
}
