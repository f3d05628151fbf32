package announcement

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/sanitize"
	"github.com/nekogravitycat/civic-directory-backend/internal/user"
)

const (
	minTitleLength   = 3
	minContentLength = 10
)

// CreateRequest is the announcement payload without an identifier.
type CreateRequest struct {
	Title     string
	Content   string
	Category  Category
	Status    Status // defaults to draft
	ExpiresAt *time.Time
}

// UpdateRequest replaces every mutable field of an existing announcement.
type UpdateRequest struct {
	Title     string
	Content   string
	Category  Category
	Status    Status
	ExpiresAt *time.Time
}

// UserGetter resolves the author of an announcement.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type Service interface {
	ListPublic(ctx context.Context, filter Filter) ([]*Announcement, int, error)
	ListByProvider(ctx context.Context, providerID string, filter Filter) ([]*Announcement, int, error)
	GetByID(ctx context.Context, id string) (*Announcement, error)
	// GetVisible returns the announcement when it is public or owned by viewerID.
	GetVisible(ctx context.Context, id, viewerID string) (*Announcement, error)
	Create(ctx context.Context, providerID string, req CreateRequest) (*Announcement, error)
	Update(ctx context.Context, providerID, id string, req UpdateRequest) (*Announcement, error)
	Delete(ctx context.Context, providerID, id string) error
}

type service struct {
	repo  Repository
	users UserGetter
	log   *zap.Logger
	now   func() time.Time
}

func NewService(repo Repository, users UserGetter, logger *zap.Logger) Service {
	return NewServiceWithClock(repo, users, logger, time.Now)
}

// NewServiceWithClock is NewService with an injectable time source.
func NewServiceWithClock(repo Repository, users UserGetter, logger *zap.Logger, now func() time.Time) Service {
	return &service{repo: repo, users: users, log: logger, now: now}
}

func (s *service) ListPublic(ctx context.Context, filter Filter) ([]*Announcement, int, error) {
	filter.Status = ""
	return s.repo.ListPublic(ctx, filter, s.now().UTC())
}

func (s *service) ListByProvider(ctx context.Context, providerID string, filter Filter) ([]*Announcement, int, error) {
	return s.repo.ListByProvider(ctx, providerID, filter)
}

func (s *service) GetByID(ctx context.Context, id string) (*Announcement, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetVisible(ctx context.Context, id, viewerID string) (*Announcement, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.IsPublic(s.now().UTC()) || (viewerID != "" && a.ProviderID == viewerID) {
		return a, nil
	}
	return nil, ErrNotFound
}

func (s *service) Create(ctx context.Context, providerID string, req CreateRequest) (*Announcement, error) {
	if req.Status == "" {
		req.Status = StatusDraft
	}
	if req.Category == "" {
		req.Category = CategoryGeneral
	}

	a := &Announcement{
		Title:      sanitize.PlainText(req.Title),
		Content:    sanitize.RichText(req.Content),
		Category:   req.Category,
		ProviderID: providerID,
		ExpiresAt:  utcPtr(req.ExpiresAt),
		Status:     req.Status,
	}
	if err := validate(a); err != nil {
		return nil, err
	}

	author, err := s.authorName(ctx, providerID)
	if err != nil {
		return nil, err
	}
	a.AuthorName = author

	now := s.now().UTC()
	a.PublishedAt = now

	if err := s.repo.Create(ctx, a, now); err != nil {
		return nil, err
	}

	s.log.Info("announcement created",
		zap.String("announcement_id", a.ID),
		zap.String("provider_id", providerID),
		zap.String("status", string(a.Status)),
	)
	return a, nil
}

func (s *service) Update(ctx context.Context, providerID, id string, req UpdateRequest) (*Announcement, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.ProviderID != providerID {
		return nil, ErrForbidden
	}

	a.Title = sanitize.PlainText(req.Title)
	a.Content = sanitize.RichText(req.Content)
	a.Category = req.Category
	a.Status = req.Status
	a.ExpiresAt = utcPtr(req.ExpiresAt)
	if err := validate(a); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, a, s.now().UTC()); err != nil {
		return nil, err
	}

	s.log.Info("announcement updated",
		zap.String("announcement_id", a.ID),
		zap.String("status", string(a.Status)),
	)
	return a, nil
}

func (s *service) Delete(ctx context.Context, providerID, id string) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.ProviderID != providerID {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("announcement deleted", zap.String("announcement_id", id))
	return nil
}

// authorName prefers the provider's organization over the personal display name.
func (s *service) authorName(ctx context.Context, providerID string) (string, error) {
	u, err := s.users.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrForbidden
		}
		return "", fmt.Errorf("failed to resolve author: %w", err)
	}
	if u.Organization != nil && *u.Organization != "" {
		return *u.Organization, nil
	}
	return u.DisplayName, nil
}

func validate(a *Announcement) error {
	if utf8.RuneCountInString(a.Title) < minTitleLength {
		return ErrTitleRequired
	}
	// Markup does not count toward the content length.
	if utf8.RuneCountInString(sanitize.PlainText(a.Content)) < minContentLength {
		return ErrContentRequired
	}
	if !a.Category.Valid() {
		return ErrInvalidCategory
	}
	if !a.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
