package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/civic-directory-backend/internal/auth"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/validation"
)

const minPasswordLength = 8

// RegisterRequest carries the data needed to create an account.
type RegisterRequest struct {
	Phone        string
	Password     string
	DisplayName  string
	Role         Role
	Organization string
}

// UpdateProfileRequest uses pointers to distinguish "not sent" from "sent empty".
type UpdateProfileRequest struct {
	DisplayName  *string
	Phone        *string
	Organization *string
}

// ServiceLookup checks that a directory listing exists before it is favorited.
type ServiceLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Service defines business logic related to users.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, phone, password string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*User, error)
	AddFavorite(ctx context.Context, userID, serviceID string) ([]string, error)
	RemoveFavorite(ctx context.Context, userID, serviceID string) ([]string, error)
	ListFavorites(ctx context.Context, userID string) ([]string, error)
}

type service struct {
	repo     Repository
	hasher   auth.PasswordHasher
	services ServiceLookup
	log      *zap.Logger
	now      func() time.Time
}

// NewService creates a new user Service. services may be nil, in which case
// favorites are not checked against the directory.
func NewService(repo Repository, hasher auth.PasswordHasher, services ServiceLookup, logger *zap.Logger) Service {
	return &service{
		repo:     repo,
		hasher:   hasher,
		services: services,
		log:      logger,
		now:      time.Now,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	phone := validation.NormalizePhone(req.Phone)
	if !validation.IsPhone(phone) {
		return nil, ErrPhoneInvalid
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return nil, ErrDisplayNameRequired
	}

	role := req.Role
	if role == "" {
		role = RoleCitizen
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	var org *string
	if o := strings.TrimSpace(req.Organization); o != "" {
		org = &o
	}
	if role == RoleProvider && org == nil {
		return nil, ErrOrganizationRequired
	}

	// Check if phone is already used.
	_, err := s.repo.GetByPhone(ctx, phone)
	if err == nil {
		return nil, ErrPhoneAlreadyUsed
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing phone: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		DisplayName:  name,
		Phone:        phone,
		Role:         role,
		Organization: org,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	// The repository also enforces phone uniqueness and may return ErrPhoneAlreadyUsed.
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

func (s *service) Login(ctx context.Context, phone, password string) (*User, error) {
	clean := validation.NormalizePhone(phone)
	if clean == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByPhone(ctx, clean)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user by phone: %w", err)
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Best effort; a failed timestamp update does not fail the login.
	now := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.log.Warn("failed to update last login", zap.String("user_id", u.ID), zap.Error(err))
	} else {
		u.LastLoginAt = &now
	}

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" {
			return nil, ErrDisplayNameRequired
		}
		u.DisplayName = name
	}

	if req.Phone != nil {
		phone := validation.NormalizePhone(*req.Phone)
		if !validation.IsPhone(phone) {
			return nil, ErrPhoneInvalid
		}
		if phone != u.Phone {
			existing, err := s.repo.GetByPhone(ctx, phone)
			if err == nil && existing.ID != u.ID {
				return nil, ErrPhoneAlreadyUsed
			}
			if err != nil && !errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("failed to check existing phone: %w", err)
			}
		}
		u.Phone = phone
	}

	if req.Organization != nil {
		org := strings.TrimSpace(*req.Organization)
		switch {
		case org != "":
			u.Organization = &org
		case u.IsProvider():
			return nil, ErrOrganizationRequired
		default:
			u.Organization = nil
		}
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) AddFavorite(ctx context.Context, userID, serviceID string) ([]string, error) {
	if s.services != nil {
		ok, err := s.services.Exists(ctx, serviceID)
		if err != nil {
			return nil, fmt.Errorf("failed to check service: %w", err)
		}
		if !ok {
			return nil, ErrServiceNotFound
		}
	}

	if err := s.repo.AddFavorite(ctx, userID, serviceID); err != nil {
		return nil, err
	}
	return s.repo.ListFavorites(ctx, userID)
}

func (s *service) RemoveFavorite(ctx context.Context, userID, serviceID string) ([]string, error) {
	if err := s.repo.RemoveFavorite(ctx, userID, serviceID); err != nil {
		return nil, err
	}
	return s.repo.ListFavorites(ctx, userID)
}

func (s *service) ListFavorites(ctx context.Context, userID string) ([]string, error) {
	return s.repo.ListFavorites(ctx, userID)
}
