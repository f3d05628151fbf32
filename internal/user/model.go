package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound             = errors.New("user not found")
	ErrPhoneAlreadyUsed     = errors.New("phone number already used")
	ErrInvalidCredentials   = errors.New("invalid phone number or password")
	ErrPhoneInvalid         = errors.New("phone number is invalid")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrDisplayNameRequired  = errors.New("display name is required")
	ErrOrganizationRequired = errors.New("organization is required for service providers")
	ErrInvalidRole          = errors.New("invalid role")
	ErrServiceNotFound      = errors.New("service not found")
)

// Role distinguishes citizens from service providers.
type Role string

const (
	RoleCitizen  Role = "citizen"
	RoleProvider Role = "service-provider"
)

// Roles lists every valid role.
var Roles = []Role{RoleCitizen, RoleProvider}

func (r Role) Valid() bool {
	return r == RoleCitizen || r == RoleProvider
}

// User represents an authenticated actor.
type User struct {
	ID           string // UUID
	DisplayName  string
	Phone        string // normalized, digits with optional leading +
	Role         Role
	Organization *string
	Favorites    []string // service IDs, most recent last
	PasswordHash string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// IsProvider reports whether the user manages listings and content.
func (u *User) IsProvider() bool {
	return u.Role == RoleProvider
}

// HasFavorite reports whether serviceID is in the user's favorites.
func (u *User) HasFavorite(serviceID string) bool {
	for _, id := range u.Favorites {
		if id == serviceID {
			return true
		}
	}
	return false
}

// clone returns a deep copy so stored users are never shared with callers.
func (u *User) clone() *User {
	c := *u
	if u.Organization != nil {
		org := *u.Organization
		c.Organization = &org
	}
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	c.Favorites = append([]string(nil), u.Favorites...)
	return &c
}
