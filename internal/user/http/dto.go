package http

import (
	"time"

	"github.com/nekogravitycat/civic-directory-backend/internal/user"
)

// UserResponse is the shape of user data returned in API responses.
type UserResponse struct {
	ID           string     `json:"id"`
	DisplayName  string     `json:"display_name"`
	Phone        string     `json:"phone"`
	Role         string     `json:"role"`
	Organization *string    `json:"organization"`
	Favorites    []string   `json:"favorites"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

// NewUserResponse converts domain user.User to UserResponse used by the API.
func NewUserResponse(u *user.User) UserResponse {
	favorites := u.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	return UserResponse{
		ID:           u.ID,
		DisplayName:  u.DisplayName,
		Phone:        u.Phone,
		Role:         string(u.Role),
		Organization: u.Organization,
		Favorites:    favorites,
		CreatedAt:    u.CreatedAt,
		LastLoginAt:  u.LastLoginAt,
	}
}

// RegisterRequest defines the payload for user registration.
type RegisterRequest struct {
	Phone           string `json:"phone" binding:"required,phone"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	DisplayName     string `json:"display_name" binding:"required,notblank,max=100"`
	Role            string `json:"role" binding:"omitempty,user_role"`
	Organization    string `json:"organization" binding:"required_if=Role service-provider,max=200"`
}

// LoginRequest defines the payload for user login.
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest defines fields allowed to be updated via PATCH /me.
// Use pointers to distinguish between "field not sent" and "field sent as empty".
type UpdateProfileRequest struct {
	DisplayName  *string `json:"display_name" binding:"omitempty,notblank,max=100"`
	Phone        *string `json:"phone" binding:"omitempty,phone"`
	Organization *string `json:"organization" binding:"omitempty,max=200"`
}

// FavoriteRequest binds the service ID of a favorite.
type FavoriteRequest struct {
	ServiceID string `uri:"id" binding:"required,uuid"`
}

// LoginResponse returns the token and user info.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

// MeResponse returns the current user info.
type MeResponse struct {
	User UserResponse `json:"user"`
}

// FavoritesResponse lists the favorited service IDs.
type FavoritesResponse struct {
	Favorites []string `json:"favorites"`
}
