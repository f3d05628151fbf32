package http

import (
	"time"

	"github.com/nekogravitycat/civic-directory-backend/internal/announcement"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/request"
)

type Response struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Category    string     `json:"category"`
	ProviderID  string     `json:"provider_id"`
	AuthorName  string     `json:"author_name"`
	PublishedAt time.Time  `json:"published_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func NewResponse(a *announcement.Announcement) Response {
	return Response{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		Category:    string(a.Category),
		ProviderID:  a.ProviderID,
		AuthorName:  a.AuthorName,
		PublishedAt: a.PublishedAt,
		ExpiresAt:   a.ExpiresAt,
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// ListRequest defines query parameters for listing announcements.
type ListRequest struct {
	request.ListParams
	Keyword  string `form:"q"`
	Category string `form:"category" binding:"omitempty,announcement_category"`
	Status   string `form:"status" binding:"omitempty,announcement_status"`
}

func (r *ListRequest) Filter() announcement.Filter {
	r.Normalize()
	return announcement.Filter{
		Keyword:  r.Keyword,
		Category: announcement.Category(r.Category),
		Status:   announcement.Status(r.Status),
		Page:     r.Page,
		PageSize: r.PageSize,
	}
}

type CreateBody struct {
	Title     string     `json:"title" binding:"required,notblank,max=200"`
	Content   string     `json:"content" binding:"required,notblank"`
	Category  string     `json:"category" binding:"omitempty,announcement_category"`
	Status    string     `json:"status" binding:"omitempty,announcement_status"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// UpdateBody is a full replacement of the mutable fields.
type UpdateBody struct {
	Title     string     `json:"title" binding:"required,notblank,max=200"`
	Content   string     `json:"content" binding:"required,notblank"`
	Category  string     `json:"category" binding:"required,announcement_category"`
	Status    string     `json:"status" binding:"required,announcement_status"`
	ExpiresAt *time.Time `json:"expires_at"`
}
