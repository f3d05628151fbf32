package http

import (
	"time"

	"github.com/nekogravitycat/civic-directory-backend/internal/lesson"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/request"
)

type Response struct {
	ID              string    `json:"id"`
	ProviderID      string    `json:"provider_id"`
	Title           string    `json:"title"`
	Summary         string    `json:"summary"`
	Content         string    `json:"content"`
	Category        string    `json:"category"`
	Difficulty      string    `json:"difficulty"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewResponse(l *lesson.Lesson) Response {
	return Response{
		ID:              l.ID,
		ProviderID:      l.ProviderID,
		Title:           l.Title,
		Summary:         l.Summary,
		Content:         l.Content,
		Category:        l.Category,
		Difficulty:      string(l.Difficulty),
		DurationMinutes: l.DurationMinutes,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

type ListRequest struct {
	request.ListParams
	Query      string `form:"q" binding:"max=200"`
	Category   string `form:"category" binding:"max=50"`
	Difficulty string `form:"difficulty" binding:"omitempty,difficulty"`
}

func (r *ListRequest) Filter() lesson.Filter {
	r.Normalize()
	return lesson.Filter{
		Query:      r.Query,
		Category:   r.Category,
		Difficulty: lesson.Difficulty(r.Difficulty),
		ListParams: r.ListParams,
	}
}

type LessonBody struct {
	Title           string `json:"title" binding:"required,notblank,max=200"`
	Summary         string `json:"summary" binding:"max=500"`
	Content         string `json:"content" binding:"required,notblank"`
	Category        string `json:"category" binding:"required,notblank,max=50"`
	Difficulty      string `json:"difficulty" binding:"omitempty,difficulty"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1,max=600"`
}

func (b LessonBody) Input() lesson.Input {
	return lesson.Input{
		Title:           b.Title,
		Summary:         b.Summary,
		Content:         b.Content,
		Category:        b.Category,
		Difficulty:      lesson.Difficulty(b.Difficulty),
		DurationMinutes: b.DurationMinutes,
	}
}
