package http

import (
	"time"

	"github.com/nekogravitycat/civic-directory-backend/internal/file"
)

type Response struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Filename     string    `json:"filename"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewResponse(f *file.File) Response {
	var thumbURL *string
	if f.ThumbnailPath != nil {
		t := file.ThumbnailURL(f.ID)
		thumbURL = &t
	}
	return Response{
		ID:           f.ID,
		OwnerID:      f.OwnerID,
		Filename:     f.Filename,
		ContentType:  f.ContentType,
		Size:         f.Size,
		URL:          file.FileURL(f.ID),
		ThumbnailURL: thumbURL,
		CreatedAt:    f.CreatedAt,
	}
}
