package file

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("file not found")
	ErrForbidden       = errors.New("file belongs to another user")
	ErrEmpty           = errors.New("file is empty")
	ErrTooLarge        = errors.New("file exceeds the size limit")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNoThumbnail     = errors.New("thumbnail not available for this file")
)

// File is the metadata of an uploaded object.
type File struct {
	ID            string
	OwnerID       string
	Filename      string
	StoragePath   string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// FileURL returns the public URL for accessing a file by its ID.
func FileURL(id string) string {
	return "/v1/files/" + id
}

// ThumbnailURL returns the public URL for accessing a file's thumbnail by its ID.
func ThumbnailURL(id string) string {
	return "/v1/files/" + id + "/thumbnail"
}
