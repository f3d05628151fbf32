package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/storage"
)

const DefaultMaxSize = 5 << 20

// Image types accepted for upload, keyed by detected MIME type.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

type Service interface {
	Upload(ctx context.Context, header *multipart.FileHeader, ownerID string) (*File, error)
	Get(ctx context.Context, id string) (*File, error)
	Exists(ctx context.Context, id string) (bool, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *File, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type service struct {
	repo    Repository
	storage storage.Storage
	maxSize int64
	log     *zap.Logger
	now     func() time.Time
}

// NewService creates the file service. A maxSize <= 0 uses DefaultMaxSize.
func NewService(repo Repository, store storage.Storage, maxSize int64, logger *zap.Logger) Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &service{repo: repo, storage: store, maxSize: maxSize, log: logger, now: time.Now}
}

func (s *service) Upload(ctx context.Context, header *multipart.FileHeader, ownerID string) (*File, error) {
	if header.Size == 0 {
		return nil, ErrEmpty
	}
	if header.Size > s.maxSize {
		return nil, ErrTooLarge
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// Images are small enough to hold in memory for detection, thumbnailing and saving.
	content, err := io.ReadAll(io.LimitReader(src, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	if int64(len(content)) > s.maxSize {
		return nil, ErrTooLarge
	}

	// Trust the bytes, not the client supplied Content-Type.
	contentType := mimetype.Detect(content).String()
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	fileID := uuid.NewString()

	// Sharding path: upload/ab/UUID.ext
	shard := fileID[:2]
	storagePath := fmt.Sprintf("upload/%s/%s%s", shard, fileID, ext)
	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to save file to storage: %w", err)
	}

	var thumbnailPath *string
	thumb, err := storage.Thumbnail(bytes.NewReader(content), storage.ThumbnailWidth, storage.ThumbnailHeight)
	if err != nil {
		s.log.Warn("thumbnail generation failed", zap.String("file_id", fileID), zap.Error(err))
	} else {
		tPath := fmt.Sprintf("upload/%s/%s_thumb.jpg", shard, fileID)
		if err := s.storage.Save(ctx, tPath, thumb); err != nil {
			s.log.Warn("thumbnail save failed", zap.String("file_id", fileID), zap.Error(err))
		} else {
			thumbnailPath = &tPath
		}
	}

	f := &File{
		ID:            fileID,
		OwnerID:       ownerID,
		Filename:      filepath.Base(header.Filename),
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          int64(len(content)),
		CreatedAt:     s.now().UTC(),
	}

	if err := s.repo.Create(ctx, f); err != nil {
		s.removeObjects(ctx, f)
		return nil, err
	}

	s.log.Info("file uploaded",
		zap.String("file_id", f.ID),
		zap.String("owner_id", ownerID),
		zap.String("content_type", contentType),
		zap.Int64("size", f.Size),
	)
	return f, nil
}

func (s *service) Get(ctx context.Context, id string) (*File, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.storage.Open(ctx, f.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to retrieve file from storage: %w", err)
	}
	return stream, f, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if f.ThumbnailPath == nil {
		return nil, nil, ErrNoThumbnail
	}

	stream, err := s.storage.Open(ctx, *f.ThumbnailPath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrNoThumbnail
		}
		return nil, nil, fmt.Errorf("failed to retrieve thumbnail from storage: %w", err)
	}
	return stream, f, nil
}

func (s *service) Delete(ctx context.Context, ownerID, id string) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if f.OwnerID != ownerID {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeObjects(ctx, f)

	s.log.Info("file deleted", zap.String("file_id", id))
	return nil
}

// removeObjects is best effort: a leftover object is only wasted disk.
func (s *service) removeObjects(ctx context.Context, f *File) {
	if err := s.storage.Delete(ctx, f.StoragePath); err != nil {
		s.log.Warn("delete stored file failed", zap.String("path", f.StoragePath), zap.Error(err))
	}
	if f.ThumbnailPath != nil {
		if err := s.storage.Delete(ctx, *f.ThumbnailPath); err != nil {
			s.log.Warn("delete stored thumbnail failed", zap.String("path", *f.ThumbnailPath), zap.Error(err))
		}
	}
}
