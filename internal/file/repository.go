package file

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/civic-directory-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, file *File) error
	GetByID(ctx context.Context, id string) (*File, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, f *File) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.files").
		Columns("id", "owner_id", "filename", "storage_path", "thumbnail_path", "content_type", "size", "created_at").
		Values(f.ID, f.OwnerID, f.Filename, f.StoragePath, f.ThumbnailPath, f.ContentType, f.Size, f.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create file record: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*File, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "owner_id", "filename", "storage_path", "thumbnail_path", "content_type", "size", "created_at").
		From("public.files").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	f := &File{}
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&f.ID,
		&f.OwnerID,
		&f.Filename,
		&f.StoragePath,
		&f.ThumbnailPath,
		&f.ContentType,
		&f.Size,
		&f.CreatedAt,
	)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return f, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.files").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
