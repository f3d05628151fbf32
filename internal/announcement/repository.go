package announcement

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/civic-directory-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, a *Announcement, now time.Time) error
	GetByID(ctx context.Context, id string) (*Announcement, error)
	// ListPublic returns announcements visible at now.
	ListPublic(ctx context.Context, filter Filter, now time.Time) ([]*Announcement, int, error)
	ListByProvider(ctx context.Context, providerID string, filter Filter) ([]*Announcement, int, error)
	Update(ctx context.Context, a *Announcement, now time.Time) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var announcementColumns = []string{
	"id", "title", "content", "category", "provider_id", "author_name",
	"published_at", "expires_at", "status", "created_at", "updated_at",
}

func scanAnnouncement(row pgx.Row, extra ...any) (*Announcement, error) {
	var a Announcement
	var category, status string
	dest := []any{
		&a.ID, &a.Title, &a.Content, &category, &a.ProviderID, &a.AuthorName,
		&a.PublishedAt, &a.ExpiresAt, &status, &a.CreatedAt, &a.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	a.Category = Category(category)
	a.Status = Status(status)
	return &a, nil
}

func (r *pgxRepository) Create(ctx context.Context, a *Announcement, now time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	a.ID = NewID()
	query, args, err := psql.Insert("public.announcements").
		Columns("id", "title", "content", "category", "provider_id", "author_name",
			"published_at", "expires_at", "status", "created_at", "updated_at").
		Values(a.ID, a.Title, a.Content, string(a.Category), a.ProviderID, a.AuthorName,
			a.PublishedAt, a.ExpiresAt, string(a.Status), now, now).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create announcement query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		return fmt.Errorf("create announcement failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Announcement, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(announcementColumns...).
		From("public.announcements").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get announcement query failed: %w", err)
	}

	a, err := scanAnnouncement(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get announcement failed: %w", err)
	}
	return a, nil
}

func (r *pgxRepository) ListPublic(ctx context.Context, filter Filter, now time.Time) ([]*Announcement, int, error) {
	return r.list(ctx, publicWhere(now), filter)
}

// publicWhere mirrors Announcement.IsPublic.
func publicWhere(now time.Time) squirrel.And {
	return squirrel.And{
		squirrel.Eq{"status": string(StatusPublished)},
		squirrel.Or{
			squirrel.Eq{"expires_at": nil},
			squirrel.Gt{"expires_at": now},
		},
	}
}

func (r *pgxRepository) ListByProvider(ctx context.Context, providerID string, filter Filter) ([]*Announcement, int, error) {
	return r.list(ctx, providerWhere(providerID, filter), filter)
}

func providerWhere(providerID string, filter Filter) squirrel.And {
	where := squirrel.And{squirrel.Eq{"provider_id": providerID}}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": string(filter.Status)})
	}
	return where
}

// listQuery selects one page of announcements matching where and filter, with
// the full match count in the trailing total_count column.
func listQuery(where squirrel.And, filter Filter) squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(announcementColumns, "count(*) OVER() AS total_count")...).
		From("public.announcements").
		Where(where)

	if filter.Category != "" {
		query = query.Where(squirrel.Eq{"category": string(filter.Category)})
	}
	if filter.Keyword != "" {
		query = query.Where(squirrel.Or{
			squirrel.ILike{"title": "%" + filter.Keyword + "%"},
			squirrel.ILike{"content": "%" + filter.Keyword + "%"},
		})
	}

	// Storage order, as in Before.
	query = query.OrderBy("created_at DESC", "id DESC")

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))
	return query
}

func (r *pgxRepository) list(ctx context.Context, where squirrel.And, filter Filter) ([]*Announcement, int, error) {
	query := listQuery(where, filter)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list announcement query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list announcements failed: %w", err)
	}
	defer rows.Close()

	var result []*Announcement
	var total int
	for rows.Next() {
		a, err := scanAnnouncement(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan announcement failed: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate announcements failed: %w", err)
	}
	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, a *Announcement, now time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.announcements").
		Set("title", a.Title).
		Set("content", a.Content).
		Set("category", string(a.Category)).
		Set("author_name", a.AuthorName).
		Set("expires_at", a.ExpiresAt).
		Set("status", string(a.Status)).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": a.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update announcement query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		if db.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("update announcement failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.announcements").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete announcement query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if db.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete announcement failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
