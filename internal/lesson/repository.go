package lesson

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/civic-directory-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, l *Lesson, now time.Time) error
	GetByID(ctx context.Context, id string) (*Lesson, error)
	List(ctx context.Context, filter Filter) ([]*Lesson, int, error)
	ListByProvider(ctx context.Context, providerID string, filter Filter) ([]*Lesson, int, error)
	Update(ctx context.Context, l *Lesson, now time.Time) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var lessonColumns = []string{
	"id", "provider_id", "title", "summary", "content", "category",
	"difficulty", "duration_minutes", "created_at", "updated_at",
}

func scanLesson(row pgx.Row, extra ...any) (*Lesson, error) {
	var l Lesson
	var difficulty string
	dest := []any{
		&l.ID, &l.ProviderID, &l.Title, &l.Summary, &l.Content, &l.Category,
		&difficulty, &l.DurationMinutes, &l.CreatedAt, &l.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	l.Difficulty = Difficulty(difficulty)
	return &l, nil
}

func (r *pgxRepository) Create(ctx context.Context, l *Lesson, now time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.lessons").
		Columns("provider_id", "title", "summary", "content", "category",
			"difficulty", "duration_minutes", "created_at", "updated_at").
		Values(l.ProviderID, l.Title, l.Summary, l.Content, l.Category,
			string(l.Difficulty), l.DurationMinutes, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create lesson query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return fmt.Errorf("create lesson failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Lesson, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(lessonColumns...).
		From("public.lessons").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get lesson query failed: %w", err)
	}

	l, err := scanLesson(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get lesson failed: %w", err)
	}
	return l, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Lesson, int, error) {
	return r.list(ctx, squirrel.And{}, filter)
}

func (r *pgxRepository) ListByProvider(ctx context.Context, providerID string, filter Filter) ([]*Lesson, int, error) {
	return r.list(ctx, squirrel.And{squirrel.Eq{"provider_id": providerID}}, filter)
}

func (r *pgxRepository) list(ctx context.Context, where squirrel.And, filter Filter) ([]*Lesson, int, error) {
	if q := strings.TrimSpace(filter.Query); q != "" {
		where = append(where, squirrel.Or{
			squirrel.ILike{"title": "%" + q + "%"},
			squirrel.ILike{"summary": "%" + q + "%"},
		})
	}
	if filter.Category != "" {
		where = append(where, squirrel.Expr("lower(category) = lower(?)", filter.Category))
	}
	if filter.Difficulty != "" {
		where = append(where, squirrel.Eq{"difficulty": string(filter.Difficulty)})
	}

	filter.Normalize()
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(lessonColumns, "count(*) OVER() AS total_count")...).
		From("public.lessons").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(filter.Offset()))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list lessons query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list lessons failed: %w", err)
	}
	defer rows.Close()

	result := []*Lesson{}
	var total int
	for rows.Next() {
		l, err := scanLesson(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lesson failed: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate lessons failed: %w", err)
	}
	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, l *Lesson, now time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.lessons").
		Set("title", l.Title).
		Set("summary", l.Summary).
		Set("content", l.Content).
		Set("category", l.Category).
		Set("difficulty", string(l.Difficulty)).
		Set("duration_minutes", l.DurationMinutes).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": l.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update lesson query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&l.CreatedAt, &l.UpdatedAt); err != nil {
		if db.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("update lesson failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.lessons").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete lesson query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if db.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete lesson failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
