package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/civic-directory-backend/internal/db"
	"github.com/nekogravitycat/civic-directory-backend/internal/lesson"
)

type Repository interface {
	Create(ctx context.Context, q *Quiz, now time.Time) error
	GetByID(ctx context.Context, id string) (*Quiz, error)
	List(ctx context.Context, filter Filter) ([]*Quiz, int, error)
	ListByProvider(ctx context.Context, providerID string, filter Filter) ([]*Quiz, int, error)
	Update(ctx context.Context, q *Quiz, now time.Time) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var quizColumns = []string{
	"id", "provider_id", "lesson_id", "title", "description", "category",
	"difficulty", "questions", "passing_score", "created_at", "updated_at",
}

// questions is a jsonb column.
func scanQuiz(row pgx.Row, extra ...any) (*Quiz, error) {
	var q Quiz
	var difficulty string
	dest := []any{
		&q.ID, &q.ProviderID, &q.LessonID, &q.Title, &q.Description, &q.Category,
		&difficulty, &q.Questions, &q.PassingScore, &q.CreatedAt, &q.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	q.Difficulty = lesson.Difficulty(difficulty)
	return &q, nil
}

// mapWriteError turns a lesson_id foreign key violation into ErrLessonNotFound.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return ErrLessonNotFound
	}
	return err
}

func (r *pgxRepository) Create(ctx context.Context, q *Quiz, now time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.quizzes").
		Columns("provider_id", "lesson_id", "title", "description", "category",
			"difficulty", "questions", "passing_score", "created_at", "updated_at").
		Values(q.ProviderID, q.LessonID, q.Title, q.Description, q.Category,
			string(q.Difficulty), q.Questions, q.PassingScore, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create quiz query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt); err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("create quiz failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Quiz, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(quizColumns...).
		From("public.quizzes").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get quiz query failed: %w", err)
	}

	q, err := scanQuiz(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get quiz failed: %w", err)
	}
	return q, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Quiz, int, error) {
	return r.list(ctx, squirrel.And{}, filter)
}

func (r *pgxRepository) ListByProvider(ctx context.Context, providerID string, filter Filter) ([]*Quiz, int, error) {
	return r.list(ctx, squirrel.And{squirrel.Eq{"provider_id": providerID}}, filter)
}

func (r *pgxRepository) list(ctx context.Context, where squirrel.And, filter Filter) ([]*Quiz, int, error) {
	if s := strings.TrimSpace(filter.Query); s != "" {
		where = append(where, squirrel.Or{
			squirrel.ILike{"title": "%" + s + "%"},
			squirrel.ILike{"description": "%" + s + "%"},
		})
	}
	if filter.Category != "" {
		where = append(where, squirrel.Expr("lower(category) = lower(?)", filter.Category))
	}
	if filter.Difficulty != "" {
		where = append(where, squirrel.Eq{"difficulty": string(filter.Difficulty)})
	}
	if filter.LessonID != "" {
		where = append(where, squirrel.Eq{"lesson_id": filter.LessonID})
	}

	filter.Normalize()
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select(append(quizColumns, "count(*) OVER() AS total_count")...).
		From("public.quizzes").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(filter.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list quizzes query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list quizzes failed: %w", err)
	}
	defer rows.Close()

	result := []*Quiz{}
	var total int
	for rows.Next() {
		q, err := scanQuiz(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan quiz failed: %w", err)
		}
		result = append(result, q)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate quizzes failed: %w", err)
	}
	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, q *Quiz, now time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.quizzes").
		Set("lesson_id", q.LessonID).
		Set("title", q.Title).
		Set("description", q.Description).
		Set("category", q.Category).
		Set("difficulty", string(q.Difficulty)).
		Set("questions", q.Questions).
		Set("passing_score", q.PassingScore).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": q.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update quiz query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&q.CreatedAt, &q.UpdatedAt); err != nil {
		if db.IsNotFound(err) {
			return ErrNotFound
		}
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update quiz failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.quizzes").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete quiz query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if db.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete quiz failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
