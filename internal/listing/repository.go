package listing

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
	// All returns the whole directory, featured first then by name.
	All(ctx context.Context) ([]*Service, error)
	GetByID(ctx context.Context, id string) (*Service, error)
	ListByProvider(ctx context.Context, providerID string) ([]*Service, error)
	Create(ctx context.Context, s *Service, now time.Time) error
	Update(ctx context.Context, s *Service, now time.Time) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var serviceColumns = []string{
	"id", "provider_id", "name", "description", "long_description", "category",
	"address", "area", "phone", "email", "website", "hours", "requirements", "tags",
	"featured", "accessible", "online_available", "guide", "image_ids",
	"created_at", "updated_at",
}

// hours and guide are jsonb; pgx encodes and decodes them with encoding/json.
func scanService(row pgx.Row) (*Service, error) {
	var s Service
	err := row.Scan(
		&s.ID, &s.ProviderID, &s.Name, &s.Description, &s.LongDescription, &s.Category,
		&s.Address, &s.Area, &s.Phone, &s.Email, &s.Website, &s.Hours, &s.Requirements, &s.Tags,
		&s.Featured, &s.Accessible, &s.OnlineAvailable, &s.Guide, &s.ImageIDs,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *pgxRepository) All(ctx context.Context) ([]*Service, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(serviceColumns...).
		From("public.services").
		OrderBy("featured DESC", "name ASC", "id ASC")
	return r.query(ctx, query)
}

func (r *pgxRepository) ListByProvider(ctx context.Context, providerID string) ([]*Service, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(serviceColumns...).
		From("public.services").
		Where(squirrel.Eq{"provider_id": providerID}).
		OrderBy("featured DESC", "name ASC", "id ASC")
	return r.query(ctx, query)
}

func (r *pgxRepository) query(ctx context.Context, query squirrel.SelectBuilder) ([]*Service, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list services query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list services failed: %w", err)
	}
	defer rows.Close()

	result := []*Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service failed: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services failed: %w", err)
	}
	return result, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Service, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(serviceColumns...).
		From("public.services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get service query failed: %w", err)
	}

	s, err := scanService(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get service failed: %w", err)
	}
	return s, nil
}

func (r *pgxRepository) Create(ctx context.Context, s *Service, now time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.services").
		Columns(
			"provider_id", "name", "description", "long_description", "category",
			"address", "area", "phone", "email", "website", "hours", "requirements", "tags",
			"featured", "accessible", "online_available", "guide", "image_ids",
			"created_at", "updated_at",
		).
		Values(
			s.ProviderID, s.Name, s.Description, s.LongDescription, s.Category,
			s.Address, s.Area, s.Phone, s.Email, s.Website, s.Hours, s.Requirements, s.Tags,
			s.Featured, s.Accessible, s.OnlineAvailable, s.Guide, s.ImageIDs,
			now, now,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create service query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("create service failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Update(ctx context.Context, s *Service, now time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.services").
		SetMap(map[string]any{
			"name":             s.Name,
			"description":      s.Description,
			"long_description": s.LongDescription,
			"category":         s.Category,
			"address":          s.Address,
			"area":             s.Area,
			"phone":            s.Phone,
			"email":            s.Email,
			"website":          s.Website,
			"hours":            s.Hours,
			"requirements":     s.Requirements,
			"tags":             s.Tags,
			"featured":         s.Featured,
			"accessible":       s.Accessible,
			"online_available": s.OnlineAvailable,
			"guide":            s.Guide,
			"image_ids":        s.ImageIDs,
			"updated_at":       now,
		}).
		Where(squirrel.Eq{"id": s.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update service query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		if db.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("update service failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete service query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if db.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete service failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
