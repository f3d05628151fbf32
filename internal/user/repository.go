package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/civic-directory-backend/internal/db"
)

// Repository defines methods for accessing user data from storage.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
	Update(ctx context.Context, u *User) error
	UpdateLastLogin(ctx context.Context, id string, t time.Time) error
	AddFavorite(ctx context.Context, userID, serviceID string) error
	RemoveFavorite(ctx context.Context, userID, serviceID string) error
	ListFavorites(ctx context.Context, userID string) ([]string, error)
}

type pgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxUserRepository{pool: pool}
}

const selectUser = `
	SELECT
		u.id,
		u.display_name,
		u.phone,
		u.role,
		u.organization,
		u.password_hash,
		u.created_at,
		u.last_login_at,
		COALESCE(
			(
				SELECT array_agg(f.service_id::text ORDER BY f.created_at)
				FROM public.user_favorites f
				WHERE f.user_id = u.id
			),
			'{}'
		) AS favorites
	FROM public.users u
`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var role string
	err := row.Scan(
		&u.ID,
		&u.DisplayName,
		&u.Phone,
		&role,
		&u.Organization,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.LastLoginAt,
		&u.Favorites,
	)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Role = Role(role)
	return &u, nil
}

func (r *pgxUserRepository) Create(ctx context.Context, u *User) error {
	const query = `
		INSERT INTO public.users (display_name, phone, role, organization, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.pool.QueryRow(
		ctx,
		query,
		u.DisplayName,
		u.Phone,
		string(u.Role),
		u.Organization,
		u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt); err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			return ErrPhoneAlreadyUsed
		}
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *pgxUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, selectUser+" WHERE u.id = $1", id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get user by id failed: %w", err)
	}
	return u, err
}

func (r *pgxUserRepository) GetByPhone(ctx context.Context, phone string) (*User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, selectUser+" WHERE u.phone = $1", phone))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get user by phone failed: %w", err)
	}
	return u, err
}

func (r *pgxUserRepository) Update(ctx context.Context, u *User) error {
	const query = `
		UPDATE public.users
		SET display_name = $1, phone = $2, organization = $3
		WHERE id = $4
	`

	ct, err := r.pool.Exec(ctx, query, u.DisplayName, u.Phone, u.Organization, u.ID)
	if err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			return ErrPhoneAlreadyUsed
		}
		return fmt.Errorf("update user failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxUserRepository) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	const query = `
		UPDATE public.users
		SET last_login_at = $1
		WHERE id = $2
	`

	ct, err := r.pool.Exec(ctx, query, t, id)
	if err != nil {
		return fmt.Errorf("update last login failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxUserRepository) AddFavorite(ctx context.Context, userID, serviceID string) error {
	const query = `
		INSERT INTO public.user_favorites (user_id, service_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, service_id) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, userID, serviceID); err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.ForeignKeyViolation {
			if e.ConstraintName == "user_favorites_user_id_fkey" {
				return ErrNotFound
			}
			return ErrServiceNotFound
		}
		return fmt.Errorf("add favorite failed: %w", err)
	}
	return nil
}

func (r *pgxUserRepository) RemoveFavorite(ctx context.Context, userID, serviceID string) error {
	const query = `DELETE FROM public.user_favorites WHERE user_id = $1 AND service_id = $2`

	if _, err := r.pool.Exec(ctx, query, userID, serviceID); err != nil {
		return fmt.Errorf("remove favorite failed: %w", err)
	}
	return nil
}

func (r *pgxUserRepository) ListFavorites(ctx context.Context, userID string) ([]string, error) {
	const query = `
		SELECT service_id::text
		FROM public.user_favorites
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites failed: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan favorites failed: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
