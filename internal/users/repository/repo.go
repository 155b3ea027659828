package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/valenvalita/project-manager/internal/apperrors"
	"github.com/valenvalita/project-manager/internal/pagination"
	"github.com/valenvalita/project-manager/internal/storage/postgres"
	"github.com/valenvalita/project-manager/internal/users/domain"
)

const userColumns = `id, name, email, role, is_active, created_at, updated_at`

type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewUserRepository(db *sql.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	q := `
INSERT INTO users (name, email, role, is_active)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns + `;
`
	created, err := scanUser(r.db.QueryRowContext(ctx, q, u.Name, u.Email, string(u.Role), u.IsActive))
	if err != nil {
		return nil, r.translate(err, "insert user", u.Email)
	}
	return created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1;`

	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user %d not found", id)
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// GetByEmail matches case-insensitively. It returns (nil, nil) when no user has the address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1);`

	u, err := scanUser(r.db.QueryRowContext(ctx, q, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1);`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("check user %d: %w", id, err)
	}
	return ok, nil
}

// List returns one page of users ordered by id, optionally only the active ones.
func (r *UserRepository) List(ctx context.Context, activeOnly bool, page pagination.Page) ([]domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users`
	args := []any{page.Limit, page.Offset}
	if activeOnly {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY id LIMIT $1 OFFSET $2;`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	q := `
UPDATE users
SET name = $2, email = $3, role = $4, is_active = $5, updated_at = now()
WHERE id = $1
RETURNING ` + userColumns + `;
`
	updated, err := scanUser(r.db.QueryRowContext(ctx, q, u.ID, u.Name, u.Email, string(u.Role), u.IsActive))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user %d not found", u.ID)
		}
		return nil, r.translate(err, "update user", u.Email)
	}
	return updated, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1;`, id)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperrors.Conflict("user %d is referenced by existing projects", id)
		}
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if n == 0 {
		return apperrors.NotFound("user %d not found", id)
	}
	return nil
}

func (r *UserRepository) translate(err error, op, email string) error {
	switch {
	case postgres.IsUniqueViolation(err):
		return apperrors.Conflict("email %s is already registered", email)
	case postgres.IsCheckViolation(err):
		return apperrors.Validation("user violates constraint %s", postgres.ConstraintName(err))
	}
	r.logger.Error("User query failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}
