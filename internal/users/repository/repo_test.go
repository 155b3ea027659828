package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/valenvalita/project-manager/internal/apperrors"
	"github.com/valenvalita/project-manager/internal/pagination"
	"github.com/valenvalita/project-manager/internal/users/domain"
)

var columns = []string{"id", "name", "email", "role", "is_active", "created_at", "updated_at"}

func setupUserRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewUserRepository(db, zap.NewNop()), mock
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := setupUserRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Ada", "ada@example.com", "user", true).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(1), "Ada", "ada@example.com", "user", true, now, now))

	u, err := repo.Create(context.Background(), domain.NewUser(&domain.CreateUserRequest{Name: "Ada", Email: "ada@example.com"}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.True(t, u.IsActive)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := setupUserRepo(t)

	t.Run("pgx driver", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		_, err := repo.Create(context.Background(), domain.NewUser(&domain.CreateUserRequest{Name: "Ada", Email: "ada@example.com"}))
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("lib/pq driver", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

		_, err := repo.Create(context.Background(), domain.NewUser(&domain.CreateUserRequest{Name: "Ada", Email: "ada@example.com"}))
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	repo, mock := setupUserRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE lower(email) = lower($1)`)).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(3), "Ada", "ada@example.com", "admin", false, now, now))

	u, err := repo.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, int64(3), u.ID)
	assert.Equal(t, domain.RoleAdmin, u.Role)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE lower(email) = lower($1)`)).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	u, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := setupUserRepo(t)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs(int64(8)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 8)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Exists(t *testing.T) {
	repo, mock := setupUserRepo(t)

	mock.ExpectQuery(`SELECT EXISTS`).WithArgs(int64(2)).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs(int64(9)).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.Exists(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List(t *testing.T) {
	repo, mock := setupUserRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users ORDER BY id LIMIT $1 OFFSET $2`)).
		WithArgs(100, 0).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(1), "Ada", "ada@example.com", "user", true, now, now).
			AddRow(int64(2), "Bob", "bob@example.com", "user", false, now, now))

	all, err := repo.List(context.Background(), false, pagination.New(0, 0))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE is_active ORDER BY id LIMIT $1 OFFSET $2`)).
		WithArgs(100, 0).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(1), "Ada", "ada@example.com", "user", true, now, now))

	active, err := repo.List(context.Background(), true, pagination.New(0, 0))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.True(t, active[0].IsActive)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update(t *testing.T) {
	repo, mock := setupUserRepo(t)
	now := time.Now().UTC()

	u := &domain.User{ID: 4, Name: "Ada", Email: "ada@example.com", Role: domain.RoleManager, IsActive: true}

	mock.ExpectQuery(`UPDATE users\s+SET .*, updated_at = now\(\)\s+WHERE id = \$1`).
		WithArgs(int64(4), "Ada", "ada@example.com", "manager", true).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(4), "Ada", "ada@example.com", "manager", true, now.Add(-time.Hour), now))

	updated, err := repo.Update(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, updated.Role)
	assert.True(t, now.Equal(updated.UpdatedAt))

	mock.ExpectQuery(`UPDATE users`).WillReturnError(sql.ErrNoRows)
	_, err = repo.Update(context.Background(), u)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete(t *testing.T) {
	repo, mock := setupUserRepo(t)

	mock.ExpectExec(`DELETE FROM users`).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 1))

	mock.ExpectExec(`DELETE FROM users`).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 2), apperrors.ErrNotFound)

	mock.ExpectExec(`DELETE FROM users`).WithArgs(int64(3)).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "projects_created_by_id_fkey"})
	assert.ErrorIs(t, repo.Delete(context.Background(), 3), apperrors.ErrConflict)

	require.NoError(t, mock.ExpectationsWereMet())
}
