package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/valenvalita/project-manager/internal/apperrors"
	"github.com/valenvalita/project-manager/internal/pagination"
	projectdomain "github.com/valenvalita/project-manager/internal/projects/domain"
	projectrepo "github.com/valenvalita/project-manager/internal/projects/repository"
	"github.com/valenvalita/project-manager/internal/storage/postgres"
	"github.com/valenvalita/project-manager/internal/testhelpers/pgtest"
	userdomain "github.com/valenvalita/project-manager/internal/users/domain"
	userrepo "github.com/valenvalita/project-manager/internal/users/repository"
)

// setupTestPostgres migrates the test database and empties both tables.
func setupTestPostgres(t *testing.T) *sql.DB {
	dsn := pgtest.DSN(t)

	require.NoError(t, postgres.RunMigrations(dsn, zap.NewNop()))
	// A second run must be a no-op.
	require.NoError(t, postgres.RunMigrations(dsn, zap.NewNop()))

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(ctx))

	_, err = db.ExecContext(ctx, `TRUNCATE projects, users RESTART IDENTITY CASCADE;`)
	require.NoError(t, err)
	return db
}

func TestPersistence_UsersAndProjects(t *testing.T) {
	db := setupTestPostgres(t)
	ctx := context.Background()
	users := userrepo.NewUserRepository(db, zap.NewNop())
	projects := projectrepo.NewProjectRepository(db, zap.NewNop())

	ada, err := users.Create(ctx, userdomain.NewUser(&userdomain.CreateUserRequest{Name: "Ada", Email: "ada@example.com"}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), ada.ID)

	t.Run("email uniqueness is case-insensitive", func(t *testing.T) {
		_, err := users.Create(ctx, &userdomain.User{Name: "Ada", Email: "ADA@example.com", Role: userdomain.RoleUser, IsActive: true})
		assert.ErrorIs(t, err, apperrors.ErrConflict)

		found, err := users.GetByEmail(ctx, "Ada@Example.com")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, ada.ID, found.ID)
	})

	t.Run("foreign keys", func(t *testing.T) {
		ghost := int64(999)
		_, err := projects.Create(ctx, projectdomain.NewProject(&projectdomain.CreateProjectRequest{Title: "x", CreatedByID: &ghost}))
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		owned, err := projects.Create(ctx, projectdomain.NewProject(&projectdomain.CreateProjectRequest{Title: "Owned", AssignedToID: &ada.ID}))
		require.NoError(t, err)

		n, err := projects.CountByUser(ctx, ada.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		assert.ErrorIs(t, users.Delete(ctx, ada.ID), apperrors.ErrConflict)

		require.NoError(t, projects.Delete(ctx, owned.ID))
		ok, err := users.Exists(ctx, ada.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("check constraints", func(t *testing.T) {
		p := projectdomain.NewProject(&projectdomain.CreateProjectRequest{Title: "Backwards"})
		p.StartDate = projectdomain.NewTimestamp(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
		p.EndDate = projectdomain.NewTimestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		_, err := projects.Create(ctx, p)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestPersistence_FilterUpdateStats(t *testing.T) {
	db := setupTestPostgres(t)
	ctx := context.Background()
	projects := projectrepo.NewProjectRepository(db, zap.NewNop())
	budget := 1500.25

	var ids []int64
	for _, req := range []projectdomain.CreateProjectRequest{
		{Title: "a", Status: projectdomain.StatusCompleted, Priority: projectdomain.PriorityLow},
		{Title: "b", Status: projectdomain.StatusCompleted, Priority: projectdomain.PriorityHigh, Budget: &budget},
		{Title: "c", Status: projectdomain.StatusInProgress, DueDate: projectdomain.NewTimestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))},
	} {
		p, err := projects.Create(ctx, projectdomain.NewProject(&req))
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	completed := projectdomain.StatusCompleted
	out, err := projects.Filter(ctx, projectdomain.Filter{Status: &completed}, pagination.New(0, 0))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []int64{ids[0], ids[1]}, []int64{out[0].ID, out[1].ID})
	assert.Equal(t, budget, *out[1].Budget)

	page, err := projects.List(ctx, pagination.New(2, 10))
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "c", page[0].Title)

	p := page[0]
	before := p.UpdatedAt
	p.Status = projectdomain.StatusCancelled
	updated, err := projects.Update(ctx, &p)
	require.NoError(t, err)
	assert.Equal(t, projectdomain.StatusCancelled, updated.Status)
	assert.True(t, updated.UpdatedAt.After(before))
	require.NotNil(t, updated.DueDate)
	assert.True(t, updated.DueDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	stats, err := projects.Stats(ctx, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, projectdomain.Stats{Total: 3, Completed: 2, Cancelled: 1}, *stats)

	_, err = projects.GetByID(ctx, 12345)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
