package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/valenvalita/project-manager/internal/apperrors"
	"github.com/valenvalita/project-manager/internal/pagination"
	"github.com/valenvalita/project-manager/internal/projects/domain"
	"github.com/valenvalita/project-manager/internal/storage/postgres"
)

const projectColumns = `id, title, description, status, priority, start_date, end_date, due_date, completion_date,
       budget, actual_cost, created_by_id, assigned_to_id, created_at, updated_at`

// ProjectRepository provides persistence operations for projects
type ProjectRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

// Create inserts p and returns the stored row.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	q := `
INSERT INTO projects (title, description, status, priority, start_date, end_date, due_date, completion_date,
                      budget, actual_cost, created_by_id, assigned_to_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + projectColumns + `;
`
	row := r.db.QueryRowContext(ctx, q,
		p.Title,
		p.Description,
		string(p.Status),
		string(p.Priority),
		p.StartDate.TimePtr(),
		p.EndDate.TimePtr(),
		p.DueDate.TimePtr(),
		p.CompletionDate.TimePtr(),
		p.Budget,
		p.ActualCost,
		p.CreatedByID,
		p.AssignedToID,
	)

	created, err := scanProject(row)
	if err != nil {
		return nil, r.translate(err, "insert project")
	}

	r.logger.Debug("Project inserted", zap.Int64("id", created.ID), zap.String("title", created.Title))
	return created, nil
}

// GetByID returns the project with the given id.
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1;`

	p, err := scanProject(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("project %d not found", id)
		}
		return nil, fmt.Errorf("get project %d: %w", id, err)
	}
	return p, nil
}

// List returns one page of projects ordered by id.
func (r *ProjectRepository) List(ctx context.Context, page pagination.Page) ([]domain.Project, error) {
	return r.Filter(ctx, domain.Filter{}, page)
}

// Filter returns one page of projects matching every set field of f.
func (r *ProjectRepository) Filter(ctx context.Context, f domain.Filter, page pagination.Page) ([]domain.Project, error) {
	var (
		conds []string
		args  []any
	)
	if f.Status != nil {
		args = append(args, string(*f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Priority != nil {
		args = append(args, string(*f.Priority))
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + projectColumns + " FROM projects")
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	args = append(args, page.Limit, page.Offset)
	fmt.Fprintf(&sb, " ORDER BY id LIMIT $%d OFFSET $%d;", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, page.Limit)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// Update writes every mutable column of p and refreshes updated_at.
func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	q := `
UPDATE projects
SET title = $2, description = $3, status = $4, priority = $5,
    start_date = $6, end_date = $7, due_date = $8, completion_date = $9,
    budget = $10, actual_cost = $11, created_by_id = $12, assigned_to_id = $13,
    updated_at = now()
WHERE id = $1
RETURNING ` + projectColumns + `;
`
	row := r.db.QueryRowContext(ctx, q,
		p.ID,
		p.Title,
		p.Description,
		string(p.Status),
		string(p.Priority),
		p.StartDate.TimePtr(),
		p.EndDate.TimePtr(),
		p.DueDate.TimePtr(),
		p.CompletionDate.TimePtr(),
		p.Budget,
		p.ActualCost,
		p.CreatedByID,
		p.AssignedToID,
	)

	updated, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("project %d not found", p.ID)
		}
		return nil, r.translate(err, "update project")
	}
	return updated, nil
}

// Delete removes the project with the given id.
func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete project %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project %d: %w", id, err)
	}
	if n == 0 {
		return apperrors.NotFound("project %d not found", id)
	}
	return nil
}

// CountByUser returns how many projects reference userID as creator or assignee.
func (r *ProjectRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	const q = `SELECT count(*) FROM projects WHERE created_by_id = $1 OR assigned_to_id = $1;`

	var n int
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects for user %d: %w", userID, err)
	}
	return n, nil
}

// Stats aggregates status counts and the number of open projects past due at now.
func (r *ProjectRepository) Stats(ctx context.Context, now time.Time) (*domain.Stats, error) {
	const q = `
SELECT count(*),
       count(*) FILTER (WHERE status = 'draft'),
       count(*) FILTER (WHERE status = 'in_progress'),
       count(*) FILTER (WHERE status = 'completed'),
       count(*) FILTER (WHERE status = 'cancelled'),
       count(*) FILTER (WHERE status NOT IN ('completed', 'cancelled')
                          AND (due_date < $1 OR end_date < $1))
FROM projects;
`
	var s domain.Stats
	err := r.db.QueryRowContext(ctx, q, now).
		Scan(&s.Total, &s.Draft, &s.InProgress, &s.Completed, &s.Cancelled, &s.Overdue)
	if err != nil {
		return nil, fmt.Errorf("project stats: %w", err)
	}
	return &s, nil
}

func (r *ProjectRepository) translate(err error, op string) error {
	switch {
	case postgres.IsForeignKeyViolation(err):
		return apperrors.Validation("referenced user does not exist")
	case postgres.IsCheckViolation(err):
		return apperrors.Validation("project violates constraint %s", postgres.ConstraintName(err))
	}
	r.logger.Error("Project query failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p                           domain.Project
		status, priority            string
		description                 sql.NullString
		start, end, due, completion sql.NullTime
		budget, actualCost          sql.NullFloat64
		createdByID, assignedToID   sql.NullInt64
	)

	err := row.Scan(
		&p.ID,
		&p.Title,
		&description,
		&status,
		&priority,
		&start,
		&end,
		&due,
		&completion,
		&budget,
		&actualCost,
		&createdByID,
		&assignedToID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Status = domain.Status(status)
	p.Priority = domain.Priority(priority)
	if description.Valid {
		p.Description = &description.String
	}
	p.StartDate = nullTimestamp(start)
	p.EndDate = nullTimestamp(end)
	p.DueDate = nullTimestamp(due)
	p.CompletionDate = nullTimestamp(completion)
	if budget.Valid {
		p.Budget = &budget.Float64
	}
	if actualCost.Valid {
		p.ActualCost = &actualCost.Float64
	}
	if createdByID.Valid {
		p.CreatedByID = &createdByID.Int64
	}
	if assignedToID.Valid {
		p.AssignedToID = &assignedToID.Int64
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()

	return &p, nil
}

func nullTimestamp(t sql.NullTime) *domain.Timestamp {
	if !t.Valid {
		return nil
	}
	return domain.NewTimestamp(t.Time)
}
