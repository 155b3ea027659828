package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/valenvalita/project-manager/internal/apperrors"
	"github.com/valenvalita/project-manager/internal/pagination"
	"github.com/valenvalita/project-manager/internal/projects/domain"
)

// Repository is the persistence the project service depends on.
type Repository interface {
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, page pagination.Page) ([]domain.Project, error)
	Filter(ctx context.Context, f domain.Filter, page pagination.Page) ([]domain.Project, error)
	Update(ctx context.Context, p *domain.Project) (*domain.Project, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context, now time.Time) (*domain.Stats, error)
}

// UserLookup answers whether a user id exists.
type UserLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// ProjectService handles project-related business logic
type ProjectService struct {
	repo   Repository
	users  UserLookup
	logger *zap.Logger
}

// NewProjectService creates a new project service
func NewProjectService(repo Repository, users UserLookup, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

// Create validates req and stores a new project
func (s *ProjectService) Create(ctx context.Context, req *domain.CreateProjectRequest) (*domain.Project, error) {
	p := domain.NewProject(req)
	if err := s.check(ctx, p); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Project created", zap.Int64("project_id", created.ID), zap.String("status", string(created.Status)))
	return created, nil
}

// Get returns a single project
func (s *ProjectService) Get(ctx context.Context, id int64) (*domain.Project, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns one page of projects
func (s *ProjectService) List(ctx context.Context, page pagination.Page) ([]domain.Project, error) {
	return s.repo.List(ctx, page)
}

// Filter returns one page of projects matching f
func (s *ProjectService) Filter(ctx context.Context, f domain.Filter, page pagination.Page) ([]domain.Project, error) {
	return s.repo.Filter(ctx, f, page)
}

// Replace overwrites every mutable field of a project with req
func (s *ProjectService) Replace(ctx context.Context, id int64, req *domain.CreateProjectRequest) (*domain.Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Replace(req)
	return s.save(ctx, p)
}

// Patch merges the supplied fields of req into a project. Cross-field rules
// are checked against the merged values.
func (s *ProjectService) Patch(ctx context.Context, id int64, req *domain.UpdateProjectRequest) (*domain.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Apply(req)
	return s.save(ctx, p)
}

// Delete removes a project. Referenced users are untouched.
func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Project deleted", zap.Int64("project_id", id))
	return nil
}

// Stats summarises all projects, counting overdue ones relative to now
func (s *ProjectService) Stats(ctx context.Context, now time.Time) (*domain.Stats, error) {
	return s.repo.Stats(ctx, now)
}

func (s *ProjectService) save(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	if err := s.check(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, p)
}

// check runs the entity invariants and confirms every referenced user exists.
func (s *ProjectService) check(ctx context.Context, p *domain.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	for _, id := range p.UserRefs() {
		ok, err := s.users.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.Validation("user %d does not exist", id)
		}
	}
	return nil
}
