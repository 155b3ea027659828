package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/valenvalita/project-manager/internal/apperrors"
	"github.com/valenvalita/project-manager/internal/pagination"
	"github.com/valenvalita/project-manager/internal/users/domain"
)

type Repository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, activeOnly bool, page pagination.Page) ([]domain.User, error)
	Update(ctx context.Context, u *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

// ProjectReferences counts the projects that point at a user.
type ProjectReferences interface {
	CountByUser(ctx context.Context, userID int64) (int, error)
}

// UserService handles user-related business logic
type UserService struct {
	repo     Repository
	projects ProjectReferences
	logger   *zap.Logger
}

func NewUserService(repo Repository, projects ProjectReferences, logger *zap.Logger) *UserService {
	return &UserService{
		repo:     repo,
		projects: projects,
		logger:   logger,
	}
}

// Create registers a user. The email must not belong to anyone else.
func (s *UserService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	u := domain.NewUser(req)
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, u.Email, 0); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User created", zap.Int64("user_id", created.ID), zap.String("role", string(created.Role)))
	return created, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, activeOnly bool, page pagination.Page) ([]domain.User, error) {
	return s.repo.List(ctx, activeOnly, page)
}

// Patch merges the supplied fields of req into a user.
func (s *UserService) Patch(ctx context.Context, id int64, req *domain.UpdateUserRequest) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := u.Email
	u.Apply(req)
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if u.Email != previous {
		if err := s.ensureEmailFree(ctx, u.Email, u.ID); err != nil {
			return nil, err
		}
	}

	return s.repo.Update(ctx, u)
}

// Delete removes a user that no project references.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	n, err := s.projects.CountByUser(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperrors.Conflict("user %d is referenced by %d project(s)", id, n)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("User deleted", zap.Int64("user_id", id))
	return nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, self int64) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return apperrors.Conflict("email %s is already registered", email)
	}
	return nil
}
