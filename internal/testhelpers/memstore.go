// Package testhelpers provides in-memory stand-ins for the PostgreSQL
// repositories so services and handlers can be tested without a database.
package testhelpers

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/valenvalita/project-manager/internal/apperrors"
	"github.com/valenvalita/project-manager/internal/pagination"
	projectdomain "github.com/valenvalita/project-manager/internal/projects/domain"
	userdomain "github.com/valenvalita/project-manager/internal/users/domain"
)

// Store holds projects and users behind one lock and enforces the same
// constraints as the schema: unique emails and RESTRICT foreign keys.
type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	nextID   int64
	projects map[int64]projectdomain.Project
	users    map[int64]userdomain.User
}

func NewStore() *Store {
	return &Store{
		now:      func() time.Time { return time.Now().UTC() },
		projects: make(map[int64]projectdomain.Project),
		users:    make(map[int64]userdomain.User),
	}
}

// SetClock replaces the time source used for created_at/updated_at.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Projects() *ProjectStore { return &ProjectStore{s} }

func (s *Store) Users() *UserStore { return &UserStore{s} }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) checkRefs(p *projectdomain.Project) error {
	for _, id := range p.UserRefs() {
		if _, ok := s.users[id]; !ok {
			return apperrors.Validation("referenced user does not exist")
		}
	}
	return nil
}

// ProjectStore implements the project repository over a Store.
type ProjectStore struct{ s *Store }

func (r *ProjectStore) Create(_ context.Context, p *projectdomain.Project) (*projectdomain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkRefs(p); err != nil {
		return nil, err
	}
	stored := *p
	stored.ID = r.s.id()
	stored.CreatedAt = r.s.now()
	stored.UpdatedAt = stored.CreatedAt
	r.s.projects[stored.ID] = stored
	return &stored, nil
}

func (r *ProjectStore) GetByID(_ context.Context, id int64) (*projectdomain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.projects[id]
	if !ok {
		return nil, apperrors.NotFound("project %d not found", id)
	}
	return &p, nil
}

func (r *ProjectStore) List(ctx context.Context, page pagination.Page) ([]projectdomain.Project, error) {
	return r.Filter(ctx, projectdomain.Filter{}, page)
}

func (r *ProjectStore) Filter(_ context.Context, f projectdomain.Filter, page pagination.Page) ([]projectdomain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := make([]projectdomain.Project, 0, len(r.s.projects))
	for _, p := range r.s.projects {
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		if f.Priority != nil && p.Priority != *f.Priority {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	start, end := page.Apply(len(matched))
	return matched[start:end], nil
}

func (r *ProjectStore) Update(_ context.Context, p *projectdomain.Project) (*projectdomain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.projects[p.ID]
	if !ok {
		return nil, apperrors.NotFound("project %d not found", p.ID)
	}
	if err := r.s.checkRefs(p); err != nil {
		return nil, err
	}
	stored := *p
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = r.s.now()
	r.s.projects[p.ID] = stored
	return &stored, nil
}

func (r *ProjectStore) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[id]; !ok {
		return apperrors.NotFound("project %d not found", id)
	}
	delete(r.s.projects, id)
	return nil
}

func (r *ProjectStore) CountByUser(_ context.Context, userID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for _, p := range r.s.projects {
		if slices.Contains(p.UserRefs(), userID) {
			n++
		}
	}
	return n, nil
}

func (r *ProjectStore) Stats(_ context.Context, now time.Time) (*projectdomain.Stats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var st projectdomain.Stats
	for _, p := range r.s.projects {
		st.Total++
		switch p.Status {
		case projectdomain.StatusDraft:
			st.Draft++
		case projectdomain.StatusInProgress:
			st.InProgress++
		case projectdomain.StatusCompleted:
			st.Completed++
		case projectdomain.StatusCancelled:
			st.Cancelled++
		}
		if p.Overdue(now) {
			st.Overdue++
		}
	}
	return &st, nil
}

// UserStore implements the user repository over a Store.
type UserStore struct{ s *Store }

func (r *UserStore) Create(_ context.Context, u *userdomain.User) (*userdomain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTaken(u.Email, 0) {
		return nil, apperrors.Conflict("email %s is already registered", u.Email)
	}
	stored := *u
	stored.ID = r.s.id()
	stored.CreatedAt = r.s.now()
	stored.UpdatedAt = stored.CreatedAt
	r.s.users[stored.ID] = stored
	return &stored, nil
}

func (r *UserStore) GetByID(_ context.Context, id int64) (*userdomain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.NotFound("user %d not found", id)
	}
	return &u, nil
}

func (r *UserStore) GetByEmail(_ context.Context, email string) (*userdomain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserStore) Exists(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, ok := r.s.users[id]
	return ok, nil
}

func (r *UserStore) List(_ context.Context, activeOnly bool, page pagination.Page) ([]userdomain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := make([]userdomain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if activeOnly && !u.IsActive {
			continue
		}
		matched = append(matched, u)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	start, end := page.Apply(len(matched))
	return matched[start:end], nil
}

func (r *UserStore) Update(_ context.Context, u *userdomain.User) (*userdomain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[u.ID]
	if !ok {
		return nil, apperrors.NotFound("user %d not found", u.ID)
	}
	if r.emailTaken(u.Email, u.ID) {
		return nil, apperrors.Conflict("email %s is already registered", u.Email)
	}
	stored := *u
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = r.s.now()
	r.s.users[u.ID] = stored
	return &stored, nil
}

func (r *UserStore) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return apperrors.NotFound("user %d not found", id)
	}
	for _, p := range r.s.projects {
		if slices.Contains(p.UserRefs(), id) {
			return apperrors.Conflict("user %d is referenced by existing projects", id)
		}
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserStore) emailTaken(email string, self int64) bool {
	for _, u := range r.s.users {
		if u.ID != self && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}
