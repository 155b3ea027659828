package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/valenvalita/project-manager/internal/apperrors"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

const (
	MaxNameLength  = 100
	MaxEmailLength = 255
)

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateUserRequest is the body of POST /users/. Email syntax is checked by
// User.Validate after normalization.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,max=255"`
	Role     Role   `json:"role" binding:"omitempty,oneof=admin manager user"`
	IsActive *bool  `json:"is_active"`
}

// UpdateUserRequest is the body of PATCH /users/{id}. Nil fields are left unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email    *string `json:"email" binding:"omitempty,max=255"`
	Role     *Role   `json:"role" binding:"omitempty,oneof=admin manager user"`
	IsActive *bool   `json:"is_active"`
}

// ListQuery is bound from GET /users/?active_only=.
type ListQuery struct {
	ActiveOnly bool `form:"active_only"`
}

var validate = validator.New()

// NormalizeEmail trims and lower-cases an address so that lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser builds the candidate entity for req, applying defaults.
func NewUser(req *CreateUserRequest) *User {
	u := &User{
		Name:     strings.TrimSpace(req.Name),
		Email:    NormalizeEmail(req.Email),
		Role:     req.Role,
		IsActive: true,
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	return u
}

// Apply merges the set fields of req into u.
func (u *User) Apply(req *UpdateUserRequest) {
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		u.Email = NormalizeEmail(*req.Email)
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
}

func (u *User) Validate() error {
	if u.Name == "" {
		return apperrors.Validation("name is required")
	}
	if utf8.RuneCountInString(u.Name) > MaxNameLength {
		return apperrors.Validation("name must be at most %d characters", MaxNameLength)
	}
	if utf8.RuneCountInString(u.Email) > MaxEmailLength {
		return apperrors.Validation("email must be at most %d characters", MaxEmailLength)
	}
	if err := validate.Var(u.Email, "required,email"); err != nil {
		return apperrors.Validation("email must be a valid email address")
	}
	if !u.Role.Valid() {
		return apperrors.Validation("invalid role %q", u.Role)
	}
	return nil
}
