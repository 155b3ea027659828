package domain

import (
	"time"

	"github.com/valenvalita/project-manager/internal/apperrors"
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Closed reports whether no further work is expected on the project.
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

const MaxTitleLength = 200

// Project is a tracked unit of work. CreatedByID and AssignedToID are weak
// references to users; the project never owns them.
type Project struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	Status         Status     `json:"status"`
	Priority       Priority   `json:"priority"`
	StartDate      *Timestamp `json:"start_date"`
	EndDate        *Timestamp `json:"end_date"`
	DueDate        *Timestamp `json:"due_date"`
	CompletionDate *Timestamp `json:"completion_date"`
	Budget         *float64   `json:"budget"`
	ActualCost     *float64   `json:"actual_cost"`
	CreatedByID    *int64     `json:"created_by_id"`
	AssignedToID   *int64     `json:"assigned_to_id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateProjectRequest is the body of POST /projects/ and PUT /projects/{id}.
type CreateProjectRequest struct {
	Title          string     `json:"title" binding:"required,max=200"`
	Description    *string    `json:"description"`
	Status         Status     `json:"status" binding:"omitempty,oneof=draft in_progress completed cancelled"`
	Priority       Priority   `json:"priority" binding:"omitempty,oneof=low medium high"`
	StartDate      *Timestamp `json:"start_date"`
	EndDate        *Timestamp `json:"end_date"`
	DueDate        *Timestamp `json:"due_date"`
	CompletionDate *Timestamp `json:"completion_date"`
	Budget         *float64   `json:"budget" binding:"omitempty,gte=0"`
	ActualCost     *float64   `json:"actual_cost" binding:"omitempty,gte=0"`
	CreatedByID    *int64     `json:"created_by_id" binding:"omitempty,gt=0"`
	AssignedToID   *int64     `json:"assigned_to_id" binding:"omitempty,gt=0"`
}

// UpdateProjectRequest is the body of PATCH /projects/{id}. Absent keys are left
// unchanged; an explicit null clears a nullable field. Title, status and
// priority cannot be null.
type UpdateProjectRequest struct {
	Title          Optional[string]    `json:"title"`
	Description    Optional[string]    `json:"description"`
	Status         Optional[Status]    `json:"status"`
	Priority       Optional[Priority]  `json:"priority"`
	StartDate      Optional[Timestamp] `json:"start_date"`
	EndDate        Optional[Timestamp] `json:"end_date"`
	DueDate        Optional[Timestamp] `json:"due_date"`
	CompletionDate Optional[Timestamp] `json:"completion_date"`
	Budget         Optional[float64]   `json:"budget"`
	ActualCost     Optional[float64]   `json:"actual_cost"`
	CreatedByID    Optional[int64]     `json:"created_by_id"`
	AssignedToID   Optional[int64]     `json:"assigned_to_id"`
}

// Validate rejects nulls for the fields a project cannot be without.
func (r *UpdateProjectRequest) Validate() error {
	switch {
	case r.Title.Null():
		return apperrors.Validation("title cannot be null")
	case r.Status.Null():
		return apperrors.Validation("status cannot be null")
	case r.Priority.Null():
		return apperrors.Validation("priority cannot be null")
	}
	return nil
}

// Filter selects projects by equality on the set fields, AND-combined.
type Filter struct {
	Status   *Status
	Priority *Priority
}

// FilterQuery is bound from GET /projects/filter/?status=&priority=.
type FilterQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=draft in_progress completed cancelled"`
	Priority string `form:"priority" binding:"omitempty,oneof=low medium high"`
}

func (q FilterQuery) Filter() Filter {
	var f Filter
	if q.Status != "" {
		s := Status(q.Status)
		f.Status = &s
	}
	if q.Priority != "" {
		p := Priority(q.Priority)
		f.Priority = &p
	}
	return f
}

// Stats summarises the project portfolio.
type Stats struct {
	Total      int `json:"total"`
	Draft      int `json:"draft"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
	Overdue    int `json:"overdue"`
}
