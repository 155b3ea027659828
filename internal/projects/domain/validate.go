package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/valenvalita/project-manager/internal/apperrors"
)

// Validate checks the field and cross-field invariants of a candidate project.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return apperrors.Validation("title is required")
	}
	if utf8.RuneCountInString(p.Title) > MaxTitleLength {
		return apperrors.Validation("title must be at most %d characters", MaxTitleLength)
	}
	if !p.Status.Valid() {
		return apperrors.Validation("invalid status %q", p.Status)
	}
	if !p.Priority.Valid() {
		return apperrors.Validation("invalid priority %q", p.Priority)
	}
	if p.Budget != nil && *p.Budget < 0 {
		return apperrors.Validation("budget must be greater than or equal to 0")
	}
	if p.ActualCost != nil && *p.ActualCost < 0 {
		return apperrors.Validation("actual_cost must be greater than or equal to 0")
	}
	if p.StartDate != nil && p.EndDate != nil && p.StartDate.After(p.EndDate.Time) {
		return apperrors.Validation("start_date must be on or before end_date")
	}
	if p.CreatedByID != nil && *p.CreatedByID <= 0 {
		return apperrors.Validation("created_by_id must be a positive id")
	}
	if p.AssignedToID != nil && *p.AssignedToID <= 0 {
		return apperrors.Validation("assigned_to_id must be a positive id")
	}
	return nil
}

// Overdue reports whether an open project has passed its due or end date.
func (p *Project) Overdue(now time.Time) bool {
	if p.Status.Closed() {
		return false
	}
	if p.DueDate != nil && p.DueDate.Before(now) {
		return true
	}
	return p.EndDate != nil && p.EndDate.Before(now)
}

// NewProject builds the candidate entity for req, applying defaults.
func NewProject(req *CreateProjectRequest) *Project {
	p := &Project{
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		DueDate:        req.DueDate,
		CompletionDate: req.CompletionDate,
		Budget:         req.Budget,
		ActualCost:     req.ActualCost,
		CreatedByID:    req.CreatedByID,
		AssignedToID:   req.AssignedToID,
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	return p
}

// Replace overwrites every mutable field of p with req, keeping identity and timestamps.
func (p *Project) Replace(req *CreateProjectRequest) {
	next := NewProject(req)
	next.ID = p.ID
	next.CreatedAt = p.CreatedAt
	next.UpdatedAt = p.UpdatedAt
	*p = *next
}

// Apply merges the present fields of req into p. Call req.Validate first.
func (p *Project) Apply(req *UpdateProjectRequest) {
	if req.Title.Value != nil {
		p.Title = strings.TrimSpace(*req.Title.Value)
	}
	if req.Status.Value != nil {
		p.Status = *req.Status.Value
	}
	if req.Priority.Value != nil {
		p.Priority = *req.Priority.Value
	}
	req.Description.assign(&p.Description)
	req.StartDate.assign(&p.StartDate)
	req.EndDate.assign(&p.EndDate)
	req.DueDate.assign(&p.DueDate)
	req.CompletionDate.assign(&p.CompletionDate)
	req.Budget.assign(&p.Budget)
	req.ActualCost.assign(&p.ActualCost)
	req.CreatedByID.assign(&p.CreatedByID)
	req.AssignedToID.assign(&p.AssignedToID)
}

// UserRefs lists the distinct user ids p points at.
func (p *Project) UserRefs() []int64 {
	var ids []int64
	if p.CreatedByID != nil {
		ids = append(ids, *p.CreatedByID)
	}
	if p.AssignedToID != nil && (p.CreatedByID == nil || *p.AssignedToID != *p.CreatedByID) {
		ids = append(ids, *p.AssignedToID)
	}
	return ids
}
