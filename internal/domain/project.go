package domain

import "time"

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

// Project is a cost center that transactions may be attributed to.
//
// There is no foreign-key enforcement: a Transaction.ProjectID may reference a
// project that no longer exists, which consumers treat as "no project".
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Code        string        `json:"code,omitempty"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	StartDate   *time.Time    `json:"start_date,omitempty"`
	EndDate     *time.Time    `json:"end_date,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// CreateProjectInput carries the caller-controlled fields for a new project.
type CreateProjectInput struct {
	Name        string
	Code        string
	Description string
	Status      ProjectStatus
	StartDate   *time.Time
	EndDate     *time.Time
}

// UpdateProjectInput is a partial patch; nil fields are left untouched.
type UpdateProjectInput struct {
	Name        *string
	Code        *string
	Description *string
	Status      *ProjectStatus
	StartDate   *time.Time
	EndDate     *time.Time
}
