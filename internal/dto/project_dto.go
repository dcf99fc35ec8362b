package dto

import "time"

type CreateProjectRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type ProjectResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	CreatedBy    int64     `json:"created_by"`
	ConnectionID *int64    `json:"connection_id,omitempty"`
	Role         string    `json:"role,omitempty"` // caller's role in the project
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ProjectListQuery struct {
	PageQuery
}

type SelectProjectRequest struct {
	ProjectID int64 `json:"project_id" binding:"required,min=1"`
}

// CurrentProjectResponse carries a nil project when the caller can see none
type CurrentProjectResponse struct {
	Project *ProjectResponse `json:"project"`
}
