package dto

import "time"

type AddMemberRequest struct {
	UserID int64  `json:"user_id" binding:"required,min=1"`
	Role   string `json:"role" binding:"omitempty,oneof=viewer editor admin"` // viewer when empty
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=viewer editor admin"`
}

// MemberParam binds /projects/:id/members/:user_id
type MemberParam struct {
	ID     int64 `uri:"id" binding:"required,min=1"`
	UserID int64 `uri:"user_id" binding:"required,min=1"`
}

type MemberResponse struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	AddedBy   *int64    `json:"added_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
