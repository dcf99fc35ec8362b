package dto

import "time"

type UserResponse struct {
	ID            int64      `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Avatar        *string    `json:"avatar,omitempty"`
	Role          string     `json:"role"`
	AuthProvider  string     `json:"auth_provider"`
	Status        int8       `json:"status"`
	IsSuperuser   bool       `json:"is_superuser"`
	LastProjectID *int64     `json:"last_project_id,omitempty"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type UserListQuery struct {
	PageQuery
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin superuser"`
}

type UpdateUserStatusRequest struct {
	Status *int8 `json:"status" binding:"required,oneof=0 1"`
}

type UpdateProfileRequest struct {
	Name   string  `json:"name" binding:"required,max=100"`
	Avatar *string `json:"avatar" binding:"omitempty,max=255"`
}

// UserMembershipResponse is one project a user belongs to
type UserMembershipResponse struct {
	ProjectID   int64  `json:"project_id"`
	ProjectName string `json:"project_name"`
	Role        string `json:"role"`
}
