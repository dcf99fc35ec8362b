package dto

import "time"

type CreateConnectionRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Driver   string `json:"driver" binding:"omitempty,oneof=postgres mysql"` // postgres when empty
	Host     string `json:"host" binding:"required,max=255"`
	Port     int    `json:"port" binding:"omitempty,min=1,max=65535"` // 5432 when empty
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"max=255"`
	Database string `json:"database" binding:"required,max=100"`
	SSL      bool   `json:"ssl"`
}

// UpdateConnectionRequest is partial; an empty password keeps the stored one
type UpdateConnectionRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=100"`
	Driver   *string `json:"driver" binding:"omitempty,oneof=postgres mysql"`
	Host     *string `json:"host" binding:"omitempty,min=1,max=255"`
	Port     *int    `json:"port" binding:"omitempty,min=1,max=65535"`
	Username *string `json:"username" binding:"omitempty,min=1,max=100"`
	Password *string `json:"password" binding:"omitempty,max=255"`
	Database *string `json:"database" binding:"omitempty,min=1,max=100"`
	SSL      *bool   `json:"ssl"`
}

type ConnectionResponse struct {
	ID            int64      `json:"id"`
	ProjectID     int64      `json:"project_id"`
	Name          string     `json:"name"`
	Driver        string     `json:"driver"`
	Host          string     `json:"host"`
	Port          int        `json:"port"`
	Username      string     `json:"username"`
	Database      string     `json:"database"`
	SSL           bool       `json:"ssl"`
	HasPassword   bool       `json:"has_password"`
	LastStatus    string     `json:"last_status"`
	LastError     *string    `json:"last_error,omitempty"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type ConnectionTestResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	LatencyMS int64     `json:"latency_ms"`
	CheckedAt time.Time `json:"checked_at"`
}
