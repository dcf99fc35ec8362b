package model

import "time"

const UserTableName = "users"

// User is a local or LDAP provisioned account. Email is stored lower-cased.
type User struct {
	BaseStatus
	AuthProvider  string     `gorm:"size:20;not null;default:local" json:"auth_provider"`
	Email         string     `gorm:"size:191;not null;uniqueIndex" json:"email"`
	Name          string     `gorm:"size:100;not null" json:"name"`
	Password      string     `gorm:"size:255" json:"-"` // empty for LDAP users
	Avatar        *string    `gorm:"size:255" json:"avatar,omitempty"`
	Role          string     `gorm:"size:20;not null;default:user;index" json:"role"`
	LastProjectID *int64     `gorm:"index" json:"last_project_id,omitempty"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
}

func (User) TableName() string {
	return UserTableName
}
