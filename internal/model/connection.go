package model

import "time"

const DatabaseConnectionTableName = "database_connections"

// DatabaseConnection is the target database of a project. The password is sealed
// with AES-GCM and never serialised.
type DatabaseConnection struct {
	BaseModel
	ProjectID         int64      `gorm:"not null;uniqueIndex" json:"project_id"`
	Name              string     `gorm:"size:100;not null" json:"name"`
	Driver            string     `gorm:"size:20;not null;default:postgres" json:"driver"`
	Host              string     `gorm:"size:255;not null" json:"host"`
	Port              int        `gorm:"not null;default:5432" json:"port"`
	Username          string     `gorm:"size:100;not null" json:"username"`
	PasswordEncrypted string     `gorm:"type:text" json:"-"`
	Database          string     `gorm:"column:database_name;size:100;not null" json:"database"`
	SSL               bool       `gorm:"column:ssl;not null;default:false" json:"ssl"`
	LastStatus        string     `gorm:"size:20;not null;default:unknown" json:"last_status"`
	LastError         *string    `gorm:"type:text" json:"last_error,omitempty"`
	LastCheckedAt     *time.Time `json:"last_checked_at,omitempty"`
}

func (DatabaseConnection) TableName() string {
	return DatabaseConnectionTableName
}
