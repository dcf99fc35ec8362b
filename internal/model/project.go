package model

const (
	ProjectTableName       = "projects"
	ProjectMemberTableName = "project_members"
)

// Project is a tenant workspace. NameKey is the trimmed lower-cased name and backs
// case-insensitive uniqueness on every driver.
type Project struct {
	BaseModel
	Name         string  `gorm:"size:100;not null" json:"name"`
	NameKey      string  `gorm:"size:100;not null;uniqueIndex" json:"-"`
	Description  *string `gorm:"size:500" json:"description"`
	CreatedBy    int64   `gorm:"not null;index" json:"created_by"`
	ConnectionID *int64  `json:"connection_id,omitempty"`
}

func (Project) TableName() string {
	return ProjectTableName
}

// ProjectMember grants a user a role inside one project
type ProjectMember struct {
	BaseModel
	ProjectID int64  `gorm:"not null;uniqueIndex:idx_project_user" json:"project_id"`
	UserID    int64  `gorm:"not null;uniqueIndex:idx_project_user;index" json:"user_id"`
	Role      string `gorm:"size:20;not null;default:viewer" json:"role"`
	AddedBy   *int64 `json:"added_by,omitempty"`

	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (ProjectMember) TableName() string {
	return ProjectMemberTableName
}
