package model

const NoteTableName = "user_notes"

// Note is private to its author inside a project
type Note struct {
	BaseModel
	ProjectID int64  `gorm:"not null;index:idx_note_project_user" json:"project_id"`
	UserID    int64  `gorm:"not null;index:idx_note_project_user" json:"user_id"`
	Title     string `gorm:"size:200;not null" json:"title"`
	Content   string `gorm:"type:text;not null" json:"content"`
}

func (Note) TableName() string {
	return NoteTableName
}
