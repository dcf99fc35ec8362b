package model

const (
	ChatTableName    = "chats"
	MessageTableName = "messages"
)

type Chat struct {
	BaseModel
	ProjectID int64  `gorm:"not null;index:idx_chat_project_user" json:"project_id"`
	UserID    int64  `gorm:"not null;index:idx_chat_project_user" json:"user_id"`
	Name      string `gorm:"size:100;not null" json:"name"`

	Messages []Message `gorm:"foreignKey:ChatID" json:"messages,omitempty"`
}

func (Chat) TableName() string {
	return ChatTableName
}

// Message is one turn of a chat; assistant messages may carry generated SQL
type Message struct {
	BaseModel
	ChatID   int64   `gorm:"not null;index" json:"chat_id"`
	Role     string  `gorm:"size:20;not null" json:"role"`
	Content  string  `gorm:"type:text;not null" json:"content"`
	SQLQuery *string `gorm:"column:sql_query;type:text" json:"sql_query,omitempty"`
}

func (Message) TableName() string {
	return MessageTableName
}
