package model

import "gorm.io/datatypes"

const SQLExampleTableName = "sql_examples"

// SQLExample pairs a natural-language question with its SQL. Embedding is filled
// when an embedder is configured.
type SQLExample struct {
	BaseModel
	ProjectID            int64                        `gorm:"not null;index" json:"project_id"`
	UserID               int64                        `gorm:"not null;index" json:"user_id"`
	NaturalLanguageQuery string                       `gorm:"type:text;not null" json:"natural_language_query"`
	SQLQuery             string                       `gorm:"column:sql_query;type:text;not null" json:"sql_query"`
	Embedding            datatypes.JSONSlice[float32] `json:"-"`
}

func (SQLExample) TableName() string {
	return SQLExampleTableName
}
