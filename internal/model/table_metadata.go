package model

import (
	"time"

	"gorm.io/datatypes"
)

const TableMetadataTableName = "table_metadata"

type ColumnMetadata struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Nullable     bool   `json:"nullable"`
	IsPrimaryKey bool   `json:"is_primary_key"`
	IsForeignKey bool   `json:"is_foreign_key"`
	References   string `json:"references,omitempty"` // table.column
	Description  string `json:"description,omitempty"`
}

// TableMetadata describes one table of the project's target database
type TableMetadata struct {
	BaseModel
	ProjectID   int64                               `gorm:"not null;index" json:"project_id"`
	SchemaName  string                              `gorm:"size:100" json:"schema_name"`
	Name        string                              `gorm:"column:table_name;size:191;not null" json:"table_name"`
	Description *string                             `gorm:"type:text" json:"description,omitempty"`
	Columns     datatypes.JSONSlice[ColumnMetadata] `json:"columns"`
	ExtractedAt time.Time                           `json:"extracted_at"`
}

func (TableMetadata) TableName() string {
	return TableMetadataTableName
}

// QualifiedName returns schema.table, or just the table without a schema
func (t *TableMetadata) QualifiedName() string {
	if t.SchemaName == "" {
		return t.Name
	}
	return t.SchemaName + "." + t.Name
}
