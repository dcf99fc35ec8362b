package dto

import (
	"time"

	"ai2sql/internal/model"
)

// TableParam binds /projects/:id/metadata/:table_id
type TableParam struct {
	ID      int64 `uri:"id" binding:"required,min=1"`
	TableID int64 `uri:"table_id" binding:"required,min=1"`
}

type TableMetadataResponse struct {
	ID          int64                  `json:"id"`
	ProjectID   int64                  `json:"project_id"`
	SchemaName  string                 `json:"schema_name"`
	TableName   string                 `json:"table_name"`
	Description *string                `json:"description,omitempty"`
	Columns     []model.ColumnMetadata `json:"columns"`
	ExtractedAt time.Time              `json:"extracted_at"`
}

// UpdateTableMetadataRequest sets the table description and, by column name, column descriptions
type UpdateTableMetadataRequest struct {
	Description *string           `json:"description" binding:"omitempty,max=2000"`
	Columns     map[string]string `json:"columns"`
}

type ExtractMetadataResponse struct {
	Tables  int `json:"tables"`
	Columns int `json:"columns"`
}
