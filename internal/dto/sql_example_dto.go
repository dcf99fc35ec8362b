package dto

import "time"

type SQLExampleRequest struct {
	NaturalLanguageQuery string `json:"natural_language_query" yaml:"natural_language_query" binding:"required,max=1000"`
	SQLQuery             string `json:"sql_query" yaml:"sql_query" binding:"required,max=10000"`
}

// ExampleParam binds /projects/:id/examples/:example_id
type ExampleParam struct {
	ID        int64 `uri:"id" binding:"required,min=1"`
	ExampleID int64 `uri:"example_id" binding:"required,min=1"`
}

type SQLExampleListQuery struct {
	PageQuery
}

type SQLExampleResponse struct {
	ID                   int64     `json:"id"`
	ProjectID            int64     `json:"project_id"`
	UserID               int64     `json:"user_id"`
	NaturalLanguageQuery string    `json:"natural_language_query"`
	SQLQuery             string    `json:"sql_query"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type SQLExampleSearchQuery struct {
	Query string `form:"q" binding:"required,max=1000"`
}

type ScoredExampleResponse struct {
	SQLExampleResponse
	Score float64 `json:"score"`
}

type SQLExampleExportQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=csv yaml"` // csv when empty
}

type SQLExampleImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
