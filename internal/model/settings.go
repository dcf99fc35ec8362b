package model

const AppSettingsTableName = "app_settings"

const (
	DefaultRagExamplesCount       = 3
	DefaultDebugMode              = true
	DefaultRagSimilarityThreshold = 0.40
)

// AppSettings tunes example retrieval for one user
type AppSettings struct {
	BaseModel
	UserID                 int64   `gorm:"not null;uniqueIndex" json:"user_id"`
	RagExamplesCount       int     `gorm:"not null" json:"rag_examples_count"`
	DebugMode              bool    `gorm:"not null" json:"debug_mode"`
	RagSimilarityThreshold float64 `gorm:"not null" json:"rag_similarity_threshold"`
}

func (AppSettings) TableName() string {
	return AppSettingsTableName
}

// DefaultAppSettings is what a user without stored settings gets
func DefaultAppSettings(userID int64) *AppSettings {
	return &AppSettings{
		UserID:                 userID,
		RagExamplesCount:       DefaultRagExamplesCount,
		DebugMode:              DefaultDebugMode,
		RagSimilarityThreshold: DefaultRagSimilarityThreshold,
	}
}
