package dto

type AppSettingsResponse struct {
	RagExamplesCount       int     `json:"rag_examples_count"`
	DebugMode              bool    `json:"debug_mode"`
	RagSimilarityThreshold float64 `json:"rag_similarity_threshold"`
}

// UpdateAppSettingsRequest is a partial update, nil fields keep their value
type UpdateAppSettingsRequest struct {
	RagExamplesCount       *int     `json:"rag_examples_count" binding:"omitempty,min=1,max=10"`
	DebugMode              *bool    `json:"debug_mode"`
	RagSimilarityThreshold *float64 `json:"rag_similarity_threshold" binding:"omitempty,min=0,max=1"`
}
