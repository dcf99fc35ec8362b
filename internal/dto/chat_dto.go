package dto

import "time"

type CreateChatRequest struct {
	Name string `json:"name" binding:"omitempty,max=100"`
}

type RenameChatRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type ChatListQuery struct {
	Scope string `form:"scope" binding:"omitempty,oneof=mine all"`
}

// ChatParam binds /projects/:id/chats/:chat_id
type ChatParam struct {
	ID     int64 `uri:"id" binding:"required,min=1"`
	ChatID int64 `uri:"chat_id" binding:"required,min=1"`
}

type ChatResponse struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChatDetailResponse struct {
	ChatResponse
	Messages []*MessageResponse `json:"messages"`
}

type MessageResponse struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	SQLQuery  *string   `json:"sql_query,omitempty"`
	CreatedAt time.Time `json:"timestamp"`
}

type SendMessageRequest struct {
	Content string  `json:"content" binding:"required,max=10000"`
	NoteIDs []int64 `json:"note_ids"` // notes of the caller to pass as context
}

type RegenerateRequest struct {
	NoteIDs []int64 `json:"note_ids"`
}

type SendMessageResponse struct {
	UserMessage      *MessageResponse `json:"user_message,omitempty"`
	AssistantMessage *MessageResponse `json:"assistant_message"`
	Debug            *RetrievalDebug  `json:"debug,omitempty"`
}

// RetrievalDebug is returned when the caller has debug_mode on
type RetrievalDebug struct {
	Method    string                   `json:"method"` // embedding or lexical
	Threshold float64                  `json:"threshold"`
	Limit     int                      `json:"limit"`
	Examples  []*ScoredExampleResponse `json:"examples"`
	Notes     int                      `json:"notes"`
	Tables    int                      `json:"tables"`
	History   int                      `json:"history"`
	Generator string                   `json:"generator"`
}
