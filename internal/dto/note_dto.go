package dto

import "time"

type NoteRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required,max=10000"`
}

// NoteParam binds /projects/:id/notes/:note_id
type NoteParam struct {
	ID     int64 `uri:"id" binding:"required,min=1"`
	NoteID int64 `uri:"note_id" binding:"required,min=1"`
}

type NoteResponse struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
