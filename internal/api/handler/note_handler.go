package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ai2sql/internal/api/middleware"
	"ai2sql/internal/dto"
	"ai2sql/internal/service"
	"ai2sql/pkg/responses"
	"ai2sql/pkg/utils"
)

type NoteHandler struct {
	noteService service.NoteService
}

func NewNoteHandler(noteService service.NoteService) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
	}
}

// List returns the caller's notes in a project
// @Summary List notes
// @Tags Note
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Success 200 {object} responses.Response{data=[]dto.NoteResponse}
// @Router /api/v1/projects/{id}/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	notes, err := h.noteService.List(middleware.GetUserID(c), param.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, notes)
}

// Get
// @Summary Note detail
// @Tags Note
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param note_id path int true "note id"
// @Success 200 {object} responses.Response{data=dto.NoteResponse}
// @Router /api/v1/projects/{id}/notes/{note_id} [get]
func (h *NoteHandler) Get(c *gin.Context) {
	var param dto.NoteParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	note, err := h.noteService.Get(middleware.GetUserID(c), param.ID, param.NoteID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, note)
}

// Create
// @Summary Create a note
// @Tags Note
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param request body dto.NoteRequest true "note"
// @Success 200 {object} responses.Response{data=dto.NoteResponse}
// @Router /api/v1/projects/{id}/notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var req dto.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	note, err := h.noteService.Create(middleware.GetUserID(c), param.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, note)
}

// Update
// @Summary Update a note
// @Tags Note
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param note_id path int true "note id"
// @Param request body dto.NoteRequest true "note"
// @Success 200 {object} responses.Response{data=dto.NoteResponse}
// @Router /api/v1/projects/{id}/notes/{note_id} [put]
func (h *NoteHandler) Update(c *gin.Context) {
	var param dto.NoteParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var req dto.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	note, err := h.noteService.Update(middleware.GetUserID(c), param.ID, param.NoteID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, note)
}

// Delete
// @Summary Delete a note
// @Tags Note
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param note_id path int true "note id"
// @Success 200 {object} responses.Response
// @Router /api/v1/projects/{id}/notes/{note_id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	var param dto.NoteParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	if err := h.noteService.Delete(middleware.GetUserID(c), param.ID, param.NoteID); err != nil {
		responses.Error(c, err)
		return
	}

	responses.SuccessWithMessage(c, "deleted", nil)
}
