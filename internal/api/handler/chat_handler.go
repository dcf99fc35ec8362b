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

type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// List
// @Summary List chats of a project
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param scope query string false "mine (default) or all"
// @Success 200 {object} responses.Response{data=[]dto.ChatResponse}
// @Router /api/v1/projects/{id}/chats [get]
func (h *ChatHandler) List(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var query dto.ChatListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	chats, err := h.chatService.List(middleware.GetUserID(c), param.ID, &query)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, chats)
}

// Create
// @Summary Start a chat
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param request body dto.CreateChatRequest false "chat"
// @Success 200 {object} responses.Response{data=dto.ChatResponse}
// @Router /api/v1/projects/{id}/chats [post]
func (h *ChatHandler) Create(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var req dto.CreateChatRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
			return
		}
	}

	chat, err := h.chatService.Create(middleware.GetUserID(c), param.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, chat)
}

// Get returns the chat with its messages
// @Summary Chat detail
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param chat_id path int true "chat id"
// @Success 200 {object} responses.Response{data=dto.ChatDetailResponse}
// @Router /api/v1/projects/{id}/chats/{chat_id} [get]
func (h *ChatHandler) Get(c *gin.Context) {
	var param dto.ChatParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	chat, err := h.chatService.Get(middleware.GetUserID(c), param.ID, param.ChatID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, chat)
}

// Rename
// @Summary Rename a chat
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param chat_id path int true "chat id"
// @Param request body dto.RenameChatRequest true "name"
// @Success 200 {object} responses.Response{data=dto.ChatResponse}
// @Router /api/v1/projects/{id}/chats/{chat_id} [put]
func (h *ChatHandler) Rename(c *gin.Context) {
	var param dto.ChatParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var req dto.RenameChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	chat, err := h.chatService.Rename(middleware.GetUserID(c), param.ID, param.ChatID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, chat)
}

// Delete
// @Summary Delete a chat
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param chat_id path int true "chat id"
// @Success 200 {object} responses.Response
// @Router /api/v1/projects/{id}/chats/{chat_id} [delete]
func (h *ChatHandler) Delete(c *gin.Context) {
	var param dto.ChatParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	if err := h.chatService.Delete(middleware.GetUserID(c), param.ID, param.ChatID); err != nil {
		responses.Error(c, err)
		return
	}

	responses.SuccessWithMessage(c, "deleted", nil)
}

// SendMessage asks a question and returns the generated SQL answer
// @Summary Send a message
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param chat_id path int true "chat id"
// @Param request body dto.SendMessageRequest true "message"
// @Success 200 {object} responses.Response{data=dto.SendMessageResponse}
// @Router /api/v1/projects/{id}/chats/{chat_id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var param dto.ChatParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	resp, err := h.chatService.SendMessage(c.Request.Context(), middleware.GetUserID(c), param.ID, param.ChatID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, resp)
}

// Regenerate answers the last question again
// @Summary Regenerate the last answer
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param chat_id path int true "chat id"
// @Param request body dto.RegenerateRequest false "context notes"
// @Success 200 {object} responses.Response{data=dto.SendMessageResponse}
// @Router /api/v1/projects/{id}/chats/{chat_id}/regenerate [post]
func (h *ChatHandler) Regenerate(c *gin.Context) {
	var param dto.ChatParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var req dto.RegenerateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
			return
		}
	}

	resp, err := h.chatService.Regenerate(c.Request.Context(), middleware.GetUserID(c), param.ID, param.ChatID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, resp)
}
