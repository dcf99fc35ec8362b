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

type ConnectionHandler struct {
	connectionService service.ConnectionService
}

func NewConnectionHandler(connectionService service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{
		connectionService: connectionService,
	}
}

// Get
// @Summary Database connection of a project
// @Tags Connection
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Success 200 {object} responses.Response{data=dto.ConnectionResponse}
// @Router /api/v1/projects/{id}/connection [get]
func (h *ConnectionHandler) Get(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	conn, err := h.connectionService.Get(middleware.GetUserID(c), param.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, conn)
}

// Create
// @Summary Attach a database connection
// @Tags Connection
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param request body dto.CreateConnectionRequest true "connection"
// @Success 200 {object} responses.Response{data=dto.ConnectionResponse}
// @Router /api/v1/projects/{id}/connection [post]
func (h *ConnectionHandler) Create(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var req dto.CreateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	conn, err := h.connectionService.Create(middleware.GetUserID(c), param.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, conn)
}

// Update
// @Summary Update the database connection
// @Tags Connection
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param request body dto.UpdateConnectionRequest true "connection"
// @Success 200 {object} responses.Response{data=dto.ConnectionResponse}
// @Router /api/v1/projects/{id}/connection [put]
func (h *ConnectionHandler) Update(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var req dto.UpdateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	conn, err := h.connectionService.Update(middleware.GetUserID(c), param.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, conn)
}

// Delete
// @Summary Detach the database connection
// @Tags Connection
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Success 200 {object} responses.Response
// @Router /api/v1/projects/{id}/connection [delete]
func (h *ConnectionHandler) Delete(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	if err := h.connectionService.Delete(middleware.GetUserID(c), param.ID); err != nil {
		responses.Error(c, err)
		return
	}

	responses.SuccessWithMessage(c, "deleted", nil)
}

// Test pings the target database and records the outcome
// @Summary Test the database connection
// @Tags Connection
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Success 200 {object} responses.Response{data=dto.ConnectionTestResponse}
// @Router /api/v1/projects/{id}/connection/test [post]
func (h *ConnectionHandler) Test(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	result, err := h.connectionService.Test(c.Request.Context(), middleware.GetUserID(c), param.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, result)
}
