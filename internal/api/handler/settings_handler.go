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

type SettingsHandler struct {
	settingsService service.SettingsService
}

func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

// Get
// @Summary Current user's retrieval settings
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.Response{data=dto.AppSettingsResponse}
// @Router /api/v1/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settingsService.Get(middleware.GetUserID(c))
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, settings)
}

// Update
// @Summary Update retrieval settings
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateAppSettingsRequest true "settings"
// @Success 200 {object} responses.Response{data=dto.AppSettingsResponse}
// @Router /api/v1/settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateAppSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	settings, err := h.settingsService.Update(middleware.GetUserID(c), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, settings)
}
