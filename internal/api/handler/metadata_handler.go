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

type MetadataHandler struct {
	metadataService service.MetadataService
}

func NewMetadataHandler(metadataService service.MetadataService) *MetadataHandler {
	return &MetadataHandler{
		metadataService: metadataService,
	}
}

// List
// @Summary Table metadata of a project
// @Tags Metadata
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Success 200 {object} responses.Response{data=[]dto.TableMetadataResponse}
// @Router /api/v1/projects/{id}/metadata [get]
func (h *MetadataHandler) List(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	tables, err := h.metadataService.List(middleware.GetUserID(c), param.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, tables)
}

// Extract re-reads the schema from the project's database
// @Summary Extract table metadata
// @Tags Metadata
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Success 200 {object} responses.Response{data=dto.ExtractMetadataResponse}
// @Router /api/v1/projects/{id}/metadata/extract [post]
func (h *MetadataHandler) Extract(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	result, err := h.metadataService.Extract(c.Request.Context(), middleware.GetUserID(c), param.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, result)
}

// Update
// @Summary Describe a table and its columns
// @Tags Metadata
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param table_id path int true "table id"
// @Param request body dto.UpdateTableMetadataRequest true "descriptions"
// @Success 200 {object} responses.Response{data=dto.TableMetadataResponse}
// @Router /api/v1/projects/{id}/metadata/{table_id} [put]
func (h *MetadataHandler) Update(c *gin.Context) {
	var param dto.TableParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var req dto.UpdateTableMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	table, err := h.metadataService.Update(middleware.GetUserID(c), param.ID, param.TableID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, table)
}
