package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"ai2sql/internal/api/middleware"
	"ai2sql/internal/dto"
	"ai2sql/internal/service"
	"ai2sql/pkg/constants"
	"ai2sql/pkg/responses"
	"ai2sql/pkg/utils"
)

// maxImportSize bounds uploaded example files
const maxImportSize = 10 << 20

type SQLExampleHandler struct {
	exampleService service.SQLExampleService
}

func NewSQLExampleHandler(exampleService service.SQLExampleService) *SQLExampleHandler {
	return &SQLExampleHandler{
		exampleService: exampleService,
	}
}

// List
// @Summary List SQL examples
// @Tags SQLExample
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param page query int false "page"
// @Param page_size query int false "page size"
// @Param keyword query string false "question or sql keyword"
// @Success 200 {object} responses.PageResponse{data=[]dto.SQLExampleResponse}
// @Router /api/v1/projects/{id}/examples [get]
func (h *SQLExampleHandler) List(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var query dto.SQLExampleListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	examples, total, err := h.exampleService.List(middleware.GetUserID(c), param.ID, &query)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.PageSuccess(c, examples, total, query.GetPage(), query.GetPageSize())
}

// Get
// @Summary SQL example detail
// @Tags SQLExample
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param example_id path int true "example id"
// @Success 200 {object} responses.Response{data=dto.SQLExampleResponse}
// @Router /api/v1/projects/{id}/examples/{example_id} [get]
func (h *SQLExampleHandler) Get(c *gin.Context) {
	var param dto.ExampleParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	example, err := h.exampleService.Get(middleware.GetUserID(c), param.ID, param.ExampleID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, example)
}

// Create
// @Summary Create a SQL example
// @Tags SQLExample
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param request body dto.SQLExampleRequest true "example"
// @Success 200 {object} responses.Response{data=dto.SQLExampleResponse}
// @Router /api/v1/projects/{id}/examples [post]
func (h *SQLExampleHandler) Create(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var req dto.SQLExampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	example, err := h.exampleService.Create(c.Request.Context(), middleware.GetUserID(c), param.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, example)
}

// Update
// @Summary Update a SQL example
// @Tags SQLExample
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param example_id path int true "example id"
// @Param request body dto.SQLExampleRequest true "example"
// @Success 200 {object} responses.Response{data=dto.SQLExampleResponse}
// @Router /api/v1/projects/{id}/examples/{example_id} [put]
func (h *SQLExampleHandler) Update(c *gin.Context) {
	var param dto.ExampleParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var req dto.SQLExampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	example, err := h.exampleService.Update(c.Request.Context(), middleware.GetUserID(c), param.ID, param.ExampleID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, example)
}

// Delete
// @Summary Delete a SQL example
// @Tags SQLExample
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param example_id path int true "example id"
// @Success 200 {object} responses.Response
// @Router /api/v1/projects/{id}/examples/{example_id} [delete]
func (h *SQLExampleHandler) Delete(c *gin.Context) {
	var param dto.ExampleParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	if err := h.exampleService.Delete(middleware.GetUserID(c), param.ID, param.ExampleID); err != nil {
		responses.Error(c, err)
		return
	}

	responses.SuccessWithMessage(c, "deleted", nil)
}

// Search ranks examples by similarity to q
// @Summary Search SQL examples
// @Tags SQLExample
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param q query string true "question"
// @Success 200 {object} responses.Response{data=[]dto.ScoredExampleResponse}
// @Router /api/v1/projects/{id}/examples/search [get]
func (h *SQLExampleHandler) Search(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var query dto.SQLExampleSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	results, err := h.exampleService.Search(c.Request.Context(), middleware.GetUserID(c), param.ID, query.Query)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, results)
}

// Export downloads every example of the project as csv or yaml
// @Summary Export SQL examples
// @Tags SQLExample
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "project id"
// @Param format query string false "csv (default) or yaml"
// @Success 200 {file} file
// @Router /api/v1/projects/{id}/examples/export [get]
func (h *SQLExampleHandler) Export(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var query dto.SQLExampleExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	format := service.ExampleFormat(query.Format)

	// buffered so a failure still produces a JSON envelope
	var buf bytes.Buffer
	if err := h.exampleService.Export(middleware.GetUserID(c), param.ID, format, &buf); err != nil {
		responses.Error(c, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == constants.FormatYAML {
		contentType = "application/x-yaml; charset=utf-8"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="sql_examples_%d.%s"`, param.ID, format))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Import loads examples from an uploaded csv or yaml file
// @Summary Import SQL examples
// @Tags SQLExample
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param file formData file true "csv or yaml file"
// @Param format query string false "csv or yaml, taken from the file extension when empty"
// @Success 200 {object} responses.Response{data=dto.SQLExampleImportResponse}
// @Router /api/v1/projects/{id}/examples/import [post]
func (h *SQLExampleHandler) Import(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", "file is required")
		return
	}
	if fileHeader.Size > maxImportSize {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", "file is too large")
		return
	}

	format := c.Query("format")
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(fileHeader.Filename), ".")
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.Error(c, err)
		return
	}
	defer file.Close()

	result, err := h.exampleService.Import(c.Request.Context(), middleware.GetUserID(c), param.ID, format, file)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, result)
}
