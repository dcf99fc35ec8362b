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

type ProjectHandler struct {
	projectService service.ProjectService
}

func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// Create
// @Summary Create a project (superuser)
// @Tags Project
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateProjectRequest true "project"
// @Success 200 {object} responses.Response{data=dto.ProjectResponse}
// @Router /api/v1/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	project, err := h.projectService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, project)
}

// Get
// @Summary Project detail
// @Tags Project
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Success 200 {object} responses.Response{data=dto.ProjectResponse}
// @Router /api/v1/projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	project, err := h.projectService.Get(middleware.GetUserID(c), param.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, project)
}

// List returns the projects visible to the caller
// @Summary List projects
// @Tags Project
// @Produce json
// @Security BearerAuth
// @Param page query int false "page"
// @Param page_size query int false "page size"
// @Param keyword query string false "name keyword"
// @Success 200 {object} responses.PageResponse{data=[]dto.ProjectResponse}
// @Router /api/v1/projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	var query dto.ProjectListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	projects, total, err := h.projectService.List(middleware.GetUserID(c), &query)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.PageSuccess(c, projects, total, query.GetPage(), query.GetPageSize())
}

// Update
// @Summary Update a project
// @Tags Project
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param request body dto.UpdateProjectRequest true "project"
// @Success 200 {object} responses.Response{data=dto.ProjectResponse}
// @Router /api/v1/projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	project, err := h.projectService.Update(middleware.GetUserID(c), param.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, project)
}

// Delete
// @Summary Delete a project (superuser)
// @Tags Project
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Success 200 {object} responses.Response
// @Router /api/v1/projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	if err := h.projectService.Delete(middleware.GetUserID(c), param.ID); err != nil {
		responses.Error(c, err)
		return
	}

	responses.SuccessWithMessage(c, "deleted", nil)
}

// Current
// @Summary Current project of the caller
// @Tags Project
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.Response{data=dto.CurrentProjectResponse}
// @Router /api/v1/projects/current [get]
func (h *ProjectHandler) Current(c *gin.Context) {
	current, err := h.projectService.Current(middleware.GetUserID(c))
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, current)
}

// Select remembers the project the caller works on
// @Summary Select the current project
// @Tags Project
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SelectProjectRequest true "project"
// @Success 200 {object} responses.Response{data=dto.CurrentProjectResponse}
// @Router /api/v1/projects/current [put]
func (h *ProjectHandler) Select(c *gin.Context) {
	var req dto.SelectProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	current, err := h.projectService.Select(middleware.GetUserID(c), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, current)
}
