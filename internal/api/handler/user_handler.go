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

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// List
// @Summary List users (superuser)
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param page query int false "page"
// @Param page_size query int false "page size"
// @Param keyword query string false "email or name"
// @Success 200 {object} responses.PageResponse{data=[]dto.UserResponse}
// @Router /api/v1/users [get]
func (h *UserHandler) List(c *gin.Context) {
	var query dto.UserListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	users, total, err := h.userService.List(middleware.GetUserID(c), &query)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.PageSuccess(c, users, total, query.GetPage(), query.GetPageSize())
}

// Search backs the member picker
// @Summary Search users
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param keyword query string false "email or name"
// @Param page query int false "page"
// @Param page_size query int false "page size"
// @Success 200 {object} responses.PageResponse{data=[]dto.UserResponse}
// @Router /api/v1/users/search [get]
func (h *UserHandler) Search(c *gin.Context) {
	var query dto.UserListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	users, total, err := h.userService.Search(middleware.GetUserID(c), &query)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.PageSuccess(c, users, total, query.GetPage(), query.GetPageSize())
}

// SetRole
// @Summary Change the global role of a user
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "user id"
// @Param request body dto.UpdateUserRoleRequest true "role"
// @Success 200 {object} responses.Response{data=dto.UserResponse}
// @Router /api/v1/users/{id}/role [put]
func (h *UserHandler) SetRole(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var req dto.UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	user, err := h.userService.SetRole(middleware.GetUserID(c), param.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, user)
}

// SetStatus
// @Summary Enable or disable a user
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "user id"
// @Param request body dto.UpdateUserStatusRequest true "status"
// @Success 200 {object} responses.Response{data=dto.UserResponse}
// @Router /api/v1/users/{id}/status [put]
func (h *UserHandler) SetStatus(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var req dto.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	user, err := h.userService.SetStatus(middleware.GetUserID(c), param.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, user)
}

// Memberships lists the projects a user belongs to
// @Summary Project memberships of a user
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param id path int true "user id"
// @Success 200 {object} responses.Response{data=[]dto.UserMembershipResponse}
// @Router /api/v1/users/{id}/projects [get]
func (h *UserHandler) Memberships(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	memberships, err := h.userService.Memberships(middleware.GetUserID(c), param.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, memberships)
}

// UpdateProfile
// @Summary Update own profile
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "profile"
// @Success 200 {object} responses.Response{data=dto.UserResponse}
// @Router /api/v1/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	user, err := h.userService.UpdateProfile(middleware.GetUserID(c), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, user)
}
