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

type MemberHandler struct {
	memberService service.ProjectMemberService
}

func NewMemberHandler(memberService service.ProjectMemberService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
	}
}

// List
// @Summary List project members
// @Tags Member
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Success 200 {object} responses.Response{data=[]dto.MemberResponse}
// @Router /api/v1/projects/{id}/members [get]
func (h *MemberHandler) List(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	members, err := h.memberService.List(middleware.GetUserID(c), param.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, members)
}

// Add
// @Summary Add a project member
// @Tags Member
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param request body dto.AddMemberRequest true "member"
// @Success 200 {object} responses.Response{data=dto.MemberResponse}
// @Router /api/v1/projects/{id}/members [post]
func (h *MemberHandler) Add(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	member, err := h.memberService.Add(middleware.GetUserID(c), param.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, member)
}

// UpdateRole
// @Summary Change a member's role
// @Tags Member
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param user_id path int true "user id"
// @Param request body dto.UpdateMemberRoleRequest true "role"
// @Success 200 {object} responses.Response{data=dto.MemberResponse}
// @Router /api/v1/projects/{id}/members/{user_id} [put]
func (h *MemberHandler) UpdateRole(c *gin.Context) {
	var param dto.MemberParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}
	var req dto.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	member, err := h.memberService.UpdateRole(middleware.GetUserID(c), param.ID, param.UserID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, member)
}

// Remove
// @Summary Remove a project member
// @Tags Member
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param user_id path int true "user id"
// @Success 200 {object} responses.Response
// @Router /api/v1/projects/{id}/members/{user_id} [delete]
func (h *MemberHandler) Remove(c *gin.Context) {
	var param dto.MemberParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "invalid request parameters", utils.FormatValidationError(err))
		return
	}

	if err := h.memberService.Remove(middleware.GetUserID(c), param.ID, param.UserID); err != nil {
		responses.Error(c, err)
		return
	}

	responses.SuccessWithMessage(c, "removed", nil)
}
