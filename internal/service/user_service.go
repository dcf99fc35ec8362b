package service

import (
	"strings"

	"github.com/samber/lo"

	"ai2sql/internal/dto"
	"ai2sql/internal/model"
	"ai2sql/internal/pkg/auth"
	"ai2sql/internal/repository"
	"ai2sql/pkg/constants"
	pkgErrors "ai2sql/pkg/errors"
)

type UserService interface {
	// List is the superuser user admin listing
	List(callerID int64, query *dto.UserListQuery) ([]*dto.UserResponse, int64, error)
	// Search backs the member picker
	Search(callerID int64, query *dto.UserListQuery) ([]*dto.UserResponse, int64, error)
	SetRole(callerID, userID int64, req *dto.UpdateUserRoleRequest) (*dto.UserResponse, error)
	SetStatus(callerID, userID int64, req *dto.UpdateUserStatusRequest) (*dto.UserResponse, error)
	Memberships(callerID, userID int64) ([]*dto.UserMembershipResponse, error)
	UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
}

type userService struct {
	authz      AuthorizationService
	resolver   *auth.Resolver
	userRepo   repository.UserRepository
	memberRepo repository.ProjectMemberRepository
}

func NewUserService(
	authz AuthorizationService,
	resolver *auth.Resolver,
	userRepo repository.UserRepository,
	memberRepo repository.ProjectMemberRepository,
) UserService {
	return &userService{
		authz:      authz,
		resolver:   resolver,
		userRepo:   userRepo,
		memberRepo: memberRepo,
	}
}

func (s *userService) List(callerID int64, query *dto.UserListQuery) ([]*dto.UserResponse, int64, error) {
	if _, err := s.authz.RequireSuperuser(callerID); err != nil {
		return nil, 0, err
	}
	return s.list(query)
}

func (s *userService) Search(callerID int64, query *dto.UserListQuery) ([]*dto.UserResponse, int64, error) {
	if _, err := s.authz.RequireUserSearch(callerID); err != nil {
		return nil, 0, err
	}
	return s.list(query)
}

func (s *userService) list(query *dto.UserListQuery) ([]*dto.UserResponse, int64, error) {
	users, total, err := s.userRepo.List(query.GetOffset(), query.GetPageSize(), strings.TrimSpace(query.Keyword))
	if err != nil {
		return nil, 0, err
	}

	return lo.Map(users, func(u *model.User, _ int) *dto.UserResponse {
		return toUserResponse(u, s.resolver)
	}), total, nil
}

func (s *userService) SetRole(callerID, userID int64, req *dto.UpdateUserRoleRequest) (*dto.UserResponse, error) {
	if _, err := s.authz.RequireSuperuser(callerID); err != nil {
		return nil, err
	}
	if !auth.ValidGlobalRole(req.Role) {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "invalid role")
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateRole(user.ID, req.Role); err != nil {
		return nil, err
	}
	user.Role = req.Role

	return toUserResponse(user, s.resolver), nil
}

func (s *userService) SetStatus(callerID, userID int64, req *dto.UpdateUserStatusRequest) (*dto.UserResponse, error) {
	if _, err := s.authz.RequireSuperuser(callerID); err != nil {
		return nil, err
	}
	if req.Status == nil {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "status is required")
	}
	if callerID == userID && *req.Status != constants.StatusEnabled {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "cannot disable yourself")
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	user.Status = *req.Status
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return toUserResponse(user, s.resolver), nil
}

func (s *userService) Memberships(callerID, userID int64) ([]*dto.UserMembershipResponse, error) {
	if callerID != userID {
		if _, err := s.authz.RequireSuperuser(callerID); err != nil {
			return nil, err
		}
	}
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, err
	}

	members, err := s.memberRepo.ListByUser(userID, repository.WithPreload("Project"))
	if err != nil {
		return nil, err
	}

	return lo.Map(members, func(m *model.ProjectMember, _ int) *dto.UserMembershipResponse {
		resp := &dto.UserMembershipResponse{
			ProjectID: m.ProjectID,
			Role:      m.Role,
		}
		if m.Project != nil {
			resp.ProjectName = m.Project.Name
		}
		return resp
	}), nil
}

func (s *userService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "name is required")
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	user.Name = name
	if req.Avatar != nil {
		avatar := strings.TrimSpace(*req.Avatar)
		user.Avatar = lo.Ternary(avatar == "", nil, &avatar)
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return toUserResponse(user, s.resolver), nil
}

func toUserResponse(user *model.User, resolver *auth.Resolver) *dto.UserResponse {
	return &dto.UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Avatar:        user.Avatar,
		Role:          user.Role,
		AuthProvider:  user.AuthProvider,
		Status:        user.Status,
		IsSuperuser:   resolver.IsSuperuser(toSubject(user)),
		LastProjectID: user.LastProjectID,
		LastLoginAt:   user.LastLoginAt,
		CreatedAt:     user.CreatedAt,
	}
}
