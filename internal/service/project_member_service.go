package service

import (
	"errors"

	"github.com/samber/lo"

	"ai2sql/internal/adapter/notification"
	"ai2sql/internal/dto"
	"ai2sql/internal/model"
	"ai2sql/internal/pkg/auth"
	"ai2sql/internal/repository"
	pkgErrors "ai2sql/pkg/errors"
)

const defaultProjectMemberRole = auth.ProjectRoleViewer

type ProjectMemberService interface {
	List(userID, projectID int64) ([]*dto.MemberResponse, error)
	Add(userID, projectID int64, req *dto.AddMemberRequest) (*dto.MemberResponse, error)
	UpdateRole(userID, projectID, memberUserID int64, req *dto.UpdateMemberRoleRequest) (*dto.MemberResponse, error)
	Remove(userID, projectID, memberUserID int64) error
}

type projectMemberService struct {
	authz    AuthorizationService
	repo     repository.ProjectMemberRepository
	userRepo repository.UserRepository
	notifier notification.Notifier
}

func NewProjectMemberService(
	authz AuthorizationService,
	repo repository.ProjectMemberRepository,
	userRepo repository.UserRepository,
	notifier notification.Notifier,
) ProjectMemberService {
	return &projectMemberService{
		authz:    authz,
		repo:     repo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

func (s *projectMemberService) List(userID, projectID int64) ([]*dto.MemberResponse, error) {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermMemberView); err != nil {
		return nil, err
	}

	members, err := s.repo.ListByProject(projectID, repository.WithPreload("User"))
	if err != nil {
		return nil, err
	}

	return lo.Map(members, func(m *model.ProjectMember, _ int) *dto.MemberResponse {
		return toMemberResponse(m)
	}), nil
}

func (s *projectMemberService) Add(userID, projectID int64, req *dto.AddMemberRequest) (*dto.MemberResponse, error) {
	pa, err := s.authz.RequireProject(userID, projectID, auth.PermMemberCreate)
	if err != nil {
		return nil, err
	}

	role := auth.ProjectRole(req.Role)
	if role == "" {
		role = defaultProjectMemberRole
	}
	if !auth.ValidProjectRole(string(role)) {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "invalid project role")
	}

	user, err := s.userRepo.FindByID(req.UserID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.ErrUserNotFound
		}
		return nil, err
	}

	if _, err := s.repo.Find(projectID, req.UserID); err == nil {
		return nil, memberExists()
	} else if !errors.Is(err, pkgErrors.ErrRecordNotFound) {
		return nil, err
	}

	addedBy := pa.Subject.ID
	member := &model.ProjectMember{
		ProjectID: projectID,
		UserID:    req.UserID,
		Role:      string(role),
		AddedBy:   &addedBy,
	}
	if err := s.repo.Create(member); err != nil {
		if errors.Is(err, pkgErrors.ErrRecordExists) {
			return nil, memberExists()
		}
		return nil, err
	}
	member.User = user

	notifyProjectEvent(s.notifier, &notification.ProjectEvent{
		Type:        notification.NotifyMemberAdded,
		ProjectID:   projectID,
		ProjectName: pa.Project.Name,
		Actor:       pa.Subject.Email,
		Subject:     user.Email,
		Role:        member.Role,
	})

	return toMemberResponse(member), nil
}

func (s *projectMemberService) UpdateRole(userID, projectID, memberUserID int64, req *dto.UpdateMemberRoleRequest) (*dto.MemberResponse, error) {
	pa, err := s.authz.RequireProject(userID, projectID, auth.PermMemberUpdate)
	if err != nil {
		return nil, err
	}
	if !auth.ValidProjectRole(req.Role) {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "invalid project role")
	}

	if err := s.repo.UpdateRole(projectID, memberUserID, req.Role); err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, memberNotFound()
		}
		return nil, err
	}

	member, err := s.repo.Find(projectID, memberUserID)
	if err != nil {
		return nil, err
	}
	if user, err := s.userRepo.FindByID(memberUserID); err == nil {
		member.User = user
	}

	notifyProjectEvent(s.notifier, &notification.ProjectEvent{
		Type:        notification.NotifyMemberRoleChanged,
		ProjectID:   projectID,
		ProjectName: pa.Project.Name,
		Actor:       pa.Subject.Email,
		Subject:     memberEmail(member),
		Role:        member.Role,
	})

	return toMemberResponse(member), nil
}

func (s *projectMemberService) Remove(userID, projectID, memberUserID int64) error {
	pa, err := s.authz.RequireProject(userID, projectID, auth.PermMemberDelete)
	if err != nil {
		return err
	}

	var email string
	if user, err := s.userRepo.FindByID(memberUserID); err == nil {
		email = user.Email
	}

	if err := s.repo.Delete(projectID, memberUserID); err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return memberNotFound()
		}
		return err
	}

	notifyProjectEvent(s.notifier, &notification.ProjectEvent{
		Type:        notification.NotifyMemberRemoved,
		ProjectID:   projectID,
		ProjectName: pa.Project.Name,
		Actor:       pa.Subject.Email,
		Subject:     email,
	})

	return nil
}

func memberExists() error {
	return pkgErrors.New(pkgErrors.CodeConflict, "user is already a member of this project")
}

func memberNotFound() error {
	return pkgErrors.New(pkgErrors.CodeNotFound, "project member not found")
}

func memberEmail(member *model.ProjectMember) string {
	if member.User == nil {
		return ""
	}
	return member.User.Email
}

func toMemberResponse(member *model.ProjectMember) *dto.MemberResponse {
	resp := &dto.MemberResponse{
		ID:        member.ID,
		ProjectID: member.ProjectID,
		UserID:    member.UserID,
		Role:      member.Role,
		AddedBy:   member.AddedBy,
		CreatedAt: member.CreatedAt,
	}
	if member.User != nil {
		resp.Email = member.User.Email
		resp.Name = member.User.Name
	}
	return resp
}
