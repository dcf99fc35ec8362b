package service

import (
	"errors"

	"ai2sql/internal/model"
	"ai2sql/internal/pkg/auth"
	"ai2sql/internal/repository"
	"ai2sql/pkg/constants"
	pkgErrors "ai2sql/pkg/errors"
)

// AuthorizationService is the single place where project access is decided.
// The caller is re-read on every check so role changes and disabling apply immediately.
type AuthorizationService interface {
	// Subject loads an enabled user as an access subject
	Subject(userID int64) (auth.Subject, error)
	IsSuperuser(subject auth.Subject) bool
	RequireSuperuser(userID int64) (auth.Subject, error)
	// RequireUserSearch admits superusers and global admins
	RequireUserSearch(userID int64) (auth.Subject, error)
	// RequireProject checks that the project exists, the caller can see it and holds perm
	RequireProject(userID, projectID int64, perm auth.Permission) (*ProjectAccess, error)
	// Scope lists the projects visible to the caller
	Scope(userID int64) (*ProjectScope, error)
}

// ProjectAccess is a successful project check
type ProjectAccess struct {
	Subject auth.Subject
	Project *model.Project
	Access  auth.Access
}

// ProjectScope is All for superusers, otherwise the caller's memberships
type ProjectScope struct {
	Subject auth.Subject
	All     bool
	Roles   map[int64]auth.ProjectRole
}

// RoleIn returns the caller's role in projectID, admin for superusers
func (s *ProjectScope) RoleIn(projectID int64) (auth.ProjectRole, bool) {
	if s.All {
		return auth.ProjectRoleAdmin, true
	}
	role, ok := s.Roles[projectID]
	return role, ok
}

type authorizationService struct {
	resolver    *auth.Resolver
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	memberRepo  repository.ProjectMemberRepository
}

func NewAuthorizationService(
	resolver *auth.Resolver,
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
	memberRepo repository.ProjectMemberRepository,
) AuthorizationService {
	return &authorizationService{
		resolver:    resolver,
		userRepo:    userRepo,
		projectRepo: projectRepo,
		memberRepo:  memberRepo,
	}
}

func (s *authorizationService) Subject(userID int64) (auth.Subject, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return auth.Subject{}, pkgErrors.ErrUnauthorized
		}
		return auth.Subject{}, err
	}
	if user.Status != constants.StatusEnabled {
		return auth.Subject{}, pkgErrors.ErrUserDisabled
	}
	return toSubject(user), nil
}

func (s *authorizationService) IsSuperuser(subject auth.Subject) bool {
	return s.resolver.IsSuperuser(subject)
}

func (s *authorizationService) RequireSuperuser(userID int64) (auth.Subject, error) {
	subject, err := s.Subject(userID)
	if err != nil {
		return auth.Subject{}, err
	}
	if !s.resolver.CanManageUsers(subject) {
		return auth.Subject{}, pkgErrors.ErrSuperuserRequired
	}
	return subject, nil
}

func (s *authorizationService) RequireUserSearch(userID int64) (auth.Subject, error) {
	subject, err := s.Subject(userID)
	if err != nil {
		return auth.Subject{}, err
	}
	if !s.resolver.CanSearchUsers(subject) {
		return auth.Subject{}, pkgErrors.ErrForbidden
	}
	return subject, nil
}

func (s *authorizationService) RequireProject(userID, projectID int64, perm auth.Permission) (*ProjectAccess, error) {
	subject, err := s.Subject(userID)
	if err != nil {
		return nil, err
	}

	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.New(pkgErrors.CodeNotFound, "project not found")
		}
		return nil, err
	}

	var memberships []auth.Membership
	if !s.resolver.IsSuperuser(subject) {
		member, err := s.memberRepo.Find(projectID, userID)
		if err != nil && !errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, err
		}
		if member != nil {
			memberships = append(memberships, toMembership(member))
		}
	}

	access := s.resolver.Resolve(subject, projectID, memberships)
	if !access.Granted {
		return nil, pkgErrors.ErrProjectAccessDenied
	}
	if !access.Allows(perm) {
		return nil, pkgErrors.ErrForbidden
	}

	return &ProjectAccess{Subject: subject, Project: project, Access: access}, nil
}

func (s *authorizationService) Scope(userID int64) (*ProjectScope, error) {
	subject, err := s.Subject(userID)
	if err != nil {
		return nil, err
	}
	if s.resolver.IsSuperuser(subject) {
		return &ProjectScope{Subject: subject, All: true}, nil
	}

	members, err := s.memberRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	roles := make(map[int64]auth.ProjectRole, len(members))
	for _, m := range members {
		roles[m.ProjectID] = auth.ProjectRole(m.Role)
	}
	return &ProjectScope{Subject: subject, Roles: roles}, nil
}

func toSubject(user *model.User) auth.Subject {
	return auth.Subject{
		ID:    user.ID,
		Email: user.Email,
		Role:  auth.GlobalRole(user.Role),
	}
}

func toMembership(member *model.ProjectMember) auth.Membership {
	return auth.Membership{
		ProjectID: member.ProjectID,
		UserID:    member.UserID,
		Role:      auth.ProjectRole(member.Role),
	}
}
