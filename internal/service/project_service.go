package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"ai2sql/internal/adapter/notification"
	"ai2sql/internal/dto"
	"ai2sql/internal/model"
	"ai2sql/internal/pkg/auth"
	"ai2sql/internal/pkg/logger"
	"ai2sql/internal/repository"
	"ai2sql/pkg/constants"
	pkgErrors "ai2sql/pkg/errors"
)

type ProjectService interface {
	Create(userID int64, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	Get(userID, projectID int64) (*dto.ProjectResponse, error)
	List(userID int64, query *dto.ProjectListQuery) ([]*dto.ProjectResponse, int64, error)
	Update(userID, projectID int64, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	Delete(userID, projectID int64) error
	// Current resolves the last selected project, falling back to the newest visible one
	Current(userID int64) (*dto.CurrentProjectResponse, error)
	Select(userID int64, req *dto.SelectProjectRequest) (*dto.CurrentProjectResponse, error)
}

type projectService struct {
	authz    AuthorizationService
	repo     repository.ProjectRepository
	userRepo repository.UserRepository
	notifier notification.Notifier
}

func NewProjectService(
	authz AuthorizationService,
	repo repository.ProjectRepository,
	userRepo repository.UserRepository,
	notifier notification.Notifier,
) ProjectService {
	return &projectService{
		authz:    authz,
		repo:     repo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

func (s *projectService) Create(userID int64, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	subject, err := s.authz.RequireSuperuser(userID)
	if err != nil {
		return nil, err
	}

	name, nameKey, description, err := normalizeProjectInput(req.Name, req.Description)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByNameKey(nameKey); err == nil {
		return nil, projectNameTaken(name)
	} else if !errors.Is(err, pkgErrors.ErrRecordNotFound) {
		return nil, err
	}

	project := &model.Project{
		Name:        name,
		NameKey:     nameKey,
		Description: description,
		CreatedBy:   subject.ID,
	}
	if err := s.repo.Create(project); err != nil {
		if errors.Is(err, pkgErrors.ErrRecordExists) {
			return nil, projectNameTaken(name)
		}
		return nil, err
	}

	notifyProjectEvent(s.notifier, &notification.ProjectEvent{
		Type:        notification.NotifyProjectCreated,
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Actor:       subject.Email,
	})

	return toProjectResponse(project, auth.ProjectRoleAdmin), nil
}

func (s *projectService) Get(userID, projectID int64) (*dto.ProjectResponse, error) {
	pa, err := s.authz.RequireProject(userID, projectID, auth.PermProjectView)
	if err != nil {
		return nil, err
	}
	return toProjectResponse(pa.Project, pa.Access.Role), nil
}

func (s *projectService) List(userID int64, query *dto.ProjectListQuery) ([]*dto.ProjectResponse, int64, error) {
	scope, err := s.authz.Scope(userID)
	if err != nil {
		return nil, 0, err
	}

	projects, total, err := s.repo.List(repository.ProjectFilter{
		All:     scope.All,
		IDs:     scopeProjectIDs(scope),
		Keyword: strings.TrimSpace(query.Keyword),
		Offset:  query.GetOffset(),
		Limit:   query.GetPageSize(),
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*dto.ProjectResponse, len(projects))
	for i, project := range projects {
		role, _ := scope.RoleIn(project.ID)
		responses[i] = toProjectResponse(project, role)
	}
	return responses, total, nil
}

func (s *projectService) Update(userID, projectID int64, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	pa, err := s.authz.RequireProject(userID, projectID, auth.PermProjectUpdate)
	if err != nil {
		return nil, err
	}

	name, nameKey, description, err := normalizeProjectInput(req.Name, req.Description)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByNameKey(nameKey)
	if err == nil && existing.ID != projectID {
		return nil, projectNameTaken(name)
	} else if err != nil && !errors.Is(err, pkgErrors.ErrRecordNotFound) {
		return nil, err
	}

	project := pa.Project
	project.Name = name
	project.NameKey = nameKey
	project.Description = description

	if err := s.repo.Update(project); err != nil {
		if errors.Is(err, pkgErrors.ErrRecordExists) {
			return nil, projectNameTaken(name)
		}
		return nil, err
	}

	return toProjectResponse(project, pa.Access.Role), nil
}

func (s *projectService) Delete(userID, projectID int64) error {
	subject, err := s.authz.RequireSuperuser(userID)
	if err != nil {
		return err
	}

	project, err := s.repo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return pkgErrors.New(pkgErrors.CodeNotFound, "project not found")
		}
		return err
	}

	if err := s.repo.Delete(projectID); err != nil {
		return err
	}

	logger.Info("project deleted", zap.Int64("project_id", projectID), zap.Int64("user_id", userID))

	notifyProjectEvent(s.notifier, &notification.ProjectEvent{
		Type:        notification.NotifyProjectDeleted,
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Actor:       subject.Email,
	})

	return nil
}

func (s *projectService) Current(userID int64) (*dto.CurrentProjectResponse, error) {
	scope, err := s.authz.Scope(userID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if user.LastProjectID != nil {
		if role, ok := scope.RoleIn(*user.LastProjectID); ok {
			project, err := s.repo.FindByID(*user.LastProjectID)
			if err == nil {
				return &dto.CurrentProjectResponse{Project: toProjectResponse(project, role)}, nil
			}
			if !errors.Is(err, pkgErrors.ErrRecordNotFound) {
				return nil, err
			}
		}
	}

	projects, _, err := s.repo.List(repository.ProjectFilter{
		All:   scope.All,
		IDs:   scopeProjectIDs(scope),
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return &dto.CurrentProjectResponse{}, nil
	}

	role, _ := scope.RoleIn(projects[0].ID)
	return &dto.CurrentProjectResponse{Project: toProjectResponse(projects[0], role)}, nil
}

func (s *projectService) Select(userID int64, req *dto.SelectProjectRequest) (*dto.CurrentProjectResponse, error) {
	pa, err := s.authz.RequireProject(userID, req.ProjectID, auth.PermProjectView)
	if err != nil {
		return nil, err
	}

	projectID := pa.Project.ID
	if err := s.userRepo.SetLastProject(userID, &projectID); err != nil {
		return nil, err
	}

	return &dto.CurrentProjectResponse{Project: toProjectResponse(pa.Project, pa.Access.Role)}, nil
}

// normalizeProjectInput trims and checks name and description and derives the uniqueness key
func normalizeProjectInput(rawName string, rawDescription *string) (string, string, *string, error) {
	name := strings.TrimSpace(rawName)
	if name == "" {
		return "", "", nil, pkgErrors.New(pkgErrors.CodeValidationError, "project name is required")
	}
	if n := utf8.RuneCountInString(name); n < constants.ProjectNameMinLen || n > constants.ProjectNameMaxLen {
		return "", "", nil, pkgErrors.New(pkgErrors.CodeValidationError,
			fmt.Sprintf("project name must be %d to %d characters", constants.ProjectNameMinLen, constants.ProjectNameMaxLen))
	}

	var description *string
	if rawDescription != nil {
		d := strings.TrimSpace(*rawDescription)
		if utf8.RuneCountInString(d) > constants.ProjectDescriptionMaxLen {
			return "", "", nil, pkgErrors.New(pkgErrors.CodeValidationError,
				fmt.Sprintf("project description must be at most %d characters", constants.ProjectDescriptionMaxLen))
		}
		if d != "" {
			description = &d
		}
	}

	return name, strings.ToLower(name), description, nil
}

func projectNameTaken(name string) error {
	return pkgErrors.New(pkgErrors.CodeConflict, fmt.Sprintf("project %s already exists", name))
}

func scopeProjectIDs(scope *ProjectScope) []int64 {
	if scope.All {
		return nil
	}
	return lo.Keys(scope.Roles)
}

func toProjectResponse(project *model.Project, role auth.ProjectRole) *dto.ProjectResponse {
	return &dto.ProjectResponse{
		ID:           project.ID,
		Name:         project.Name,
		Description:  project.Description,
		CreatedBy:    project.CreatedBy,
		ConnectionID: project.ConnectionID,
		Role:         string(role),
		CreatedAt:    project.CreatedAt,
		UpdatedAt:    project.UpdatedAt,
	}
}

// notifyProjectEvent never fails the caller
func notifyProjectEvent(notifier notification.Notifier, event *notification.ProjectEvent) {
	if notifier == nil {
		return
	}
	if err := notifier.SendProjectEvent(context.Background(), event); err != nil {
		logger.Warn("send project notification failed",
			zap.String("type", string(event.Type)),
			zap.Int64("project_id", event.ProjectID),
			zap.Error(err))
	}
}
