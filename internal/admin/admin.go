// Package admin holds out-of-band account operations for the operator CLI.
// They bypass project authorization and act as the system.
package admin

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"ai2sql/internal/model"
	"ai2sql/internal/pkg/auth"
	"ai2sql/internal/pkg/crypto"
	"ai2sql/internal/repository"
	"ai2sql/pkg/constants"
	pkgErrors "ai2sql/pkg/errors"
)

const minPasswordLen = 6

type Admin struct {
	users    repository.UserRepository
	projects repository.ProjectRepository
	members  repository.ProjectMemberRepository
}

func New(db *gorm.DB) *Admin {
	return &Admin{
		users:    repository.NewUserRepository(db),
		projects: repository.NewProjectRepository(db),
		members:  repository.NewProjectMemberRepository(db),
	}
}

// CreateUser adds a local account with the given global role
func (a *Admin) CreateUser(email, name, password, role string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "email is required")
	}
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	if role == "" {
		role = string(auth.GlobalRoleUser)
	}
	if !auth.ValidGlobalRole(role) {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "unknown role "+role)
	}
	if len(password) < minPasswordLen {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "password must be at least 6 characters")
	}

	if _, err := a.users.FindByEmail(email); err == nil {
		return nil, pkgErrors.New(pkgErrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, pkgErrors.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "hash password failed", err)
	}

	user := &model.User{
		AuthProvider: constants.AuthTypeLocal,
		Email:        email,
		Name:         name,
		Password:     hash,
		Role:         role,
	}
	user.Status = constants.StatusEnabled
	if err := a.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetRole changes the global role of the account with email
func (a *Admin) SetRole(email, role string) (*model.User, error) {
	if !auth.ValidGlobalRole(role) {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "unknown role "+role)
	}
	user, err := a.findUser(email)
	if err != nil {
		return nil, err
	}
	if err := a.users.UpdateRole(user.ID, role); err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}

// AddMember grants email a role in projectID, or changes the role of an existing membership
func (a *Admin) AddMember(projectID int64, email, role string) (*model.ProjectMember, error) {
	if role == "" {
		role = string(auth.ProjectRoleViewer)
	}
	if !auth.ValidProjectRole(role) {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "unknown project role "+role)
	}
	if _, err := a.projects.FindByID(projectID); err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.New(pkgErrors.CodeNotFound, "project not found")
		}
		return nil, err
	}
	user, err := a.findUser(email)
	if err != nil {
		return nil, err
	}

	existing, err := a.members.Find(projectID, user.ID)
	switch {
	case err == nil:
		if err := a.members.UpdateRole(projectID, user.ID, role); err != nil {
			return nil, err
		}
		existing.Role = role
		return existing, nil
	case !errors.Is(err, pkgErrors.ErrRecordNotFound):
		return nil, err
	}

	member := &model.ProjectMember{
		ProjectID: projectID,
		UserID:    user.ID,
		Role:      role,
	}
	if err := a.members.Create(member); err != nil {
		return nil, err
	}
	return member, nil
}

func (a *Admin) findUser(email string) (*model.User, error) {
	user, err := a.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
