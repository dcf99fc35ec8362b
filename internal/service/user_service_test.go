package service

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai2sql/internal/dto"
	"ai2sql/internal/pkg/auth"
	"ai2sql/pkg/constants"
	pkgErrors "ai2sql/pkg/errors"
)

func TestUserAdministration(t *testing.T) {
	env := newTestEnv(t)
	globalAdmin := env.user(t, "boss@corp.io", auth.GlobalRoleAdmin)
	dev := env.user(t, "dev@corp.io", auth.GlobalRoleUser)

	_, _, err := env.svc.User.List(globalAdmin.ID, &dto.UserListQuery{})
	assert.ErrorIs(t, err, pkgErrors.ErrSuperuserRequired)

	users, total, err := env.svc.User.List(env.root.ID, &dto.UserListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, users, 3)

	found, total, err := env.svc.User.Search(globalAdmin.ID, &dto.UserListQuery{PageQuery: dto.PageQuery{Keyword: "dev"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, dev.ID, found[0].ID)

	_, _, err = env.svc.User.Search(dev.ID, &dto.UserListQuery{})
	assert.ErrorIs(t, err, pkgErrors.ErrForbidden)

	promoted, err := env.svc.User.SetRole(env.root.ID, dev.ID, &dto.UpdateUserRoleRequest{Role: "superuser"})
	require.NoError(t, err)
	assert.True(t, promoted.IsSuperuser)
	_, err = env.svc.Project.Create(dev.ID, &dto.CreateProjectRequest{Name: "Dev project"})
	assert.NoError(t, err)

	_, err = env.svc.User.SetRole(env.root.ID, dev.ID, &dto.UpdateUserRoleRequest{Role: "root"})
	assert.Equal(t, pkgErrors.CodeValidationError, pkgErrors.CodeOf(err))

	_, err = env.svc.User.SetStatus(env.root.ID, env.root.ID, &dto.UpdateUserStatusRequest{Status: lo.ToPtr(constants.StatusDisabled)})
	assert.Equal(t, pkgErrors.CodeBadRequest, pkgErrors.CodeOf(err))

	disabled, err := env.svc.User.SetStatus(env.root.ID, globalAdmin.ID, &dto.UpdateUserStatusRequest{Status: lo.ToPtr(constants.StatusDisabled)})
	require.NoError(t, err)
	assert.Equal(t, constants.StatusDisabled, disabled.Status)

	_, err = env.svc.Authorization.Subject(globalAdmin.ID)
	assert.ErrorIs(t, err, pkgErrors.ErrUserDisabled)

	enabled, err := env.svc.User.SetStatus(env.root.ID, globalAdmin.ID, &dto.UpdateUserStatusRequest{Status: lo.ToPtr(constants.StatusEnabled)})
	require.NoError(t, err)
	assert.Equal(t, constants.StatusEnabled, enabled.Status)
}

func TestUserMembershipsAndProfile(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Analytics")
	dev := env.member(t, p.ID, "dev@corp.io", auth.ProjectRoleEditor)
	other := env.user(t, "other@corp.io", auth.GlobalRoleUser)

	own, err := env.svc.User.Memberships(dev.ID, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, []*dto.UserMembershipResponse{{ProjectID: p.ID, ProjectName: "Analytics", Role: "editor"}}, own)

	_, err = env.svc.User.Memberships(other.ID, dev.ID)
	assert.ErrorIs(t, err, pkgErrors.ErrSuperuserRequired)

	viaRoot, err := env.svc.User.Memberships(env.root.ID, dev.ID)
	require.NoError(t, err)
	assert.Len(t, viaRoot, 1)

	profile, err := env.svc.User.UpdateProfile(dev.ID, &dto.UpdateProfileRequest{Name: " Dev One ", Avatar: lo.ToPtr(" https://img/1.png ")})
	require.NoError(t, err)
	assert.Equal(t, "Dev One", profile.Name)
	require.NotNil(t, profile.Avatar)
	assert.Equal(t, "https://img/1.png", *profile.Avatar)

	profile, err = env.svc.User.UpdateProfile(dev.ID, &dto.UpdateProfileRequest{Name: "Dev One", Avatar: lo.ToPtr("")})
	require.NoError(t, err)
	assert.Nil(t, profile.Avatar)

	_, err = env.svc.User.UpdateProfile(dev.ID, &dto.UpdateProfileRequest{Name: "  "})
	assert.Equal(t, pkgErrors.CodeValidationError, pkgErrors.CodeOf(err))
}

func TestUserSearchMatchesWildcardsLiterally(t *testing.T) {
	env := newTestEnv(t)
	underscored := env.user(t, "a_b@corp.io", auth.GlobalRoleUser)
	env.user(t, "axb@corp.io", auth.GlobalRoleUser)

	found, total, err := env.svc.User.Search(env.root.ID, &dto.UserListQuery{PageQuery: dto.PageQuery{Keyword: "a_b"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, underscored.ID, found[0].ID)

	_, total, err = env.svc.User.Search(env.root.ID, &dto.UserListQuery{PageQuery: dto.PageQuery{Keyword: "%"}})
	require.NoError(t, err)
	assert.Zero(t, total)
}
