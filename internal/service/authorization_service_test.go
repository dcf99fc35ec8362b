package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai2sql/internal/dto"
	"ai2sql/internal/model"
	"ai2sql/internal/pkg/auth"
	"ai2sql/pkg/constants"
	pkgErrors "ai2sql/pkg/errors"
)

func TestRequireProject(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Analytics")
	viewer := env.member(t, p.ID, "viewer@corp.io", auth.ProjectRoleViewer)
	editor := env.member(t, p.ID, "editor@corp.io", auth.ProjectRoleEditor)
	outsider := env.user(t, "outsider@corp.io", auth.GlobalRoleUser)
	byEmail := env.user(t, "admin@example.com", auth.GlobalRoleUser)
	authz := env.svc.Authorization

	t.Run("member with permission", func(t *testing.T) {
		pa, err := authz.RequireProject(viewer.ID, p.ID, auth.PermExampleView)
		require.NoError(t, err)
		assert.Equal(t, p.ID, pa.Project.ID)
		assert.Equal(t, auth.ProjectRoleViewer, pa.Access.Role)
		assert.False(t, pa.Access.Superuser)
	})

	t.Run("member without permission", func(t *testing.T) {
		_, err := authz.RequireProject(viewer.ID, p.ID, auth.PermExampleCreate)
		assert.ErrorIs(t, err, pkgErrors.ErrForbidden)

		_, err = authz.RequireProject(editor.ID, p.ID, auth.PermExampleCreate)
		assert.NoError(t, err)
	})

	t.Run("non member", func(t *testing.T) {
		_, err := authz.RequireProject(outsider.ID, p.ID, auth.PermProjectView)
		assert.ErrorIs(t, err, pkgErrors.ErrProjectAccessDenied)
	})

	t.Run("superuser by email", func(t *testing.T) {
		pa, err := authz.RequireProject(byEmail.ID, p.ID, auth.PermConnectionUpdate)
		require.NoError(t, err)
		assert.True(t, pa.Access.Superuser)
	})

	t.Run("missing project", func(t *testing.T) {
		_, err := authz.RequireProject(env.root.ID, p.ID+100, auth.PermProjectView)
		assert.Equal(t, pkgErrors.CodeNotFound, pkgErrors.CodeOf(err))
	})

	t.Run("unknown caller", func(t *testing.T) {
		_, err := authz.RequireProject(9999, p.ID, auth.PermProjectView)
		assert.ErrorIs(t, err, pkgErrors.ErrUnauthorized)
	})

	t.Run("disabled caller", func(t *testing.T) {
		require.NoError(t, env.db.Model(&model.User{}).Where("id = ?", editor.ID).
			Update("status", constants.StatusDisabled).Error)
		_, err := authz.RequireProject(editor.ID, p.ID, auth.PermProjectView)
		assert.ErrorIs(t, err, pkgErrors.ErrUserDisabled)
	})
}

func TestRoleChangeAppliesImmediately(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Analytics")
	u := env.member(t, p.ID, "dev@corp.io", auth.ProjectRoleViewer)

	_, err := env.svc.Authorization.RequireProject(u.ID, p.ID, auth.PermMetadataUpdate)
	assert.ErrorIs(t, err, pkgErrors.ErrForbidden)

	_, err = env.svc.Member.UpdateRole(env.root.ID, p.ID, u.ID, &dto.UpdateMemberRoleRequest{Role: "editor"})
	require.NoError(t, err)

	_, err = env.svc.Authorization.RequireProject(u.ID, p.ID, auth.PermMetadataUpdate)
	assert.NoError(t, err)
}

func TestScope(t *testing.T) {
	env := newTestEnv(t)
	a := env.project(t, "Alpha")
	b := env.project(t, "Beta")
	u := env.member(t, a.ID, "dev@corp.io", auth.ProjectRoleEditor)

	scope, err := env.svc.Authorization.Scope(u.ID)
	require.NoError(t, err)
	assert.False(t, scope.All)
	role, ok := scope.RoleIn(a.ID)
	assert.True(t, ok)
	assert.Equal(t, auth.ProjectRoleEditor, role)
	_, ok = scope.RoleIn(b.ID)
	assert.False(t, ok)

	rootScope, err := env.svc.Authorization.Scope(env.root.ID)
	require.NoError(t, err)
	assert.True(t, rootScope.All)
	role, ok = rootScope.RoleIn(b.ID)
	assert.True(t, ok)
	assert.Equal(t, auth.ProjectRoleAdmin, role)
}

func TestRequireUserSearch(t *testing.T) {
	env := newTestEnv(t)
	globalAdmin := env.user(t, "boss@corp.io", auth.GlobalRoleAdmin)
	plain := env.user(t, "dev@corp.io", auth.GlobalRoleUser)

	_, err := env.svc.Authorization.RequireUserSearch(globalAdmin.ID)
	assert.NoError(t, err)
	_, err = env.svc.Authorization.RequireUserSearch(plain.ID)
	assert.ErrorIs(t, err, pkgErrors.ErrForbidden)

	_, err = env.svc.Authorization.RequireSuperuser(globalAdmin.ID)
	assert.ErrorIs(t, err, pkgErrors.ErrSuperuserRequired)
	_, err = env.svc.Authorization.RequireSuperuser(env.root.ID)
	assert.NoError(t, err)
}
