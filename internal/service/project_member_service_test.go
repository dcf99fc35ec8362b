package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai2sql/internal/adapter/notification"
	"ai2sql/internal/dto"
	"ai2sql/internal/pkg/auth"
	pkgErrors "ai2sql/pkg/errors"
)

func TestMemberLifecycle(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Analytics")
	u := env.user(t, "dev@corp.io", auth.GlobalRoleUser)

	added, err := env.svc.Member.Add(env.root.ID, p.ID, &dto.AddMemberRequest{UserID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, "viewer", added.Role)
	assert.Equal(t, "dev@corp.io", added.Email)
	require.NotNil(t, added.AddedBy)
	assert.Equal(t, env.root.ID, *added.AddedBy)

	_, err = env.svc.Member.Add(env.root.ID, p.ID, &dto.AddMemberRequest{UserID: u.ID, Role: "editor"})
	assert.Equal(t, pkgErrors.CodeConflict, pkgErrors.CodeOf(err))

	_, err = env.svc.Member.Add(env.root.ID, p.ID, &dto.AddMemberRequest{UserID: 9999})
	assert.ErrorIs(t, err, pkgErrors.ErrUserNotFound)

	_, err = env.svc.Member.Add(env.root.ID, p.ID, &dto.AddMemberRequest{UserID: u.ID, Role: "owner"})
	assert.Equal(t, pkgErrors.CodeValidationError, pkgErrors.CodeOf(err))

	updated, err := env.svc.Member.UpdateRole(env.root.ID, p.ID, u.ID, &dto.UpdateMemberRoleRequest{Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "admin", updated.Role)
	assert.Equal(t, "dev@corp.io", updated.Email)

	members, err := env.svc.Member.List(u.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, u.ID, members[0].UserID)

	require.NoError(t, env.svc.Member.Remove(env.root.ID, p.ID, u.ID))
	err = env.svc.Member.Remove(env.root.ID, p.ID, u.ID)
	assert.Equal(t, pkgErrors.CodeNotFound, pkgErrors.CodeOf(err))

	_, err = env.svc.Member.UpdateRole(env.root.ID, p.ID, u.ID, &dto.UpdateMemberRoleRequest{Role: "viewer"})
	assert.Equal(t, pkgErrors.CodeNotFound, pkgErrors.CodeOf(err))

	assert.Equal(t, []notification.NotificationType{
		notification.NotifyProjectCreated,
		notification.NotifyMemberAdded,
		notification.NotifyMemberRoleChanged,
		notification.NotifyMemberRemoved,
	}, env.notifier.types())
}

func TestMemberManagementNeedsProjectAdmin(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Analytics")
	editor := env.member(t, p.ID, "editor@corp.io", auth.ProjectRoleEditor)
	lead := env.member(t, p.ID, "lead@corp.io", auth.ProjectRoleAdmin)
	newcomer := env.user(t, "new@corp.io", auth.GlobalRoleUser)

	_, err := env.svc.Member.Add(editor.ID, p.ID, &dto.AddMemberRequest{UserID: newcomer.ID})
	assert.ErrorIs(t, err, pkgErrors.ErrForbidden)

	_, err = env.svc.Member.Add(lead.ID, p.ID, &dto.AddMemberRequest{UserID: newcomer.ID, Role: "editor"})
	assert.NoError(t, err)

	err = env.svc.Member.Remove(editor.ID, p.ID, newcomer.ID)
	assert.ErrorIs(t, err, pkgErrors.ErrForbidden)

	members, err := env.svc.Member.List(editor.ID, p.ID)
	require.NoError(t, err)
	assert.Len(t, members, 3)
}
