package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSuperuser(t *testing.T) {
	r := NewResolver([]string{" Admin@AI.ru ", "admin@example.com", ""})

	cases := []struct {
		name    string
		subject Subject
		want    bool
	}{
		{"superuser role", Subject{ID: 1, Email: "x@y.z", Role: GlobalRoleSuperuser}, true},
		{"allow-listed email", Subject{ID: 2, Email: "admin@ai.ru", Role: GlobalRoleUser}, true},
		{"allow-listed email mixed case", Subject{ID: 3, Email: "  ADMIN@example.COM", Role: GlobalRoleUser}, true},
		{"global admin is not superuser", Subject{ID: 4, Email: "boss@corp.io", Role: GlobalRoleAdmin}, false},
		{"plain user", Subject{ID: 5, Email: "user@corp.io", Role: GlobalRoleUser}, false},
		{"empty email never matches", Subject{ID: 6, Email: "", Role: GlobalRoleUser}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.IsSuperuser(tc.subject))
		})
	}
}

func TestResolve(t *testing.T) {
	r := NewResolver([]string{"admin@ai.ru"})
	memberships := []Membership{
		{ProjectID: 10, UserID: 1, Role: ProjectRoleEditor},
		{ProjectID: 11, UserID: 2, Role: ProjectRoleViewer},
		{ProjectID: 12, UserID: 1, Role: ProjectRoleAdmin},
	}

	t.Run("member gets stored role", func(t *testing.T) {
		a := r.Resolve(Subject{ID: 1, Role: GlobalRoleUser}, 10, memberships)
		assert.Equal(t, Access{Granted: true, Role: ProjectRoleEditor}, a)
	})

	t.Run("membership must match both project and user", func(t *testing.T) {
		a := r.Resolve(Subject{ID: 1, Role: GlobalRoleUser}, 11, memberships)
		assert.False(t, a.Granted)
		assert.Empty(t, a.Role)
	})

	t.Run("superuser by role sees every project", func(t *testing.T) {
		a := r.Resolve(Subject{ID: 99, Role: GlobalRoleSuperuser}, 500, nil)
		assert.Equal(t, Access{Granted: true, Superuser: true, Role: ProjectRoleAdmin}, a)
	})

	t.Run("superuser by email sees every project", func(t *testing.T) {
		a := r.Resolve(Subject{ID: 98, Email: "ADMIN@ai.ru", Role: GlobalRoleUser}, 500, nil)
		assert.True(t, a.Granted)
		assert.True(t, a.Superuser)
	})

	t.Run("anonymous subject", func(t *testing.T) {
		a := r.Resolve(Subject{Email: "admin@ai.ru", Role: GlobalRoleSuperuser}, 10, memberships)
		assert.False(t, a.Granted)
	})
}

func TestAccessAllows(t *testing.T) {
	viewer := Access{Granted: true, Role: ProjectRoleViewer}
	editor := Access{Granted: true, Role: ProjectRoleEditor}
	admin := Access{Granted: true, Role: ProjectRoleAdmin}
	super := Access{Granted: true, Superuser: true, Role: ProjectRoleAdmin}

	assert.True(t, viewer.Allows(PermProjectView))
	assert.True(t, viewer.Allows(PermChatCreate))
	assert.True(t, viewer.Allows(PermNoteDelete))
	assert.True(t, viewer.Allows(PermExampleView))
	assert.False(t, viewer.Allows(PermExampleCreate))
	assert.False(t, viewer.Allows(PermMetadataUpdate))
	assert.False(t, viewer.Allows(PermMemberCreate))
	assert.False(t, viewer.Allows(PermChatViewAll))

	assert.True(t, editor.Allows(PermExampleDelete))
	assert.True(t, editor.Allows(PermMetadataUpdate))
	assert.False(t, editor.Allows(PermConnectionUpdate))
	assert.False(t, editor.Allows(PermProjectUpdate))

	assert.True(t, admin.Allows(PermMemberDelete))
	assert.True(t, admin.Allows(PermConnectionTest))
	assert.True(t, admin.Allows(PermChatViewAll))

	assert.True(t, super.Allows("anything:at:all"))

	assert.False(t, Access{}.Allows(PermProjectView))
	assert.False(t, Access{Superuser: true}.Allows(PermProjectView))
}

func TestAllowWildcards(t *testing.T) {
	saved := RolePermissions
	t.Cleanup(func() { RolePermissions = saved })

	RolePermissions = map[ProjectRole][]Permission{
		"first":  {"project:view", "batch:view"},
		"nested": {"example:import:*"},
		"exact":  {"example:view"},
	}

	// a miss on the first grant must not hide a later match
	assert.True(t, Allow([]string{"first"}, "batch:view"))

	assert.True(t, Allow([]string{"nested"}, "example:import:csv"))
	assert.False(t, Allow([]string{"nested"}, "example:export:csv"))

	assert.True(t, Allow([]string{"exact"}, "example:view"))
	assert.False(t, Allow([]string{"exact"}, "example:view:extra"))
	assert.False(t, Allow([]string{"exact"}, "example"))

	assert.True(t, Allow([]string{"unknown", "exact"}, "example:view"))
	assert.False(t, Allow([]string{"unknown"}, "example:view"))
	assert.False(t, Allow(nil, "example:view"))
}

func TestGlobalCapabilities(t *testing.T) {
	r := NewResolver([]string{"admin@example.com"})

	super := Subject{ID: 1, Role: GlobalRoleSuperuser}
	byEmail := Subject{ID: 2, Email: "admin@example.com", Role: GlobalRoleUser}
	globalAdmin := Subject{ID: 3, Role: GlobalRoleAdmin}
	user := Subject{ID: 4, Role: GlobalRoleUser}

	assert.True(t, r.CanCreateProject(super))
	assert.True(t, r.CanCreateProject(byEmail))
	assert.False(t, r.CanCreateProject(globalAdmin))
	assert.False(t, r.CanCreateProject(user))

	assert.True(t, r.CanManageUsers(byEmail))
	assert.False(t, r.CanManageUsers(globalAdmin))

	assert.True(t, r.CanSearchUsers(globalAdmin))
	assert.True(t, r.CanSearchUsers(super))
	assert.False(t, r.CanSearchUsers(user))
}

func TestRoleOfAndValidation(t *testing.T) {
	role, ok := RoleOf(1, 2, []Membership{{ProjectID: 1, UserID: 2, Role: ProjectRoleAdmin}})
	assert.True(t, ok)
	assert.Equal(t, ProjectRoleAdmin, role)

	_, ok = RoleOf(2, 1, []Membership{{ProjectID: 1, UserID: 2, Role: ProjectRoleAdmin}})
	assert.False(t, ok)

	assert.True(t, ValidProjectRole("editor"))
	assert.False(t, ValidProjectRole("owner"))
	assert.True(t, ValidGlobalRole("superuser"))
	assert.False(t, ValidGlobalRole("root"))
}
