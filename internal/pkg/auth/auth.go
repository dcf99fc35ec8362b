package auth

import "strings"

// GlobalRole is stored on the user record
type GlobalRole string

const (
	GlobalRoleUser      GlobalRole = "user"
	GlobalRoleAdmin     GlobalRole = "admin"
	GlobalRoleSuperuser GlobalRole = "superuser"
)

// ProjectRole is stored on a project membership
type ProjectRole string

const (
	ProjectRoleViewer ProjectRole = "viewer"
	ProjectRoleEditor ProjectRole = "editor"
	ProjectRoleAdmin  ProjectRole = "admin"
)

// Permission is resource:action, wildcards allowed on the granted side
type Permission string

const (
	PermProjectView   Permission = "project:view"
	PermProjectUpdate Permission = "project:update"

	PermMemberView   Permission = "member:view"
	PermMemberCreate Permission = "member:create"
	PermMemberUpdate Permission = "member:update"
	PermMemberDelete Permission = "member:delete"

	PermChatView    Permission = "chat:view"
	PermChatCreate  Permission = "chat:create"
	PermChatUpdate  Permission = "chat:update"
	PermChatDelete  Permission = "chat:delete"
	PermChatViewAll Permission = "chat:view_all"

	PermNoteView   Permission = "note:view"
	PermNoteCreate Permission = "note:create"
	PermNoteUpdate Permission = "note:update"
	PermNoteDelete Permission = "note:delete"

	PermExampleView   Permission = "example:view"
	PermExampleCreate Permission = "example:create"
	PermExampleUpdate Permission = "example:update"
	PermExampleDelete Permission = "example:delete"

	PermConnectionView   Permission = "connection:view"
	PermConnectionCreate Permission = "connection:create"
	PermConnectionUpdate Permission = "connection:update"
	PermConnectionDelete Permission = "connection:delete"
	PermConnectionTest   Permission = "connection:test"

	PermMetadataView   Permission = "metadata:view"
	PermMetadataUpdate Permission = "metadata:update"
)

var viewerPermissions = []Permission{
	PermProjectView,
	PermMemberView,
	"chat:view",
	"chat:create",
	"chat:update",
	"chat:delete",
	"note:*",
	PermExampleView,
	PermConnectionView,
	PermMetadataView,
}

// RolePermissions lists what each project role grants
var RolePermissions = map[ProjectRole][]Permission{
	ProjectRoleViewer: viewerPermissions,
	ProjectRoleEditor: append(append([]Permission{}, viewerPermissions...),
		"example:*",
		"metadata:*",
	),
	ProjectRoleAdmin: {
		"*",
	},
}

// Subject is the caller of an operation
type Subject struct {
	ID    int64
	Email string
	Role  GlobalRole
}

// Membership binds a user to a project with a role
type Membership struct {
	ProjectID int64
	UserID    int64
	Role      ProjectRole
}

// Access is the outcome of resolving a subject against one project
type Access struct {
	Granted   bool
	Superuser bool
	Role      ProjectRole
}

// Allows reports whether the resolved access carries need
func (a Access) Allows(need Permission) bool {
	if !a.Granted {
		return false
	}
	if a.Superuser {
		return true
	}
	return Allow([]string{string(a.Role)}, need)
}

// Resolver decides project visibility and role
type Resolver struct {
	superuserEmails map[string]struct{}
}

func NewResolver(superuserEmails []string) *Resolver {
	emails := make(map[string]struct{}, len(superuserEmails))
	for _, e := range superuserEmails {
		e = normalizeEmail(e)
		if e != "" {
			emails[e] = struct{}{}
		}
	}
	return &Resolver{superuserEmails: emails}
}

// IsSuperuser is true for the superuser role or an allow-listed email
func (r *Resolver) IsSuperuser(s Subject) bool {
	if s.Role == GlobalRoleSuperuser {
		return true
	}
	_, ok := r.superuserEmails[normalizeEmail(s.Email)]
	return ok
}

// Resolve grants superusers full access, everyone else gets the role of their
// (projectID, subject) membership or nothing
func (r *Resolver) Resolve(s Subject, projectID int64, memberships []Membership) Access {
	if s.ID == 0 {
		return Access{}
	}
	if r.IsSuperuser(s) {
		return Access{Granted: true, Superuser: true, Role: ProjectRoleAdmin}
	}
	role, ok := RoleOf(projectID, s.ID, memberships)
	if !ok {
		return Access{}
	}
	return Access{Granted: true, Role: role}
}

// CanCreateProject is reserved to superusers; project deletion follows the same rule
func (r *Resolver) CanCreateProject(s Subject) bool {
	return s.ID != 0 && r.IsSuperuser(s)
}

func (r *Resolver) CanManageUsers(s Subject) bool {
	return s.ID != 0 && r.IsSuperuser(s)
}

// CanSearchUsers covers the member picker: superusers and global admins
func (r *Resolver) CanSearchUsers(s Subject) bool {
	return s.ID != 0 && (s.Role == GlobalRoleAdmin || r.IsSuperuser(s))
}

// RoleOf looks up the membership of userID in projectID
func RoleOf(projectID, userID int64, memberships []Membership) (ProjectRole, bool) {
	for _, m := range memberships {
		if m.ProjectID == projectID && m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

func ValidProjectRole(role string) bool {
	switch ProjectRole(role) {
	case ProjectRoleViewer, ProjectRoleEditor, ProjectRoleAdmin:
		return true
	}
	return false
}

func ValidGlobalRole(role string) bool {
	switch GlobalRole(role) {
	case GlobalRoleUser, GlobalRoleAdmin, GlobalRoleSuperuser:
		return true
	}
	return false
}

// Allow reports whether any of roles grants need, wildcards supported
func Allow(roles []string, need Permission) bool {
	permissions := collectPermissions(roles)

	return len(permissions) > 0 && allow(permissions, need)
}

func collectPermissions(roles []string) []Permission {
	perms := make([]Permission, 0)
	for _, r := range roles {
		if ps, ok := RolePermissions[ProjectRole(r)]; ok {
			perms = append(perms, ps...)
		}
	}
	return perms
}

func allow(have []Permission, need Permission) bool {
	for _, p := range have {
		if match(p, need) {
			return true
		}
	}
	return false
}

// match checks one granted permission. A "*" segment matches the rest of need.
func match(granted, need Permission) bool {
	if granted == need || granted == "*" {
		return true
	}

	reqParts := strings.Split(string(need), ":")
	allParts := strings.Split(string(granted), ":")

	for i, part := range allParts {
		if part == "*" {
			return true
		}
		if i >= len(reqParts) || part != reqParts[i] {
			return false
		}
	}

	return len(allParts) == len(reqParts)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
