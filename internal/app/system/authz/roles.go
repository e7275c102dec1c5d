// internal/app/system/authz/roles.go
package authz

// Session roles. Group-level roles (admin of a group, member of a group)
// live on the group documents, not in the session.
const (
	RoleSiteAdmin = "admin"
	RoleUser      = "user"
)
