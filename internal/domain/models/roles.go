// internal/domain/models/roles.go
package models

// Role names a relationship between a user and a group. Every role is
// denormalized on both sides: an array on the group document and a mirror
// array on the user document. RoleInvitee is asymmetric: the group side
// stores the invitee's email, the user side stores group ids.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleMember    Role = "member"
	RoleRequester Role = "requester"
	RoleInvitee   Role = "invitee"
)

// ParseRole maps a wire-format role name to a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleMember, RoleRequester, RoleInvitee:
		return Role(s), true
	}
	return "", false
}

// GroupField is the array field on the group document for this role.
func (r Role) GroupField() string {
	switch r {
	case RoleAdmin:
		return "admins"
	case RoleMember:
		return "members"
	case RoleRequester:
		return "requests"
	case RoleInvitee:
		return "invitations"
	}
	return ""
}

// UserField is the mirror array field on the user document for this role.
func (r Role) UserField() string {
	switch r {
	case RoleAdmin:
		return "group_admin"
	case RoleMember:
		return "group_member"
	case RoleRequester:
		return "group_requests"
	case RoleInvitee:
		return "group_invitations"
	}
	return ""
}

// RoleSet returns the group-side set for the role. For RoleInvitee the
// values are emails; for everything else they are user-id hex strings.
func (g Group) RoleSet(r Role) []string {
	switch r {
	case RoleAdmin:
		return idsToHex(g.Admins)
	case RoleMember:
		return idsToHex(g.Members)
	case RoleRequester:
		return idsToHex(g.Requests)
	case RoleInvitee:
		return append([]string(nil), g.Invitations...)
	}
	return nil
}

// GroupSet returns the user-side group-id set for the role.
func (u User) GroupSet(r Role) []string {
	switch r {
	case RoleAdmin:
		return idsToHex(u.GroupAdmin)
	case RoleMember:
		return idsToHex(u.GroupMember)
	case RoleRequester:
		return idsToHex(u.GroupRequests)
	case RoleInvitee:
		return idsToHex(u.GroupInvitations)
	}
	return nil
}
