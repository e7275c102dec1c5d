// Package grouppolicy answers resource-specific authorization questions
// for group operations. Session-only checks (signed in, site admin) are
// handled by gates; everything here needs the group document.
package grouppolicy

import (
	"net/http"

	"github.com/rowphant/headless-wp/internal/app/system/authz"
	"github.com/rowphant/headless-wp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CanManage reports whether the caller may administer the group: site
// admin, the group's author, or a member of the group's admin set.
func CanManage(r *http.Request, g models.Group) bool {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	if role == authz.RoleSiteAdmin {
		return true
	}
	return uid == g.AuthorID || g.IsAdmin(uid)
}

// IsSelf reports whether the caller is the target user.
func IsSelf(r *http.Request, userID primitive.ObjectID) bool {
	_, _, uid, ok := authz.UserCtx(r)
	return ok && uid == userID
}

// CanRemoveAdmin reports whether the caller may strip admin from the
// target. Self-removal, group management rights, or fellow-admin status
// all qualify, except that the group author may not lose admin while
// being the only admin left unless the caller is a site admin. Removing
// the last steward of a group is an explicit site-admin decision.
func CanRemoveAdmin(r *http.Request, g models.Group, target primitive.ObjectID) bool {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	if role == authz.RoleSiteAdmin {
		return true
	}
	allowed := uid == target || uid == g.AuthorID || g.IsAdmin(uid)
	if !allowed {
		return false
	}
	soleOwnerAdmin := target == g.AuthorID && len(g.Admins) == 1 && g.Admins[0] == target
	return !soleOwnerAdmin
}
