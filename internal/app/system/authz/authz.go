// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/rowphant/headless-wp/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx extracts the signed-in user's role, name, and id from the
// request context. ok is false when there is no user or the stored id is
// not a valid ObjectID hex.
func UserCtx(r *http.Request) (role, name string, userID primitive.ObjectID, ok bool) {
	u, found := auth.CurrentUser(r)
	if !found {
		return "", "", primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return "", "", primitive.NilObjectID, false
	}
	return u.Role, u.Name, id, true
}

// IsSiteAdmin reports whether the signed-in user carries the site admin
// role. Site admins pass every group-level permission gate.
func IsSiteAdmin(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && u.Role == RoleSiteAdmin
}
