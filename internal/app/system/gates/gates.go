// Package gates provides authorization gate functions for HTTP handlers.
// Gates check authentication and role requirements and write the JSON
// error response themselves; a handler that receives OK=false returns
// immediately without writing anything further.
//
// Resource-specific checks (can this caller manage that group) live in
// internal/app/policy; gates only cover what the session alone can
// answer.
package gates

import (
	"net/http"

	"github.com/rowphant/headless-wp/internal/app/system/authz"
	"github.com/rowphant/headless-wp/internal/app/system/httpapi"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result contains the outcome of a gate check.
type Result struct {
	Role   string
	Name   string
	UserID primitive.ObjectID
	OK     bool
}

// RequireAuth ensures a user is signed in. On failure it writes a 401
// envelope and returns OK=false.
func RequireAuth(w http.ResponseWriter, r *http.Request) Result {
	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		httpapi.Error(w, http.StatusUnauthorized, "you must be logged in")
		return Result{OK: false}
	}
	return Result{Role: role, Name: name, UserID: uid, OK: true}
}

// RequireSiteAdmin ensures the user is signed in and carries the site
// admin role. Writes 401/403 on failure.
func RequireSiteAdmin(w http.ResponseWriter, r *http.Request) Result {
	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		httpapi.Error(w, http.StatusUnauthorized, "you must be logged in")
		return Result{OK: false}
	}
	if role != authz.RoleSiteAdmin {
		httpapi.Error(w, http.StatusForbidden, "site admin required")
		return Result{OK: false}
	}
	return Result{Role: role, Name: name, UserID: uid, OK: true}
}
