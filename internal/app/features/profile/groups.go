// internal/app/features/profile/groups.go
package profile

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/rowphant/headless-wp/internal/app/store/users"
	"github.com/rowphant/headless-wp/internal/app/system/authz"
	"github.com/rowphant/headless-wp/internal/app/system/gates"
	"github.com/rowphant/headless-wp/internal/app/system/httpapi"
	"github.com/rowphant/headless-wp/internal/app/system/timeouts"
	"github.com/rowphant/headless-wp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeGroups returns the caller's four mirrored group sets.
func (h *Handler) ServeGroups(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, res.UserID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpapi.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.Log.Error("user load failed", zap.String("user_id", res.UserID.Hex()), zap.Error(err))
		httpapi.Error(w, http.StatusInternalServerError, "could not load profile")
		return
	}

	httpapi.OK(w, "", map[string]any{
		"group_admin":       u.GroupSet(models.RoleAdmin),
		"group_member":      u.GroupSet(models.RoleMember),
		"group_requests":    u.GroupSet(models.RoleRequester),
		"group_invitations": u.GroupSet(models.RoleInvitee),
	})
}

type setGroupsRequest struct {
	Role     string   `json:"role"`
	GroupIDs []string `json:"group_ids"`
	UserID   string   `json:"user_id,omitempty"`
}

// HandleSetGroups overwrites one of a user's mirrored sets and lets the
// sync engine push the change out to the affected groups. Users edit
// their own profile; a site admin may pass user_id to edit anyone's.
func (h *Handler) HandleSetGroups(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	var req setGroupsRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		httpapi.Error(w, http.StatusBadRequest, "unknown role")
		return
	}

	targetID := res.UserID
	if req.UserID != "" && req.UserID != res.UserID.Hex() {
		if !authz.IsSiteAdmin(r) {
			httpapi.Error(w, http.StatusForbidden, "you can only edit your own profile")
			return
		}
		targetID, ok = httpapi.ParseID(req.UserID)
		if !ok {
			httpapi.Error(w, http.StatusBadRequest, "invalid user id")
			return
		}
	}

	newSet := make([]primitive.ObjectID, 0, len(req.GroupIDs))
	for _, s := range req.GroupIDs {
		id, ok := httpapi.ParseID(s)
		if !ok {
			httpapi.Error(w, http.StatusBadRequest, "invalid group id: "+s)
			return
		}
		newSet = append(newSet, id)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	u, err := h.Users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpapi.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.Log.Error("user load failed", zap.String("user_id", targetID.Hex()), zap.Error(err))
		httpapi.Error(w, http.StatusInternalServerError, "could not load user")
		return
	}

	old := currentGroupSet(u, role)
	syncRes, err := h.Engine.ApplyUserChange(ctx, targetID, role, old, newSet)
	if err != nil {
		h.Log.Error("profile group-set overwrite failed",
			zap.String("user_id", targetID.Hex()),
			zap.String("role", req.Role),
			zap.Error(err),
		)
		httpapi.Error(w, http.StatusInternalServerError, "could not update profile groups")
		return
	}

	extra := map[string]any{"applied": syncRes.Applied, "failed": syncRes.Failed}
	if syncRes.Partial() {
		httpapi.Accepted(w, "profile updated; some group records could not be synced", extra)
		return
	}
	httpapi.OK(w, "profile updated", extra)
}

func currentGroupSet(u models.User, role models.Role) []primitive.ObjectID {
	switch role {
	case models.RoleAdmin:
		return u.GroupAdmin
	case models.RoleMember:
		return u.GroupMember
	case models.RoleRequester:
		return u.GroupRequests
	case models.RoleInvitee:
		return u.GroupInvitations
	}
	return nil
}
