// internal/app/features/admins/manageadmins.go
package admins

import (
	"context"
	"net/http"

	"github.com/rowphant/headless-wp/internal/app/policy/grouppolicy"
	"github.com/rowphant/headless-wp/internal/app/system/gates"
	"github.com/rowphant/headless-wp/internal/app/system/httpapi"
	"github.com/rowphant/headless-wp/internal/app/system/timeouts"
	"github.com/rowphant/headless-wp/internal/domain/models"
	"go.uber.org/zap"
)

// HandleAdd promotes an existing member to group admin. Membership is a
// precondition: the admin set is a subset of the member set.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	groupID, targetID, ok := h.decode(w, r)
	if !ok {
		return
	}

	unlock := h.Locks.Lock(groupID.Hex())
	defer unlock()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	g, ok := h.loadGroup(ctx, w, groupID)
	if !ok {
		return
	}
	if !grouppolicy.CanManage(r, g) {
		httpapi.Error(w, http.StatusForbidden, "you cannot manage this group")
		return
	}
	if !g.IsMember(targetID) {
		httpapi.Error(w, http.StatusBadRequest, "only members can be made admins")
		return
	}

	extra := map[string]any{"group_id": groupID.Hex(), "user_id": targetID.Hex()}

	if g.IsAdmin(targetID) {
		httpapi.OK(w, "this user is already an admin", extra)
		return
	}

	syncRes, err := h.Engine.AddUser(ctx, groupID, targetID, models.RoleAdmin)
	if err != nil {
		h.Log.Error("admin add failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", targetID.Hex()),
			zap.Error(err),
		)
		httpapi.Error(w, http.StatusInternalServerError, "could not add admin")
		return
	}

	respond(w, "admin added", syncRes, extra)
}

// HandleRemove demotes a group admin. Admins can step down themselves
// and any admin can demote another, but the group author cannot be
// demoted while they are the last admin standing; only a site admin may
// do that.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	groupID, targetID, ok := h.decode(w, r)
	if !ok {
		return
	}

	unlock := h.Locks.Lock(groupID.Hex())
	defer unlock()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	g, ok := h.loadGroup(ctx, w, groupID)
	if !ok {
		return
	}
	if !g.IsAdmin(targetID) {
		httpapi.Error(w, http.StatusNotFound, "this user is not an admin")
		return
	}
	if !grouppolicy.CanRemoveAdmin(r, g, targetID) {
		httpapi.Error(w, http.StatusForbidden, "you cannot remove this admin")
		return
	}

	syncRes, err := h.Engine.RemoveUser(ctx, groupID, targetID, models.RoleAdmin)
	if err != nil {
		h.Log.Error("admin remove failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", targetID.Hex()),
			zap.Error(err),
		)
		httpapi.Error(w, http.StatusInternalServerError, "could not remove admin")
		return
	}

	respond(w, "admin removed", syncRes, map[string]any{"group_id": groupID.Hex(), "user_id": targetID.Hex()})
}
