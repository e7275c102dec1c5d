// internal/app/features/invitations/delete.go
package invitations

import (
	"context"
	"errors"
	"net/http"

	"github.com/rowphant/headless-wp/internal/app/policy/grouppolicy"
	groupstore "github.com/rowphant/headless-wp/internal/app/store/groups"
	"github.com/rowphant/headless-wp/internal/app/system/gates"
	"github.com/rowphant/headless-wp/internal/app/system/httpapi"
	"github.com/rowphant/headless-wp/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type deleteInvitationRequest struct {
	GroupID    string `json:"group_id"`
	Identifier string `json:"identifier"`
}

// HandleDelete revokes a pending invitation. Same record removal as a
// decline, but initiated by a group manager and without notifying the
// invitee.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	var req deleteInvitationRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	groupID, ok := httpapi.ParseID(req.GroupID)
	if !ok {
		httpapi.Error(w, http.StatusBadRequest, "invalid group id")
		return
	}

	unlock := h.Locks.Lock(groupID.Hex())
	defer unlock()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	g, err := h.Groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, groupstore.ErrNotFound) {
			httpapi.Error(w, http.StatusNotFound, "group not found")
			return
		}
		h.Log.Error("group load failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		httpapi.Error(w, http.StatusInternalServerError, "could not load group")
		return
	}
	if !grouppolicy.CanManage(r, g) {
		httpapi.Error(w, http.StatusForbidden, "you cannot manage this group")
		return
	}

	inv, err := h.resolveInvitee(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, errUnknownUser) {
			httpapi.Error(w, http.StatusNotFound, "unknown invitee")
			return
		}
		h.Log.Error("invitee lookup failed", zap.String("identifier", req.Identifier), zap.Error(err))
		httpapi.Error(w, http.StatusInternalServerError, "could not look up invitee")
		return
	}
	if !g.HasInvitation(inv.email) {
		httpapi.Error(w, http.StatusNotFound, "no invitation on record for this group")
		return
	}

	syncRes, err := h.Engine.RemoveInvitation(ctx, groupID, inv.email, inv.user.ID)
	if err != nil {
		h.Log.Error("invitation revoke failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("email", inv.email),
			zap.Error(err),
		)
		httpapi.Error(w, http.StatusInternalServerError, "could not revoke invitation")
		return
	}

	respond(w, "invitation revoked", syncRes, map[string]any{"group_id": groupID.Hex(), "email": inv.email})
}
