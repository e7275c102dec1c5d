// internal/app/features/requests/delete.go
package requests

import (
	"context"
	"errors"
	"net/http"

	"github.com/rowphant/headless-wp/internal/app/policy/grouppolicy"
	groupstore "github.com/rowphant/headless-wp/internal/app/store/groups"
	"github.com/rowphant/headless-wp/internal/app/system/gates"
	"github.com/rowphant/headless-wp/internal/app/system/httpapi"
	"github.com/rowphant/headless-wp/internal/app/system/timeouts"
	"github.com/rowphant/headless-wp/internal/domain/models"
	"go.uber.org/zap"
)

type deleteRequestRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

// HandleDelete withdraws a join request. The requester can withdraw
// their own; group managers can discard anyone's.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	var req deleteRequestRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	groupID, ok := httpapi.ParseID(req.GroupID)
	if !ok {
		httpapi.Error(w, http.StatusBadRequest, "invalid group id")
		return
	}
	targetID, ok := httpapi.ParseID(req.UserID)
	if !ok {
		httpapi.Error(w, http.StatusBadRequest, "invalid user id")
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
	if !grouppolicy.IsSelf(r, targetID) && !grouppolicy.CanManage(r, g) {
		httpapi.Error(w, http.StatusForbidden, "you can only withdraw your own join request")
		return
	}
	if !g.HasRequest(targetID) {
		httpapi.Error(w, http.StatusNotFound, "no join request on record for this user")
		return
	}

	syncRes, err := h.Engine.RemoveUser(ctx, groupID, targetID, models.RoleRequester)
	if err != nil {
		h.Log.Error("join request delete failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", targetID.Hex()),
			zap.Error(err),
		)
		httpapi.Error(w, http.StatusInternalServerError, "could not delete join request")
		return
	}

	respond(w, "join request deleted", syncRes, map[string]any{"group_id": groupID.Hex(), "user_id": targetID.Hex()})
}
