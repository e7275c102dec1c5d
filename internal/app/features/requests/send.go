// internal/app/features/requests/send.go
package requests

import (
	"context"
	"errors"
	"net/http"

	groupstore "github.com/rowphant/headless-wp/internal/app/store/groups"
	"github.com/rowphant/headless-wp/internal/app/system/gates"
	"github.com/rowphant/headless-wp/internal/app/system/httpapi"
	"github.com/rowphant/headless-wp/internal/app/system/timeouts"
	"github.com/rowphant/headless-wp/internal/domain/models"
	"go.uber.org/zap"
)

type sendRequestRequest struct {
	GroupID string `json:"group_id"`
}

// HandleSend files a join request from the caller.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	var req sendRequestRequest
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

	if g.IsMember(res.UserID) {
		// Opportunistic repair: the group says member, make sure the
		// user's own mirror agrees before reporting the conflict.
		if err := h.Users.AddGroup(ctx, res.UserID, models.RoleMember, groupID); err != nil {
			h.Log.Warn("member mirror repair failed",
				zap.String("group_id", groupID.Hex()),
				zap.String("user_id", res.UserID.Hex()),
				zap.Error(err),
			)
		}
		httpapi.Error(w, http.StatusConflict, "you are already a member of this group")
		return
	}
	if g.HasRequest(res.UserID) {
		httpapi.Error(w, http.StatusConflict, "you have already requested to join this group")
		return
	}

	syncRes, err := h.Engine.AddUser(ctx, groupID, res.UserID, models.RoleRequester)
	if err != nil {
		h.Log.Error("join request write failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", res.UserID.Hex()),
			zap.Error(err),
		)
		httpapi.Error(w, http.StatusInternalServerError, "could not file join request")
		return
	}

	respond(w, "join request sent", syncRes, map[string]any{"group_id": groupID.Hex()})
}
