// internal/app/features/requests/action.go
package requests

import (
	"context"
	"errors"
	"net/http"

	"github.com/rowphant/headless-wp/internal/app/policy/grouppolicy"
	groupstore "github.com/rowphant/headless-wp/internal/app/store/groups"
	"github.com/rowphant/headless-wp/internal/app/system/gates"
	"github.com/rowphant/headless-wp/internal/app/system/httpapi"
	"github.com/rowphant/headless-wp/internal/app/system/membersync"
	"github.com/rowphant/headless-wp/internal/app/system/timeouts"
	"github.com/rowphant/headless-wp/internal/domain/models"
	"go.uber.org/zap"
)

type requestActionRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
	Action  string `json:"action"`
}

// HandleAction lets a group manager accept or decline a join request.
func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	var req requestActionRequest
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
	if req.Action != "accept" && req.Action != "decline" {
		httpapi.Error(w, http.StatusBadRequest, "action must be accept or decline")
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

	extra := map[string]any{"group_id": groupID.Hex(), "user_id": targetID.Hex()}

	if !g.HasRequest(targetID) {
		if g.IsMember(targetID) {
			httpapi.OK(w, "this user is already a member", extra)
			return
		}
		httpapi.Error(w, http.StatusNotFound, "no join request on record for this user")
		return
	}

	if req.Action == "decline" {
		syncRes, err := h.Engine.RemoveUser(ctx, groupID, targetID, models.RoleRequester)
		if err != nil {
			h.Log.Error("join request decline failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
			httpapi.Error(w, http.StatusInternalServerError, "could not decline join request")
			return
		}
		respond(w, "join request declined", syncRes, extra)
		return
	}

	// accept
	if g.IsMember(targetID) {
		syncRes, err := h.Engine.RemoveUser(ctx, groupID, targetID, models.RoleRequester)
		if err != nil {
			h.Log.Error("stale join request cleanup failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
			httpapi.Error(w, http.StatusInternalServerError, "could not clean up join request")
			return
		}
		respond(w, "this user is already a member", syncRes, extra)
		return
	}

	addRes, err := h.Engine.AddUser(ctx, groupID, targetID, models.RoleMember)
	if err != nil {
		h.Log.Error("join request accept failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", targetID.Hex()),
			zap.Error(err),
		)
		httpapi.Error(w, http.StatusInternalServerError, "could not accept join request")
		return
	}
	cleanRes, err := h.Engine.RemoveUser(ctx, groupID, targetID, models.RoleRequester)
	if err != nil {
		h.Log.Warn("join request record cleanup failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		cleanRes.Failed = append(cleanRes.Failed, targetID.Hex())
	}

	merged := membersync.Result{
		Applied: append(addRes.Applied, cleanRes.Applied...),
		Failed:  append(addRes.Failed, cleanRes.Failed...),
	}
	respond(w, "join request accepted", merged, extra)
}
