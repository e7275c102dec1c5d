// internal/app/features/members/managemembers.go
package members

import (
	"context"
	"errors"
	"net/http"

	"github.com/rowphant/headless-wp/internal/app/policy/grouppolicy"
	groupstore "github.com/rowphant/headless-wp/internal/app/store/groups"
	userstore "github.com/rowphant/headless-wp/internal/app/store/users"
	"github.com/rowphant/headless-wp/internal/app/system/gates"
	"github.com/rowphant/headless-wp/internal/app/system/httpapi"
	"github.com/rowphant/headless-wp/internal/app/system/membersync"
	"github.com/rowphant/headless-wp/internal/app/system/timeouts"
	"github.com/rowphant/headless-wp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

// HandleAdd adds a user straight into the member set. Any invitation or
// join request the user had for the group is consumed in the same
// operation, so no workflow record survives the direct add.
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

	target, err := h.Users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpapi.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.Log.Error("user load failed", zap.String("user_id", targetID.Hex()), zap.Error(err))
		httpapi.Error(w, http.StatusInternalServerError, "could not load user")
		return
	}
	if g.IsMember(targetID) {
		httpapi.Error(w, http.StatusConflict, "this user is already a member")
		return
	}

	addRes, err := h.Engine.AddUser(ctx, groupID, targetID, models.RoleMember)
	if err != nil {
		h.Log.Error("member add failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", targetID.Hex()),
			zap.Error(err),
		)
		httpapi.Error(w, http.StatusInternalServerError, "could not add member")
		return
	}

	merged := addRes
	if g.HasInvitation(target.Email) {
		invRes, err := h.Engine.RemoveInvitation(ctx, groupID, target.Email, targetID)
		if err != nil {
			h.Log.Warn("invitation cleanup failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
			merged.Failed = append(merged.Failed, target.Email)
		} else {
			merged = mergeResults(merged, invRes)
		}
	}
	if g.HasRequest(targetID) {
		reqRes, err := h.Engine.RemoveUser(ctx, groupID, targetID, models.RoleRequester)
		if err != nil {
			h.Log.Warn("join request cleanup failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
			merged.Failed = append(merged.Failed, targetID.Hex())
		} else {
			merged = mergeResults(merged, reqRes)
		}
	}

	respond(w, "member added", merged, map[string]any{"group_id": groupID.Hex(), "user_id": targetID.Hex()})
}

// HandleRemove removes a user from the member set. Members can leave on
// their own; managers can remove anyone. A pending join request for the
// same group goes with the membership.
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
	if !grouppolicy.IsSelf(r, targetID) && !grouppolicy.CanManage(r, g) {
		httpapi.Error(w, http.StatusForbidden, "you can only remove yourself from a group")
		return
	}
	if !g.IsMember(targetID) {
		httpapi.Error(w, http.StatusNotFound, "this user is not a member")
		return
	}

	syncRes, err := h.Engine.RemoveUser(ctx, groupID, targetID, models.RoleMember)
	if err != nil {
		h.Log.Error("member remove failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", targetID.Hex()),
			zap.Error(err),
		)
		httpapi.Error(w, http.StatusInternalServerError, "could not remove member")
		return
	}

	respond(w, "member removed", syncRes, map[string]any{"group_id": groupID.Hex(), "user_id": targetID.Hex()})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, primitive.ObjectID, bool) {
	var req memberRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, http.StatusBadRequest, err.Error())
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	groupID, ok := httpapi.ParseID(req.GroupID)
	if !ok {
		httpapi.Error(w, http.StatusBadRequest, "invalid group id")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	targetID, ok := httpapi.ParseID(req.UserID)
	if !ok {
		httpapi.Error(w, http.StatusBadRequest, "invalid user id")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return groupID, targetID, true
}

func (h *Handler) loadGroup(ctx context.Context, w http.ResponseWriter, groupID primitive.ObjectID) (models.Group, bool) {
	g, err := h.Groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, groupstore.ErrNotFound) {
			httpapi.Error(w, http.StatusNotFound, "group not found")
			return models.Group{}, false
		}
		h.Log.Error("group load failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		httpapi.Error(w, http.StatusInternalServerError, "could not load group")
		return models.Group{}, false
	}
	return g, true
}

func mergeResults(a, b membersync.Result) membersync.Result {
	return membersync.Result{
		Applied: append(a.Applied, b.Applied...),
		Failed:  append(a.Failed, b.Failed...),
	}
}
