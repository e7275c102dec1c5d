// internal/app/features/groups/groupdelete.go
package groups

import (
	"context"
	"errors"
	"net/http"

	"github.com/rowphant/headless-wp/internal/app/policy/grouppolicy"
	groupstore "github.com/rowphant/headless-wp/internal/app/store/groups"
	"github.com/rowphant/headless-wp/internal/app/system/httpapi"
	"github.com/rowphant/headless-wp/internal/app/system/timeouts"
	"github.com/rowphant/headless-wp/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleDeleteGroup empties every role-set through the sync engine (so
// no user document keeps a mirror entry for a dead group) and then
// removes the group document.
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := httpapi.ParseID(chi.URLParam(r, "id"))
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

	partial := false
	for _, role := range []models.Role{models.RoleAdmin, models.RoleMember, models.RoleRequester} {
		res, err := h.Engine.ApplyGroupChange(ctx, groupID, role, currentSet(g, role), []primitive.ObjectID{})
		if err != nil {
			h.Log.Error("role-set clear failed",
				zap.String("group_id", groupID.Hex()),
				zap.String("role", string(role)),
				zap.Error(err),
			)
			httpapi.Error(w, http.StatusInternalServerError, "could not delete group")
			return
		}
		partial = partial || res.Partial()
	}
	res, err := h.Engine.ApplyGroupInvitations(ctx, groupID, g.Invitations, nil)
	if err != nil {
		h.Log.Error("invitation clear failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		httpapi.Error(w, http.StatusInternalServerError, "could not delete group")
		return
	}
	partial = partial || res.Partial()

	if _, err := h.Groups.Delete(ctx, groupID); err != nil {
		h.Log.Error("group delete failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		httpapi.Error(w, http.StatusInternalServerError, "could not delete group")
		return
	}

	if partial {
		httpapi.Accepted(w, "group deleted; some user records could not be synced", nil)
		return
	}
	httpapi.OK(w, "group deleted", nil)
}
