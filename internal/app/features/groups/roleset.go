// internal/app/features/groups/roleset.go
package groups

import (
	"context"
	"errors"
	"net/http"

	"github.com/rowphant/headless-wp/internal/app/policy/grouppolicy"
	groupstore "github.com/rowphant/headless-wp/internal/app/store/groups"
	"github.com/rowphant/headless-wp/internal/app/system/httpapi"
	"github.com/rowphant/headless-wp/internal/app/system/membersync"
	"github.com/rowphant/headless-wp/internal/app/system/timeouts"
	"github.com/rowphant/headless-wp/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type setRoleSetRequest struct {
	Role   string   `json:"role"`
	IDs    []string `json:"ids"`
	Emails []string `json:"emails"`
}

// HandleSetRoleSet overwrites one role-set of a group wholesale and lets
// the sync engine fan the change out to the affected users' mirrors.
// The id roles take "ids"; the invitee role takes "emails".
func (h *Handler) HandleSetRoleSet(w http.ResponseWriter, r *http.Request) {
	groupID, ok := httpapi.ParseID(chi.URLParam(r, "id"))
	if !ok {
		httpapi.Error(w, http.StatusBadRequest, "invalid group id")
		return
	}

	var req setRoleSetRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		httpapi.Error(w, http.StatusBadRequest, "unknown role")
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

	var res membersync.Result
	if role == models.RoleInvitee {
		res, err = h.Engine.ApplyGroupInvitations(ctx, groupID, g.Invitations, req.Emails)
	} else {
		var ids []primitive.ObjectID
		ids, err = parseIDs(req.IDs)
		if err != nil {
			httpapi.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		res, err = h.Engine.ApplyGroupChange(ctx, groupID, role, currentSet(g, role), ids)
	}
	if err != nil {
		h.Log.Error("role-set overwrite failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("role", req.Role),
			zap.Error(err),
		)
		httpapi.Error(w, http.StatusInternalServerError, "could not update role set")
		return
	}

	extra := map[string]any{"applied": res.Applied, "failed": res.Failed}
	if res.Partial() {
		httpapi.Accepted(w, "role set updated; some user records could not be synced", extra)
		return
	}
	httpapi.OK(w, "role set updated", extra)
}

func currentSet(g models.Group, role models.Role) []primitive.ObjectID {
	switch role {
	case models.RoleAdmin:
		return g.Admins
	case models.RoleMember:
		return g.Members
	case models.RoleRequester:
		return g.Requests
	}
	return nil
}

func parseIDs(in []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(in))
	for _, s := range in {
		id, ok := httpapi.ParseID(s)
		if !ok {
			return nil, errors.New("invalid user id: " + s)
		}
		out = append(out, id)
	}
	return out, nil
}
