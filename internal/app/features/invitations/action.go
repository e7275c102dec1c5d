// internal/app/features/invitations/action.go
package invitations

import (
	"context"
	"errors"
	"net/http"

	groupstore "github.com/rowphant/headless-wp/internal/app/store/groups"
	"github.com/rowphant/headless-wp/internal/app/system/auth"
	"github.com/rowphant/headless-wp/internal/app/system/httpapi"
	"github.com/rowphant/headless-wp/internal/app/system/invitetoken"
	"github.com/rowphant/headless-wp/internal/app/system/membersync"
	"github.com/rowphant/headless-wp/internal/app/system/timeouts"
	"github.com/rowphant/headless-wp/internal/domain/models"
	"go.uber.org/zap"
)

type invitationActionRequest struct {
	GroupID    string `json:"group_id"`
	Identifier string `json:"identifier"`
	Action     string `json:"action"`
	Token      string `json:"token,omitempty"`
}

// HandleAction accepts or declines an invitation. The caller proves
// they are the invitee either with a signed-in session or with the
// invitation token from the email link.
func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	var req invitationActionRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	groupID, ok := httpapi.ParseID(req.GroupID)
	if !ok {
		httpapi.Error(w, http.StatusBadRequest, "invalid group id")
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

	if !h.authorizeInvitee(w, r, req, inv, groupID.Hex()) {
		return
	}

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
	if !g.HasInvitation(inv.email) {
		httpapi.Error(w, http.StatusConflict, "no invitation on record for this group")
		return
	}

	extra := map[string]any{"group_id": groupID.Hex()}

	if req.Action == "decline" {
		res, err := h.Engine.RemoveInvitation(ctx, groupID, inv.email, inv.user.ID)
		if err != nil {
			h.Log.Error("invitation decline failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
			httpapi.Error(w, http.StatusInternalServerError, "could not decline invitation")
			return
		}
		respond(w, "invitation declined", res, extra)
		return
	}

	// accept
	if !inv.found {
		// The invitation stays on the group until the invitee registers
		// and accepts again with an account to attach the membership to.
		httpapi.Accepted(w, "create an account with this email to complete joining the group", extra)
		return
	}

	if g.IsMember(inv.user.ID) {
		res, err := h.Engine.RemoveInvitation(ctx, groupID, inv.email, inv.user.ID)
		if err != nil {
			h.Log.Error("stale invitation cleanup failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
			httpapi.Error(w, http.StatusInternalServerError, "could not clean up invitation")
			return
		}
		respond(w, "you are already a member of this group", res, extra)
		return
	}

	addRes, err := h.Engine.AddUser(ctx, groupID, inv.user.ID, models.RoleMember)
	if err != nil {
		h.Log.Error("invitation accept failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", inv.user.ID.Hex()),
			zap.Error(err),
		)
		httpapi.Error(w, http.StatusInternalServerError, "could not join group")
		return
	}
	cleanRes, err := h.Engine.RemoveInvitation(ctx, groupID, inv.email, inv.user.ID)
	if err != nil {
		h.Log.Warn("invitation record cleanup failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		cleanRes.Failed = append(cleanRes.Failed, inv.email)
	}

	merged := membersync.Result{
		Applied: append(addRes.Applied, cleanRes.Applied...),
		Failed:  append(addRes.Failed, cleanRes.Failed...),
	}
	respond(w, "invitation accepted", merged, extra)
}

// authorizeInvitee requires either a session belonging to the invitee or
// a valid invitation token minted for the identifier/group pair.
func (h *Handler) authorizeInvitee(w http.ResponseWriter, r *http.Request, req invitationActionRequest, inv invitee, groupID string) bool {
	if u, ok := auth.CurrentUser(r); ok {
		if inv.found && u.ID == inv.user.ID.Hex() {
			return true
		}
		if !inv.found && u.Email == inv.email {
			return true
		}
		httpapi.Error(w, http.StatusForbidden, "this invitation belongs to someone else")
		return false
	}

	if req.Token == "" {
		httpapi.Error(w, http.StatusUnauthorized, "log in or provide the invitation token")
		return false
	}
	if err := h.Tokens.Validate(req.Token, req.Identifier, groupID); err != nil {
		if errors.Is(err, invitetoken.ErrExpired) {
			httpapi.Error(w, http.StatusForbidden, "this invitation link has expired")
			return false
		}
		httpapi.Error(w, http.StatusForbidden, "invalid invitation token")
		return false
	}
	return true
}

func respond(w http.ResponseWriter, msg string, res membersync.Result, extra map[string]any) {
	if res.Partial() {
		httpapi.Accepted(w, msg+"; some records could not be synced", extra)
		return
	}
	httpapi.OK(w, msg, extra)
}
