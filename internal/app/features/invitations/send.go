// internal/app/features/invitations/send.go
package invitations

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rowphant/headless-wp/internal/app/policy/grouppolicy"
	groupstore "github.com/rowphant/headless-wp/internal/app/store/groups"
	"github.com/rowphant/headless-wp/internal/app/system/gates"
	"github.com/rowphant/headless-wp/internal/app/system/httpapi"
	"github.com/rowphant/headless-wp/internal/app/system/mailer"
	"github.com/rowphant/headless-wp/internal/app/system/normalize"
	"github.com/rowphant/headless-wp/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type sendInvitationRequest struct {
	GroupID string `json:"group_id"`
	Email   string `json:"email"`
}

// HandleSend records an invitation and emails the invitee. The record is
// written before the email goes out: a failed delivery downgrades the
// response to 202, it never unwinds the invitation.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	var req sendInvitationRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	groupID, ok := httpapi.ParseID(req.GroupID)
	if !ok {
		httpapi.Error(w, http.StatusBadRequest, "invalid group id")
		return
	}
	email := normalize.Email(req.Email)
	if !strings.Contains(email, "@") {
		httpapi.Error(w, http.StatusBadRequest, "invalid email address")
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
	if g.HasInvitation(email) {
		httpapi.Error(w, http.StatusConflict, "this email has already been invited")
		return
	}

	inv, err := h.resolveInvitee(ctx, email)
	if err != nil {
		h.Log.Error("invitee lookup failed", zap.String("email", email), zap.Error(err))
		httpapi.Error(w, http.StatusInternalServerError, "could not look up invitee")
		return
	}
	if inv.found && g.IsMember(inv.user.ID) {
		httpapi.Error(w, http.StatusConflict, "this user is already a member")
		return
	}

	userID := inv.user.ID // zero when no account
	syncRes, err := h.Engine.AddInvitation(ctx, groupID, email, userID)
	if err != nil {
		h.Log.Error("invitation write failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("email", email),
			zap.Error(err),
		)
		httpapi.Error(w, http.StatusInternalServerError, "could not record invitation")
		return
	}

	mailErr := h.sendInvitationMail(g.Title, inv, groupID.Hex())

	extra := map[string]any{"group_id": groupID.Hex(), "email": email}
	switch {
	case mailErr != nil:
		httpapi.Accepted(w, "invitation recorded, but the email could not be delivered", extra)
	case syncRes.Partial():
		httpapi.Accepted(w, "invitation recorded; the invitee's account record could not be synced", extra)
	default:
		httpapi.OK(w, "invitation sent", extra)
	}
}

func (h *Handler) sendInvitationMail(groupTitle string, inv invitee, groupID string) error {
	token := h.Tokens.Generate(inv.tokenID, groupID)

	q := url.Values{}
	q.Set("group_id", groupID)
	q.Set("identifier", inv.tokenID)
	q.Set("token", token)

	data := mailer.InvitationEmailData{
		SiteName:   h.SiteName,
		GroupTitle: groupTitle,
		ExpiresIn:  expiresIn(h.Tokens.TTL()),
	}

	var email mailer.Email
	if inv.found {
		data.AcceptLink = h.BaseURL + "/group-invitations?" + q.Encode()
		email = mailer.BuildInvitationEmail(data)
	} else {
		data.AcceptLink = h.BaseURL + "/register?" + q.Encode()
		email = mailer.BuildInvitationSignupEmail(data)
	}
	email.To = inv.email
	return h.Mail.Send(email)
}

func expiresIn(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days <= 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
