// internal/app/features/register/register.go
package register

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/rowphant/headless-wp/internal/app/store/users"
	"github.com/rowphant/headless-wp/internal/app/system/httpapi"
	"github.com/rowphant/headless-wp/internal/app/system/normalize"
	"github.com/rowphant/headless-wp/internal/app/system/timeouts"
	"github.com/rowphant/headless-wp/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// HandleRegister creates an account and reconciles pending invitations:
// every published group holding the email in its invitation set is
// mirrored onto the new account, so an email-link invitee lands with
// their invitations already visible.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	email := normalize.Email(req.Email)
	if !strings.Contains(email, "@") {
		httpapi.Error(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(req.Password) < 8 {
		httpapi.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		name = email
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("password hash failed", zap.Error(err))
		httpapi.Error(w, http.StatusInternalServerError, "could not create account")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Email:        email,
		DisplayName:  name,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			httpapi.Error(w, http.StatusConflict, err.Error())
			return
		}
		h.Log.Error("user create failed", zap.String("email", email), zap.Error(err))
		httpapi.Error(w, http.StatusInternalServerError, "could not create account")
		return
	}

	// Pending email invitations become user-side mirrors now that there
	// is an account to attach them to.
	var failed []string
	invited, err := h.Groups.FindInvitedByEmail(ctx, email)
	if err != nil {
		h.Log.Warn("invitation reconcile lookup failed", zap.String("email", email), zap.Error(err))
		failed = append(failed, email)
	}
	for _, g := range invited {
		if err := h.Users.AddGroup(ctx, u.ID, models.RoleInvitee, g.ID); err != nil {
			h.Log.Warn("invitation reconcile failed",
				zap.String("group_id", g.ID.Hex()),
				zap.String("user_id", u.ID.Hex()),
				zap.Error(err),
			)
			failed = append(failed, g.ID.Hex())
		}
	}

	extra := map[string]any{"user_id": u.ID.Hex(), "pending_invitations": len(invited)}
	if len(failed) > 0 {
		extra["failed"] = failed
		httpapi.Accepted(w, "account created; some pending invitations could not be attached", extra)
		return
	}
	httpapi.OK(w, "account created", extra)
}
