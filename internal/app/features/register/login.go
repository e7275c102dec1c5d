// internal/app/features/register/login.go
package register

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/rowphant/headless-wp/internal/app/store/users"
	"github.com/rowphant/headless-wp/internal/app/system/auth"
	"github.com/rowphant/headless-wp/internal/app/system/authz"
	"github.com/rowphant/headless-wp/internal/app/system/httpapi"
	"github.com/rowphant/headless-wp/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and starts a session.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpapi.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.Log.Error("login lookup failed", zap.Error(err))
		httpapi.Error(w, http.StatusInternalServerError, "could not sign in")
		return
	}
	if u.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		httpapi.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	role := authz.RoleUser
	if u.SiteAdmin {
		role = authz.RoleSiteAdmin
	}
	err = h.Sessions.SignIn(w, r, auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.DisplayName,
		Email: u.Email,
		Role:  role,
	})
	if err != nil {
		httpapi.Error(w, http.StatusInternalServerError, "could not sign in")
		return
	}

	httpapi.OK(w, "signed in", map[string]any{"user_id": u.ID.Hex()})
}

// HandleLogout ends the session.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.Log.Warn("session clear failed", zap.Error(err))
	}
	httpapi.OK(w, "signed out", nil)
}
