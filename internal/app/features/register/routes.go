// internal/app/features/register/routes.go
package register

import (
	"github.com/go-chi/chi/v5"
)

// Routes are mounted at the router root: /register, /login, /logout.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)

	return r
}
