// internal/app/features/groups/routes.go
package groups

import (
	"github.com/rowphant/headless-wp/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Published groups are readable without a session.
	r.Get("/{id}", h.ServeGroup)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/", h.HandleCreateGroup)
		pr.Post("/{id}/role-set", h.HandleSetRoleSet)
		pr.Post("/{id}/delete", h.HandleDeleteGroup)
	})

	return r
}
