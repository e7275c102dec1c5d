// internal/app/features/profile/routes.go
package profile

import (
	"github.com/rowphant/headless-wp/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/groups", h.ServeGroups)
		pr.Post("/groups", h.HandleSetGroups)
	})

	return r
}
