// internal/app/features/admins/routes.go
package admins

import (
	"github.com/rowphant/headless-wp/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/add", h.HandleAdd)
		pr.Post("/remove", h.HandleRemove)
	})

	return r
}
