// internal/app/features/requests/routes.go
package requests

import (
	"github.com/rowphant/headless-wp/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/send", h.HandleSend)
		pr.Post("/action", h.HandleAction)
		pr.Post("/delete", h.HandleDelete)
	})

	return r
}
