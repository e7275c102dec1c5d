// internal/app/features/invitations/routes.go
package invitations

import (
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// The accept/decline endpoint authenticates with either a session or
	// an invitation token, so it cannot sit behind RequireSignedIn.
	r.Post("/", h.HandleAction)
	r.Post("/send", h.HandleSend)
	r.Post("/delete", h.HandleDelete)

	return r
}
