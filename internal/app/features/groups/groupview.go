// internal/app/features/groups/groupview.go
package groups

import (
	"context"
	"errors"
	"net/http"

	groupstore "github.com/rowphant/headless-wp/internal/app/store/groups"
	"github.com/rowphant/headless-wp/internal/app/system/httpapi"
	"github.com/rowphant/headless-wp/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ServeGroup returns a published group with its role-sets.
func (h *Handler) ServeGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.ParseID(chi.URLParam(r, "id"))
	if !ok {
		httpapi.Error(w, http.StatusBadRequest, "invalid group id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Groups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, groupstore.ErrNotFound) {
			httpapi.Error(w, http.StatusNotFound, "group not found")
			return
		}
		h.Log.Error("group load failed", zap.String("group_id", id.Hex()), zap.Error(err))
		httpapi.Error(w, http.StatusInternalServerError, "could not load group")
		return
	}

	httpapi.OK(w, "", map[string]any{"group": g})
}
