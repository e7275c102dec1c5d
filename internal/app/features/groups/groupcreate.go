// internal/app/features/groups/groupcreate.go
package groups

import (
	"context"
	"errors"
	"net/http"

	groupstore "github.com/rowphant/headless-wp/internal/app/store/groups"
	"github.com/rowphant/headless-wp/internal/app/system/gates"
	"github.com/rowphant/headless-wp/internal/app/system/htmlsanitize"
	"github.com/rowphant/headless-wp/internal/app/system/httpapi"
	"github.com/rowphant/headless-wp/internal/app/system/timeouts"
	"github.com/rowphant/headless-wp/internal/domain/models"
	"go.uber.org/zap"
)

type createGroupRequest struct {
	Title string `json:"title"`
}

// HandleCreateGroup creates a published group owned by the caller.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	var req createGroupRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	title := htmlsanitize.Title(req.Title)
	if title == "" {
		httpapi.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Groups.Create(ctx, models.Group{
		Title:    title,
		AuthorID: res.UserID,
	})
	if err != nil {
		if errors.Is(err, groupstore.ErrDuplicateTitle) {
			httpapi.Error(w, http.StatusConflict, err.Error())
			return
		}
		h.Log.Error("group create failed", zap.String("title", title), zap.Error(err))
		httpapi.Error(w, http.StatusInternalServerError, "could not create group")
		return
	}

	httpapi.OK(w, "group created", map[string]any{"group": g})
}
