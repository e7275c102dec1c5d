// internal/app/features/admins/handler.go
package admins

import (
	"context"
	"errors"
	"net/http"

	groupstore "github.com/rowphant/headless-wp/internal/app/store/groups"
	userstore "github.com/rowphant/headless-wp/internal/app/store/users"
	"github.com/rowphant/headless-wp/internal/app/system/grouplock"
	"github.com/rowphant/headless-wp/internal/app/system/httpapi"
	"github.com/rowphant/headless-wp/internal/app/system/membersync"
	"github.com/rowphant/headless-wp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the admin feature.
type Handler struct {
	DB     *mongo.Database
	Groups *groupstore.Store
	Users  *userstore.Store
	Engine *membersync.Engine
	Locks  *grouplock.Locker
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, engine *membersync.Engine, locks *grouplock.Locker, log *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Groups: groupstore.New(db),
		Users:  userstore.New(db),
		Engine: engine,
		Locks:  locks,
		Log:    log,
	}
}

type adminRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, primitive.ObjectID, bool) {
	var req adminRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, http.StatusBadRequest, err.Error())
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	groupID, ok := httpapi.ParseID(req.GroupID)
	if !ok {
		httpapi.Error(w, http.StatusBadRequest, "invalid group id")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	targetID, ok := httpapi.ParseID(req.UserID)
	if !ok {
		httpapi.Error(w, http.StatusBadRequest, "invalid user id")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return groupID, targetID, true
}

func (h *Handler) loadGroup(ctx context.Context, w http.ResponseWriter, groupID primitive.ObjectID) (models.Group, bool) {
	g, err := h.Groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, groupstore.ErrNotFound) {
			httpapi.Error(w, http.StatusNotFound, "group not found")
			return models.Group{}, false
		}
		h.Log.Error("group load failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		httpapi.Error(w, http.StatusInternalServerError, "could not load group")
		return models.Group{}, false
	}
	return g, true
}

func respond(w http.ResponseWriter, msg string, res membersync.Result, extra map[string]any) {
	if res.Partial() {
		httpapi.Accepted(w, msg+"; some records could not be synced", extra)
		return
	}
	httpapi.OK(w, msg, extra)
}
