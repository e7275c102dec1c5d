// internal/app/features/requests/handler.go
package requests

import (
	"net/http"

	groupstore "github.com/rowphant/headless-wp/internal/app/store/groups"
	userstore "github.com/rowphant/headless-wp/internal/app/store/users"
	"github.com/rowphant/headless-wp/internal/app/system/grouplock"
	"github.com/rowphant/headless-wp/internal/app/system/httpapi"
	"github.com/rowphant/headless-wp/internal/app/system/membersync"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the join-request feature.
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

func respond(w http.ResponseWriter, msg string, res membersync.Result, extra map[string]any) {
	if res.Partial() {
		httpapi.Accepted(w, msg+"; some records could not be synced", extra)
		return
	}
	httpapi.OK(w, msg, extra)
}
