// internal/app/features/profile/handler.go
package profile

import (
	userstore "github.com/rowphant/headless-wp/internal/app/store/users"
	"github.com/rowphant/headless-wp/internal/app/system/membersync"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the profile feature,
// the user-side view of the mirrored group role-sets.
type Handler struct {
	DB     *mongo.Database
	Users  *userstore.Store
	Engine *membersync.Engine
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, engine *membersync.Engine, log *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Users:  userstore.New(db),
		Engine: engine,
		Log:    log,
	}
}
