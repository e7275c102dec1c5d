// internal/app/features/register/handler.go
package register

import (
	groupstore "github.com/rowphant/headless-wp/internal/app/store/groups"
	userstore "github.com/rowphant/headless-wp/internal/app/store/users"
	"github.com/rowphant/headless-wp/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for account registration
// and sign-in.
type Handler struct {
	DB       *mongo.Database
	Groups   *groupstore.Store
	Users    *userstore.Store
	Sessions *auth.SessionManager
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, sessions *auth.SessionManager, log *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Groups:   groupstore.New(db),
		Users:    userstore.New(db),
		Sessions: sessions,
		Log:      log,
	}
}
