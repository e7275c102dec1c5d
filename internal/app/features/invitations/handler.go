// internal/app/features/invitations/handler.go
package invitations

import (
	"context"
	"errors"
	"strings"

	groupstore "github.com/rowphant/headless-wp/internal/app/store/groups"
	userstore "github.com/rowphant/headless-wp/internal/app/store/users"
	"github.com/rowphant/headless-wp/internal/app/system/grouplock"
	"github.com/rowphant/headless-wp/internal/app/system/invitetoken"
	"github.com/rowphant/headless-wp/internal/app/system/mailer"
	"github.com/rowphant/headless-wp/internal/app/system/membersync"
	"github.com/rowphant/headless-wp/internal/app/system/normalize"
	"github.com/rowphant/headless-wp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the invitation feature.
type Handler struct {
	DB       *mongo.Database
	Groups   *groupstore.Store
	Users    *userstore.Store
	Engine   *membersync.Engine
	Locks    *grouplock.Locker
	Tokens   *invitetoken.Service
	Mail     *mailer.Mailer
	SiteName string
	BaseURL  string
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, engine *membersync.Engine, locks *grouplock.Locker, tokens *invitetoken.Service, mail *mailer.Mailer, siteName, baseURL string, log *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Groups:   groupstore.New(db),
		Users:    userstore.New(db),
		Engine:   engine,
		Locks:    locks,
		Tokens:   tokens,
		Mail:     mail,
		SiteName: siteName,
		BaseURL:  baseURL,
		Log:      log,
	}
}

// invitee is the resolved form of an invitation identifier: always a
// canonical email, plus the account when one exists.
type invitee struct {
	email string
	user  models.User
	found bool
	// identifier as the token service saw it when the invitation was
	// sent: user-id hex for registered invitees, email otherwise
	tokenID string
}

var errUnknownUser = errors.New("unknown user id")

// resolveInvitee canonicalizes an identifier that may be a user-id hex
// or an email address.
func (h *Handler) resolveInvitee(ctx context.Context, identifier string) (invitee, error) {
	identifier = strings.TrimSpace(identifier)
	if !strings.Contains(identifier, "@") {
		id, err := primitive.ObjectIDFromHex(identifier)
		if err != nil {
			return invitee{}, errUnknownUser
		}
		u, err := h.Users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, userstore.ErrNotFound) {
				return invitee{}, errUnknownUser
			}
			return invitee{}, err
		}
		return invitee{email: u.Email, user: u, found: true, tokenID: u.ID.Hex()}, nil
	}

	email := normalize.Email(identifier)
	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return invitee{email: email, tokenID: email}, nil
		}
		return invitee{}, err
	}
	return invitee{email: u.Email, user: u, found: true, tokenID: u.ID.Hex()}, nil
}
