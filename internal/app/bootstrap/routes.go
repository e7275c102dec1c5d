// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	adminsfeature "github.com/rowphant/headless-wp/internal/app/features/admins"
	groupsfeature "github.com/rowphant/headless-wp/internal/app/features/groups"
	healthfeature "github.com/rowphant/headless-wp/internal/app/features/health"
	invitationsfeature "github.com/rowphant/headless-wp/internal/app/features/invitations"
	membersfeature "github.com/rowphant/headless-wp/internal/app/features/members"
	profilefeature "github.com/rowphant/headless-wp/internal/app/features/profile"
	registerfeature "github.com/rowphant/headless-wp/internal/app/features/register"
	requestsfeature "github.com/rowphant/headless-wp/internal/app/features/requests"
	"github.com/rowphant/headless-wp/internal/app/system/auth"
	"github.com/rowphant/headless-wp/internal/app/system/grouplock"
	"github.com/rowphant/headless-wp/internal/app/system/invitetoken"
	"github.com/rowphant/headless-wp/internal/app/system/mailer"
	"github.com/rowphant/headless-wp/internal/app/system/membersync"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connection, and schema setup
// have completed. The group workflows share one sync engine and one
// per-group lock registry; every feature handler gets the same pair so
// two handlers can never interleave writes to the same group.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	engine := membersync.New(db, logger)
	locks := grouplock.New()
	tokens := invitetoken.New(appCfg.InviteSecret, appCfg.InviteTTL)
	mail := mailer.New(appCfg.MailSMTPHost, appCfg.MailSMTPPort, appCfg.MailSMTPUser, appCfg.MailSMTPPass,
		appCfg.MailFrom, appCfg.MailFromName, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	registerHandler := registerfeature.NewHandler(db, sessionMgr, logger)
	r.Mount("/", registerfeature.Routes(registerHandler))

	if !appCfg.UserGroupsEnabled {
		return r, nil
	}

	groupsHandler := groupsfeature.NewHandler(db, engine, locks, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

	invitationsHandler := invitationsfeature.NewHandler(db, engine, locks, tokens, mail,
		appCfg.SiteName, appCfg.BaseURL, logger)
	r.Mount("/group-invitations", invitationsfeature.Routes(invitationsHandler))

	requestsHandler := requestsfeature.NewHandler(db, engine, locks, logger)
	r.Mount("/group-requests", requestsfeature.Routes(requestsHandler, sessionMgr))

	membersHandler := membersfeature.NewHandler(db, engine, locks, logger)
	r.Mount("/group-members", membersfeature.Routes(membersHandler, sessionMgr))

	adminsHandler := adminsfeature.NewHandler(db, engine, locks, logger)
	r.Mount("/group-admins", adminsfeature.Routes(adminsHandler, sessionMgr))

	profileHandler := profilefeature.NewHandler(db, engine, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

	return r, nil
}
