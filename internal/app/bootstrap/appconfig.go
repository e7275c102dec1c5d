// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS); AppConfig is everything specific to this service.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string
	MongoDatabase string

	// Session management configuration
	SessionKey    string // secret for signing session cookies
	SessionName   string // cookie name
	SessionDomain string // cookie domain (blank means current host)

	// Feature flag: when false no group routes are registered and the
	// service only exposes accounts and health.
	UserGroupsEnabled bool

	// Invitation token configuration
	InviteSecret string
	InviteTTL    time.Duration

	// Email/SMTP configuration
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	// Site identity used in outgoing email and links
	SiteName string
	BaseURL  string
}
