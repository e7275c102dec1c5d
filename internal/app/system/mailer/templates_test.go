package mailer_test

import (
	"html"
	"strings"
	"testing"

	"github.com/rowphant/headless-wp/internal/app/system/mailer"
)

func TestBuildInvitationEmail(t *testing.T) {
	data := mailer.InvitationEmailData{
		SiteName:   "Test Site",
		GroupTitle: "Chess Club",
		AcceptLink: "http://test.local/group-invitations?group_id=abc&token=xyz",
		ExpiresIn:  "7 days",
	}
	email := mailer.BuildInvitationEmail(data)

	if !strings.Contains(email.Subject, "Chess Club") {
		t.Errorf("Subject = %q", email.Subject)
	}
	for _, body := range []string{email.TextBody, email.HTMLBody} {
		if !strings.Contains(body, "Chess Club") {
			t.Error("body missing the group title")
		}
		if !strings.Contains(body, "7 days") {
			t.Error("body missing the expiry window")
		}
	}
	if !strings.Contains(email.TextBody, data.AcceptLink) {
		t.Error("text body missing the accept link")
	}
	// html/template escapes the & between query parameters inside href.
	if !strings.Contains(email.HTMLBody, html.EscapeString(data.AcceptLink)) {
		t.Error("html body missing the accept link")
	}
	if !strings.Contains(email.TextBody, "Accept or decline") {
		t.Error("text body missing the call to action")
	}
}

func TestBuildInvitationSignupEmail(t *testing.T) {
	data := mailer.InvitationEmailData{
		SiteName:   "Test Site",
		GroupTitle: "Chess Club",
		AcceptLink: "http://test.local/register?group_id=abc&token=xyz",
		ExpiresIn:  "7 days",
	}
	email := mailer.BuildInvitationSignupEmail(data)

	if !strings.Contains(email.TextBody, "do not have an account") {
		t.Errorf("text body = %q", email.TextBody)
	}
	if !strings.Contains(email.HTMLBody, "Create Account") {
		t.Error("html body missing the signup call to action")
	}
	if !strings.Contains(email.HTMLBody, html.EscapeString(data.AcceptLink)) {
		t.Error("html body missing the registration link")
	}
	if !strings.Contains(email.TextBody, data.AcceptLink) {
		t.Error("text body missing the registration link")
	}
}
