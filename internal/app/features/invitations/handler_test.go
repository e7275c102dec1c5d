package invitations_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rowphant/headless-wp/internal/app/features/invitations"
	"github.com/rowphant/headless-wp/internal/app/system/grouplock"
	"github.com/rowphant/headless-wp/internal/app/system/invitetoken"
	"github.com/rowphant/headless-wp/internal/app/system/mailer"
	"github.com/rowphant/headless-wp/internal/app/system/membersync"
	"github.com/rowphant/headless-wp/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// newTestHandler wires a handler against the test database. The mailer
// points at a closed port, so sends are recorded-but-undelivered (202),
// which is the path these tests exercise.
func newTestHandler(t *testing.T) (*invitations.Handler, *testutil.Fixtures, *invitetoken.Service) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	tokens := invitetoken.New("test-secret", 7*24*time.Hour)
	mail := mailer.New("127.0.0.1", 1, "", "", "noreply@test.local", "Test", logger)
	h := invitations.NewHandler(db, membersync.New(db, logger), grouplock.New(), tokens, mail, "Test Site", "http://test.local", logger)
	return h, testutil.NewFixtures(t, db), tokens
}

func TestHandleSend_RecordsInvitation(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	invitee := fx.CreateUser(ctx, "Invitee", "invitee@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-invitations/send", map[string]any{
		"group_id": group.ID.Hex(),
		"email":    "Invitee@Example.COM",
	})
	req = testutil.WithUser(req, testutil.UserFor(author))
	rec := httptest.NewRecorder()

	h.HandleSend(rec, req)

	// The SMTP endpoint is unreachable, so a successful record comes
	// back as 202 with the invitation already persisted.
	if rec.Code != 202 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	g, err := h.Groups.GetByID(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetByID() = %v", err)
	}
	if !g.HasInvitation("invitee@example.com") {
		t.Errorf("invitations = %v, want canonical invitee email", g.Invitations)
	}

	u, _ := h.Users.GetByID(ctx, invitee.ID)
	if len(u.GroupInvitations) != 1 || u.GroupInvitations[0] != group.ID {
		t.Errorf("invitee mirror = %v", u.GroupInvitations)
	}
}

func TestHandleSend_AlreadyInvited(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)
	fx.AddInvitation(ctx, group.ID, "invitee@example.com", primitive.NilObjectID)

	req := testutil.NewJSONRequest(t, "POST", "/group-invitations/send", map[string]any{
		"group_id": group.ID.Hex(),
		"email":    "invitee@example.com",
	})
	req = testutil.WithUser(req, testutil.UserFor(author))
	rec := httptest.NewRecorder()

	h.HandleSend(rec, req)

	if rec.Code != 409 {
		t.Fatalf("status = %d, want 409; body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandleSend_AlreadyMember(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	member := fx.CreateUser(ctx, "Member", "member@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)
	fx.AddMember(ctx, group.ID, member.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-invitations/send", map[string]any{
		"group_id": group.ID.Hex(),
		"email":    "member@example.com",
	})
	req = testutil.WithUser(req, testutil.UserFor(author))
	rec := httptest.NewRecorder()

	h.HandleSend(rec, req)

	if rec.Code != 409 {
		t.Fatalf("status = %d, want 409; body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandleSend_NotManager(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-invitations/send", map[string]any{
		"group_id": group.ID.Hex(),
		"email":    "invitee@example.com",
	})
	req = testutil.WithUser(req, testutil.RegularUser())
	rec := httptest.NewRecorder()

	h.HandleSend(rec, req)

	if rec.Code != 403 {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestHandleAction_AcceptWithSession(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	invitee := fx.CreateUser(ctx, "Invitee", "invitee@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)
	fx.AddInvitation(ctx, group.ID, "invitee@example.com", invitee.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-invitations", map[string]any{
		"group_id":   group.ID.Hex(),
		"identifier": invitee.ID.Hex(),
		"action":     "accept",
	})
	req = testutil.WithUser(req, testutil.UserFor(invitee))
	rec := httptest.NewRecorder()

	h.HandleAction(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	g, _ := h.Groups.GetByID(ctx, group.ID)
	if !g.IsMember(invitee.ID) {
		t.Error("invitee did not become a member")
	}
	if g.HasInvitation("invitee@example.com") {
		t.Error("accepted invitation still on record")
	}

	u, _ := h.Users.GetByID(ctx, invitee.ID)
	if !u.MemberOf(group.ID) {
		t.Error("member mirror missing the group")
	}
	if len(u.GroupInvitations) != 0 {
		t.Errorf("invitation mirror = %v, want empty", u.GroupInvitations)
	}
}

func TestHandleAction_AcceptWithToken(t *testing.T) {
	h, fx, tokens := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	invitee := fx.CreateUser(ctx, "Invitee", "invitee@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)
	fx.AddInvitation(ctx, group.ID, "invitee@example.com", invitee.ID)

	token := tokens.Generate(invitee.ID.Hex(), group.ID.Hex())

	req := testutil.NewJSONRequest(t, "POST", "/group-invitations", map[string]any{
		"group_id":   group.ID.Hex(),
		"identifier": invitee.ID.Hex(),
		"action":     "accept",
		"token":      token,
	})
	rec := httptest.NewRecorder()

	h.HandleAction(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	g, _ := h.Groups.GetByID(ctx, group.ID)
	if !g.IsMember(invitee.ID) {
		t.Error("invitee did not become a member")
	}
}

func TestHandleAction_BadToken(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	invitee := fx.CreateUser(ctx, "Invitee", "invitee@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)
	fx.AddInvitation(ctx, group.ID, "invitee@example.com", invitee.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-invitations", map[string]any{
		"group_id":   group.ID.Hex(),
		"identifier": invitee.ID.Hex(),
		"action":     "accept",
		"token":      "ff.deadbeef",
	})
	rec := httptest.NewRecorder()

	h.HandleAction(rec, req)

	if rec.Code != 403 {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestHandleAction_NoSessionNoToken(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	invitee := fx.CreateUser(ctx, "Invitee", "invitee@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)
	fx.AddInvitation(ctx, group.ID, "invitee@example.com", invitee.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-invitations", map[string]any{
		"group_id":   group.ID.Hex(),
		"identifier": invitee.ID.Hex(),
		"action":     "accept",
	})
	rec := httptest.NewRecorder()

	h.HandleAction(rec, req)

	if rec.Code != 401 {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHandleAction_SomeoneElsesInvitation(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	invitee := fx.CreateUser(ctx, "Invitee", "invitee@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)
	fx.AddInvitation(ctx, group.ID, "invitee@example.com", invitee.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-invitations", map[string]any{
		"group_id":   group.ID.Hex(),
		"identifier": invitee.ID.Hex(),
		"action":     "accept",
	})
	req = testutil.WithUser(req, testutil.RegularUser())
	rec := httptest.NewRecorder()

	h.HandleAction(rec, req)

	if rec.Code != 403 {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestHandleAction_Decline(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	invitee := fx.CreateUser(ctx, "Invitee", "invitee@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)
	fx.AddInvitation(ctx, group.ID, "invitee@example.com", invitee.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-invitations", map[string]any{
		"group_id":   group.ID.Hex(),
		"identifier": invitee.ID.Hex(),
		"action":     "decline",
	})
	req = testutil.WithUser(req, testutil.UserFor(invitee))
	rec := httptest.NewRecorder()

	h.HandleAction(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	g, _ := h.Groups.GetByID(ctx, group.ID)
	if g.HasInvitation("invitee@example.com") {
		t.Error("declined invitation still on record")
	}
	if g.IsMember(invitee.ID) {
		t.Error("decline made the invitee a member")
	}
}

func TestHandleAction_NoInvitationOnRecord(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	invitee := fx.CreateUser(ctx, "Invitee", "invitee@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-invitations", map[string]any{
		"group_id":   group.ID.Hex(),
		"identifier": invitee.ID.Hex(),
		"action":     "accept",
	})
	req = testutil.WithUser(req, testutil.UserFor(invitee))
	rec := httptest.NewRecorder()

	h.HandleAction(rec, req)

	if rec.Code != 409 {
		t.Fatalf("status = %d, want 409; body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandleDelete_RevokesInvitation(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	invitee := fx.CreateUser(ctx, "Invitee", "invitee@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)
	fx.AddInvitation(ctx, group.ID, "invitee@example.com", invitee.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-invitations/delete", map[string]any{
		"group_id":   group.ID.Hex(),
		"identifier": "invitee@example.com",
	})
	req = testutil.WithUser(req, testutil.UserFor(author))
	rec := httptest.NewRecorder()

	h.HandleDelete(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	g, _ := h.Groups.GetByID(ctx, group.ID)
	if g.HasInvitation("invitee@example.com") {
		t.Error("revoked invitation still on record")
	}
	u, _ := h.Users.GetByID(ctx, invitee.ID)
	if len(u.GroupInvitations) != 0 {
		t.Errorf("invitee mirror = %v, want empty", u.GroupInvitations)
	}
}

func TestHandleDelete_NothingToRevoke(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-invitations/delete", map[string]any{
		"group_id":   group.ID.Hex(),
		"identifier": "nobody@example.com",
	})
	req = testutil.WithUser(req, testutil.UserFor(author))
	rec := httptest.NewRecorder()

	h.HandleDelete(rec, req)

	if rec.Code != 404 {
		t.Fatalf("status = %d, want 404; body = %s", rec.Code, rec.Body.String())
	}
}
